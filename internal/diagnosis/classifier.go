package diagnosis

// ClassifyInput holds the context the rule-based classifiers look at.
type ClassifyInput struct {
	ResponseTimeMs int     // 0 when unknown
	RecentAccuracy float64 // Student's rolling accuracy (0.0–1.0)
}

// Hint is a rule-based guess passed to the model as context. The model
// makes the final call.
type Hint struct {
	Kind       ErrorKind
	Confidence float64
	Source     string
}

// Classifier is a rule-based error classifier.
// Returns a kind and confidence (0.0–1.0), or ("", 0) if the rule doesn't apply.
type Classifier interface {
	Name() string
	Classify(input *ClassifyInput) (ErrorKind, float64)
}

// DefaultClassifiers returns classifiers in priority order.
// Speed-rush has highest priority since a fast wrong answer is more likely
// a guess than a careless slip, even for high-accuracy students.
func DefaultClassifiers() []Classifier {
	return []Classifier{
		&SpeedRushClassifier{},
		&CarelessClassifier{},
	}
}

// RunClassifiers executes rule-based classifiers in order.
// Returns the first match, or nil if no rules apply.
func RunClassifiers(classifiers []Classifier, input *ClassifyInput) *Hint {
	for _, c := range classifiers {
		kind, conf := c.Classify(input)
		if kind != "" {
			return &Hint{Kind: kind, Confidence: conf, Source: c.Name()}
		}
	}
	return nil
}
