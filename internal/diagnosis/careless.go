package diagnosis

// CarelessAccuracyThreshold is the minimum recent accuracy (exclusive)
// for a wrong answer to be hinted as a calculation slip.
const CarelessAccuracyThreshold = 0.80

// CarelessClassifier flags wrong answers from high-accuracy students as
// calculation slips rather than knowledge gaps.
type CarelessClassifier struct{}

func (c *CarelessClassifier) Name() string { return "careless" }

func (c *CarelessClassifier) Classify(input *ClassifyInput) (ErrorKind, float64) {
	if input.RecentAccuracy > CarelessAccuracyThreshold {
		return KindCalculation, 0.8
	}
	return "", 0
}
