package diagnosis

// SpeedRushThresholdMs is the maximum response time (exclusive) for a
// wrong answer to be hinted as a guess.
const SpeedRushThresholdMs = 2000

// SpeedRushClassifier flags answers submitted too quickly as guesses.
// Unknown response times never match.
type SpeedRushClassifier struct{}

func (c *SpeedRushClassifier) Name() string { return "speed-rush" }

func (c *SpeedRushClassifier) Classify(input *ClassifyInput) (ErrorKind, float64) {
	if input.ResponseTimeMs > 0 && input.ResponseTimeMs < SpeedRushThresholdMs {
		return KindGuess, 0.9
	}
	return "", 0
}
