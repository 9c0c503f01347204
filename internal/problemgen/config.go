package problemgen

import "time"

// Config controls the behavior of the Generator.
type Config struct {
	// ChunkSize is the number of plan slots sent in one LLM request.
	ChunkSize int

	// Timeout bounds each chunk request.
	Timeout time.Duration

	// Validators is the ordered list of validators to run on every
	// generated problem. They execute in order; the first failure
	// drops the problem.
	Validators []Validator

	// MaxTokens is the token budget for one chunk response.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64

	// MaxPriorQuestions is the maximum number of earlier questions
	// listed in the prompt as "do not repeat".
	MaxPriorQuestions int
}

// DefaultConfig returns a Config with the standard validator chain
// and recommended defaults.
func DefaultConfig() Config {
	return Config{
		ChunkSize: 3,
		Timeout:   60 * time.Second,
		Validators: []Validator{
			&StructuralValidator{},
			&MathCheckValidator{},
		},
		MaxTokens:         4096,
		Temperature:       0.6,
		MaxPriorQuestions: 8,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.ChunkSize < 1 {
		c.ChunkSize = def.ChunkSize
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	if c.Validators == nil {
		c.Validators = def.Validators
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = def.MaxTokens
	}
	return c
}
