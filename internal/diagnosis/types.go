package diagnosis

import "time"

// Input describes one wrong answer to analyze.
type Input struct {
	StudentID       string `json:"student_id"`
	ProblemID       string `json:"problem_id"`
	SubmittedAnswer string `json:"user_answer"`
	CorrectAnswer   string `json:"correct_answer"`
	QuestionText    string `json:"question_text"`

	// ResponseTimeMs is how long the student took to answer, or 0 when
	// unknown. It only feeds the rule-based hints.
	ResponseTimeMs int `json:"response_time_ms,omitempty"`
}

// Analysis is the model's verdict on a wrong answer.
type Analysis struct {
	Kind      ErrorKind `json:"error_type"`
	Reasoning string    `json:"reasoning"`
	Advice    string    `json:"advice"`
	Severity  int       `json:"severity"`
}

// Record is one stored weakness record.
type Record struct {
	ID              string    `json:"id"`
	StudentID       string    `json:"student_id"`
	ProblemID       string    `json:"problem_id"`
	Topic           string    `json:"topic"`
	SubmittedAnswer string    `json:"user_answer"`
	Kind            ErrorKind `json:"error_type"`
	Reasoning       string    `json:"reasoning"`
	Advice          string    `json:"advice"`
	Severity        int       `json:"severity"`
	CreatedAt       time.Time `json:"created_at"`

	// PromotedTopic is set when this record pushed Topic into the
	// student's weak topics.
	PromotedTopic bool `json:"promoted_topic"`
}
