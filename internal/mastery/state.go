package mastery

// MasteryState represents a unit's position in the mastery lifecycle.
type MasteryState string

const (
	StateNew      MasteryState = "new"
	StateLearning MasteryState = "learning"
	StateMastered MasteryState = "mastered"
)

// A unit is mastered once its smoothed score reaches MasteredFrom over at
// least MinMasteredAttempts submissions.
const (
	MasteredFrom        = 0.85
	MinMasteredAttempts = 3
)

// StateFor derives the state of a unit from its smoothed score.
func StateFor(score float64, attempts int) MasteryState {
	switch {
	case attempts == 0:
		return StateNew
	case score >= MasteredFrom && attempts >= MinMasteredAttempts:
		return StateMastered
	default:
		return StateLearning
	}
}

// StateTransition records a mastery state change for display and logging.
type StateTransition struct {
	UnitID int
	From   MasteryState
	To     MasteryState
}
