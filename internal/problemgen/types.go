package problemgen

import (
	"github.com/abhisek/mathdaily/internal/difficulty"
	"github.com/abhisek/mathdaily/internal/planner"
)

// OptionCount is the number of choices every problem carries.
const OptionCount = 4

// Problem is one generated multiple-choice worksheet item.
type Problem struct {
	// ID is a random UUID assigned after validation.
	ID string `json:"id"`

	// Topic, Tier and Category are copied from the plan slot the item
	// was bound to. The model's own claims about them are ignored.
	Topic    string           `json:"topic"`
	Tier     difficulty.Tier  `json:"difficulty"`
	Category planner.Category `json:"type"`

	// Question is the problem statement shown to the student.
	Question string `json:"question"`

	// Options holds exactly OptionCount distinct choices.
	Options []string `json:"options"`

	// Answer is the text of the correct option.
	Answer string `json:"answer"`

	// Explanation is the step-by-step worked solution.
	Explanation string `json:"explanation"`

	// Diagram is inline SVG markup, or "" when the item has no figure.
	Diagram string `json:"svg"`
}

// rawProblem is one item of the model's response before binding and
// validation.
type rawProblem struct {
	Slot        int      `json:"slot"`
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"`
	Explanation string   `json:"explanation"`
	SVG         string   `json:"svg"`
}

// batchOutput is the top-level response object.
type batchOutput struct {
	Problems []rawProblem `json:"problems"`
}
