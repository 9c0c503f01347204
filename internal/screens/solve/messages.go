package solve

import (
	"github.com/abhisek/mathdaily/internal/diagnosis"
	"github.com/abhisek/mathdaily/internal/problemgen"
	"github.com/abhisek/mathdaily/internal/worksheet"
)

// worksheetReadyMsg carries the generated worksheet.
type worksheetReadyMsg struct {
	Problems []problemgen.Problem
	Err      error
}

// analysisDoneMsg carries the analysis of the wrong answer to problem Index.
type analysisDoneMsg struct {
	Index  int
	Record *diagnosis.Record
	Err    error
}

// submittedMsg is sent once the graded worksheet has been recorded.
type submittedMsg struct {
	Result *worksheet.SubmissionResult
	Err    error
}
