package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/mathdaily/internal/app"
	"github.com/abhisek/mathdaily/internal/screens/solve"
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Solve today's worksheet in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		req, err := generateRequestFromFlags(cmd, e.cfg.Generation.WorksheetSize)
		if err != nil {
			return err
		}
		if err := e.ensureCurriculum(ctx); err != nil {
			return err
		}
		provider, err := e.provider(ctx, nil)
		if err != nil {
			return err
		}
		svc := e.service(provider)

		student, err := svc.Student(ctx, req.StudentID)
		if err != nil {
			return err
		}
		return app.Run(solve.New(ctx, svc, req), app.Status{
			StudentID: student.ID,
			Level:     student.DifficultyLevel,
			Accuracy:  student.RecentAccuracy,
		})
	},
}

func init() {
	f := solveCmd.Flags()
	f.StringP("user", "u", "", "Student ID (required)")
	f.IntP("count", "n", 0, "Number of problems (default generation.worksheet_size)")
	f.Int("unit", 0, "Drill a single curriculum unit")
	f.String("level", "", "School level override: elementary, middle or high")
	f.Int("grade", 0, "Grade override")
	_ = solveCmd.MarkFlagRequired("user")
}
