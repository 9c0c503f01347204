package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathdaily/internal/diagnosis"
	"github.com/abhisek/mathdaily/internal/export"
	"github.com/abhisek/mathdaily/internal/problemgen"
	"github.com/abhisek/mathdaily/internal/ui/components"
	"github.com/abhisek/mathdaily/internal/worksheet"
)

var worksheetCmd = &cobra.Command{
	Use:   "worksheet",
	Short: "Generate, grade and export worksheets",
}

var worksheetGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a worksheet for a student",
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

		start := time.Now()
		problems, err := e.service(provider).PlanAndGenerate(ctx, req)
		if err != nil {
			return err
		}

		if path, _ := cmd.Flags().GetString("xlsx"); path != "" {
			if err := writeXLSXFile(path, req.StudentID, problems); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "wrote %s\n", path)
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(problems)
		}
		printProblems(problems)
		fmt.Printf("\n%d problems in %s\n", len(problems), time.Since(start).Round(time.Millisecond))
		return nil
	},
}

var worksheetSubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Record the accuracy of a finished worksheet",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		user, _ := cmd.Flags().GetString("user")
		accuracy, _ := cmd.Flags().GetFloat64("accuracy")
		unitID := optionalInt(cmd, "unit")

		res, err := e.service(nil).RecordSubmissionAccuracy(cmd.Context(), user, accuracy, unitID)
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(res)
		}
		fmt.Println(res.Message)
		fmt.Printf("Level:           %d (%+d)\n", res.Level, res.Delta)
		fmt.Printf("Recent accuracy: %.0f%%\n", res.RecentAccuracy*100)
		if res.Mastery != nil {
			fmt.Printf("Unit %d mastery: %.0f%% over %d worksheets (%s)\n",
				res.Mastery.UnitID, res.Mastery.Score*100, res.Mastery.Attempts, res.Mastery.State)
		}
		return nil
	},
}

var worksheetAnalyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a wrong answer and record it",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		provider, err := e.provider(ctx, nil)
		if err != nil {
			return err
		}

		in := diagnosis.Input{}
		in.StudentID, _ = cmd.Flags().GetString("user")
		in.ProblemID, _ = cmd.Flags().GetString("problem")
		in.SubmittedAnswer, _ = cmd.Flags().GetString("answer")
		in.CorrectAnswer, _ = cmd.Flags().GetString("correct")
		in.QuestionText, _ = cmd.Flags().GetString("question")
		in.ResponseTimeMs, _ = cmd.Flags().GetInt("time-ms")

		rec, err := e.service(provider).AnalyzeWrongAnswer(ctx, in)
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(rec)
		}
		fmt.Printf("Error type: %s (severity %d)\n", rec.Kind, rec.Severity)
		fmt.Printf("Reasoning:  %s\n", rec.Reasoning)
		fmt.Printf("Advice:     %s\n", rec.Advice)
		if rec.PromotedTopic {
			fmt.Printf("%q is now a weak topic.\n", rec.Topic)
		}
		return nil
	},
}

var worksheetRewriteCmd = &cobra.Command{
	Use:   "rewrite <question>",
	Short: "Rewrite a problem statement in simpler words",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		provider, err := e.provider(ctx, nil)
		if err != nil {
			return err
		}
		fmt.Println(e.service(provider).Rewrite(ctx, strings.Join(args, " ")))
		return nil
	},
}

var worksheetExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a student's latest problems to an Excel file",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		user, _ := cmd.Flags().GetString("user")
		limit, _ := cmd.Flags().GetInt("limit")
		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = fmt.Sprintf("worksheet-%s-%s.xlsx", user, time.Now().Format("20060102"))
		}

		problems, err := e.service(nil).History(cmd.Context(), user, limit)
		if err != nil {
			return err
		}
		if len(problems) == 0 {
			return fmt.Errorf("no problems stored for %q", user)
		}
		if err := writeXLSXFile(out, user, problems); err != nil {
			return err
		}
		fmt.Printf("wrote %d problems to %s\n", len(problems), out)
		return nil
	},
}

func init() {
	f := worksheetGenerateCmd.Flags()
	f.StringP("user", "u", "", "Student ID (required)")
	f.IntP("count", "n", 0, "Number of problems (default generation.worksheet_size)")
	f.Int("unit", 0, "Generate a drill worksheet for one curriculum unit")
	f.String("level", "", "School level override: elementary, middle or high")
	f.Int("grade", 0, "Grade override")
	f.String("xlsx", "", "Also write the worksheet to this Excel file")
	f.Bool("json", false, "Print problems as JSON")
	_ = worksheetGenerateCmd.MarkFlagRequired("user")

	f = worksheetSubmitCmd.Flags()
	f.StringP("user", "u", "", "Student ID (required)")
	f.Float64("accuracy", 0, "Share of correct answers, 0 to 1 (required)")
	f.Int("unit", 0, "Unit the worksheet drilled")
	f.Bool("json", false, "Print the result as JSON")
	_ = worksheetSubmitCmd.MarkFlagRequired("user")
	_ = worksheetSubmitCmd.MarkFlagRequired("accuracy")

	f = worksheetAnalyzeCmd.Flags()
	f.StringP("user", "u", "", "Student ID (required)")
	f.String("problem", "", "Stored problem ID")
	f.String("answer", "", "The student's answer (required)")
	f.String("correct", "", "The correct answer (taken from the stored problem when omitted)")
	f.String("question", "", "Problem text (taken from the stored problem when omitted)")
	f.Int("time-ms", 0, "How long the student took to answer")
	f.Bool("json", false, "Print the record as JSON")
	_ = worksheetAnalyzeCmd.MarkFlagRequired("user")
	_ = worksheetAnalyzeCmd.MarkFlagRequired("answer")

	f = worksheetExportCmd.Flags()
	f.StringP("user", "u", "", "Student ID (required)")
	f.IntP("limit", "n", worksheet.DefaultCount, "Number of latest problems to export")
	f.StringP("out", "o", "", "Output file")
	_ = worksheetExportCmd.MarkFlagRequired("user")

	worksheetCmd.AddCommand(worksheetGenerateCmd)
	worksheetCmd.AddCommand(worksheetSubmitCmd)
	worksheetCmd.AddCommand(worksheetAnalyzeCmd)
	worksheetCmd.AddCommand(worksheetRewriteCmd)
	worksheetCmd.AddCommand(worksheetExportCmd)
}

// generateRequestFromFlags reads the flags shared by generate and solve.
func generateRequestFromFlags(cmd *cobra.Command, defaultCount int) (worksheet.GenerateRequest, error) {
	var req worksheet.GenerateRequest
	req.StudentID, _ = cmd.Flags().GetString("user")
	req.Count, _ = cmd.Flags().GetInt("count")
	if req.Count == 0 {
		req.Count = defaultCount
	}
	req.UnitID = optionalInt(cmd, "unit")
	req.SchoolLevel, _ = cmd.Flags().GetString("level")
	req.Grade, _ = cmd.Flags().GetInt("grade")
	if (req.SchoolLevel == "") != (req.Grade == 0) {
		return req, fmt.Errorf("--level and --grade must be given together")
	}
	return req, nil
}

// optionalInt returns the flag's value only when it was set.
func optionalInt(cmd *cobra.Command, name string) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetInt(name)
	return &v
}

func writeXLSXFile(path, studentID string, problems []problemgen.Problem) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	title := fmt.Sprintf("%s %s", studentID, time.Now().Format("2006-01-02"))
	if err := export.WriteXLSX(f, title, problems); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printProblems(problems []problemgen.Problem) {
	sep := strings.Repeat("─", 60)
	for i, p := range problems {
		fmt.Println(sep)
		fmt.Printf("%d. [%s · %s · %s]\n", i+1, p.Topic, p.Category, p.Tier)
		fmt.Println(p.Question)
		if p.Diagram != "" {
			fmt.Println("(diagram in the Excel export)")
		}
		for j, opt := range p.Options {
			fmt.Printf("   %s %s\n", components.OptionLabels[j%len(components.OptionLabels)], opt)
		}
		fmt.Printf("   정답: %s\n", p.Answer)
		fmt.Printf("   풀이: %s\n", p.Explanation)
	}
}
