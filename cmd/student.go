package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathdaily/internal/curriculum"
)

var studentCmd = &cobra.Command{
	Use:   "student",
	Short: "Show and edit student profiles",
}

var studentShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a student's level, topics and unit mastery",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		svc := e.service(nil)
		st, err := svc.Student(ctx, args[0])
		if err != nil {
			return err
		}
		units, err := svc.Mastery(ctx, st.ID)
		if err != nil {
			return err
		}

		fmt.Printf("Student:          %s\n", st.ID)
		fmt.Printf("Grade:            %s\n", curriculum.ContextFor(st.SchoolLevel, st.Grade))
		fmt.Printf("Difficulty level: %d\n", st.DifficultyLevel)
		fmt.Printf("Recent accuracy:  %.0f%%\n", st.RecentAccuracy*100)
		fmt.Printf("Weak topics:      %s\n", listOrDash(st.WeakTopics))
		fmt.Printf("Current topics:   %s\n", listOrDash(st.CurrentTopics))
		if len(units) > 0 {
			fmt.Println()
			fmt.Printf("%-6s  %6s  %8s  %s\n", "Unit", "Score", "Attempts", "State")
			fmt.Println(strings.Repeat("─", 40))
			for _, u := range units {
				fmt.Printf("%-6d  %5.0f%%  %8d  %s\n", u.UnitID, u.Score*100, u.Attempts, u.State)
			}
		}
		return nil
	},
}

var studentTopicsCmd = &cobra.Command{
	Use:   "topics <id> <topic>...",
	Short: "Replace the topics a student is currently working on",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		st, err := e.service(nil).SetCurrentTopics(cmd.Context(), args[0], args[1:])
		if err != nil {
			return err
		}
		fmt.Printf("Current topics of %s: %s\n", st.ID, listOrDash(st.CurrentTopics))
		return nil
	},
}

func listOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}

func init() {
	studentCmd.AddCommand(studentShowCmd)
	studentCmd.AddCommand(studentTopicsCmd)
}
