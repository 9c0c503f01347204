package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathdaily/internal/curriculum"
)

var curriculumCmd = &cobra.Command{
	Use:   "curriculum",
	Short: "Manage the chapter and unit catalog",
}

var curriculumSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Upsert the built-in catalog into the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		n, err := curriculum.SeedDefault(cmd.Context(), e.store.Curriculum(), e.log)
		if err != nil {
			return err
		}
		fmt.Printf("Seeded %d units.\n", n)
		return nil
	},
}

var curriculumListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the chapters and units of a grade",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		level, _ := cmd.Flags().GetString("level")
		grade, _ := cmd.Flags().GetInt("grade")
		chapters, err := e.service(nil).Catalog(cmd.Context(), level, grade)
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(chapters)
		}
		if len(chapters) == 0 {
			fmt.Printf("No chapters for %s. Run `mathdaily curriculum seed` first.\n",
				curriculum.ContextFor(level, grade))
			return nil
		}
		for _, ch := range chapters {
			fmt.Printf("%s\n", ch.Name)
			for _, u := range ch.Units {
				fmt.Printf("  %4d  %s\n", u.ID, u.Name)
			}
		}
		return nil
	},
}

func init() {
	curriculumListCmd.Flags().String("level", curriculum.DefaultSchoolLevel, "School level: elementary, middle or high")
	curriculumListCmd.Flags().Int("grade", curriculum.DefaultGrade, "Grade")
	curriculumListCmd.Flags().Bool("json", false, "Print as JSON")

	curriculumCmd.AddCommand(curriculumSeedCmd)
	curriculumCmd.AddCommand(curriculumListCmd)
}
