package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/brightpath/internal/course"
	"github.com/abhisek/brightpath/internal/performance"
)

var courseCmd = &cobra.Command{
	Use:   "course <learner-id>",
	Short: "Plan the next lessons for a learner with the configured LLM",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		f := cmd.Flags()
		subject, _ := f.GetString("subject")
		lessons, _ := f.GetInt("lessons")
		grade, _ := f.GetInt("grade")
		asJSON, _ := f.GetBool("json")

		d, err := openDeps(ctx)
		if err != nil {
			return err
		}
		defer d.close()

		planner, err := d.planner(ctx)
		if err != nil {
			return err
		}

		h := performance.NewHistory()
		rec, err := d.records.Get(ctx, args[0])
		if err != nil {
			return err
		}
		if rec != nil {
			h = rec.History
		}

		outline, err := planner.Plan(ctx, h, course.Request{Subject: subject, Lessons: lessons, GradeLevel: grade})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(outline)
		}

		fmt.Fprintf(out, "%s\n%s\n\n", outline.Title, outline.Summary)
		for i, l := range outline.Lessons {
			fmt.Fprintf(out, "%d. %s  [%s, %s]\n", i+1, l.Title, l.Modality.DisplayName(), l.Difficulty)
			fmt.Fprintf(out, "   %s\n", l.Objective)
		}
		fmt.Fprintf(out, "\nPlanned by %s\n", outline.Model)
		return nil
	},
}

func init() {
	f := courseCmd.Flags()
	f.String("subject", "", "Subject to plan, e.g. fractions")
	f.Int("lessons", course.DefaultLessons, "Number of lessons")
	f.Int("grade", 0, "Grade level, 1-12 (optional)")
	f.Bool("json", false, "Print the outline as JSON")
	courseCmd.MarkFlagRequired("subject")
}
