package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/brightpath/internal/performance"
)

var showCmd = &cobra.Command{
	Use:   "show <learner-id>",
	Short: "Print a learner's performance record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		asJSON, _ := cmd.Flags().GetBool("json")

		d, err := openDeps(ctx)
		if err != nil {
			return err
		}
		defer d.close()

		rec, err := d.records.Get(ctx, args[0])
		if err != nil {
			return err
		}
		h := performance.NewHistory()
		var version int64
		if rec != nil {
			h, version = rec.History, rec.Version
		}

		out := cmd.OutOrStdout()
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(h)
		}

		if rec == nil {
			fmt.Fprintf(out, "No record for %s yet; showing defaults.\n\n", args[0])
		} else {
			fmt.Fprintf(out, "Learner %s (v%d, updated %s)\n\n", args[0], version,
				h.LastUpdated.Local().Format("2006-01-02 15:04"))
		}

		fmt.Fprintf(out, "Difficulty:  %s\n", h.CurrentDifficulty)
		fmt.Fprintf(out, "Tier:        %s (score %.1f)\n", h.LearnerTier, h.TierScore)
		fmt.Fprintf(out, "Trend:       %s\n", h.Trend)
		fmt.Fprintf(out, "Streak:      %s\n", h.StreakHealth)
		fmt.Fprintf(out, "Lessons:     %d\n", h.TotalLessonsCompleted)
		fmt.Fprintf(out, "Average:     %.1f\n", h.AverageQuizScore)
		fmt.Fprintf(out, "Reason:      %s\n", h.DifficultyChangeReason)

		fmt.Fprintln(out, "\nModalities")
		fmt.Fprintln(out, strings.Repeat("─", 30))
		for _, m := range performance.AllModalities() {
			fmt.Fprintf(out, "%-12s %6.1f\n", m.DisplayName(), h.ModalityScores[m])
		}

		fmt.Fprintf(out, "\nStrong:      %s\n", joinOrNone(h.StrongTopics))
		fmt.Fprintf(out, "Needs work:  %s\n", joinOrNone(h.WeakTopics))
		return nil
	},
}

var learnersCmd = &cobra.Command{
	Use:   "learners",
	Short: "List learners with a performance record",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd.Context())
		if err != nil {
			return err
		}
		defer d.close()

		ids, err := d.records.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No learners yet.")
			return nil
		}
		for _, id := range ids {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		return nil
	},
}

func joinOrNone(xs []string) string {
	if len(xs) == 0 {
		return "none"
	}
	return strings.Join(xs, ", ")
}

func init() {
	showCmd.Flags().Bool("json", false, "Print the record as JSON")
}
