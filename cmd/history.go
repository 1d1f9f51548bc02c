package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/brightpath/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history <learner-id>",
	Short: "List a learner's recent difficulty decisions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		limit, _ := cmd.Flags().GetInt("limit")
		verbose, _ := cmd.Flags().GetBool("reasons")

		d, err := openDeps(ctx)
		if err != nil {
			return err
		}
		defer d.close()

		evts, err := d.events.Adaptations(ctx, args[0], store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query decisions: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(evts) == 0 {
			fmt.Fprintln(out, "No decisions recorded.")
			return nil
		}

		fmt.Fprintf(out, "%-5s  %-16s  %5s  %-10s  %-21s  %-12s  %-12s  %s\n",
			"Seq", "Time", "Score", "Modality", "Rule", "From", "To", "Tier")
		fmt.Fprintln(out, strings.Repeat("─", 104))
		for _, e := range evts {
			fmt.Fprintf(out, "%-5d  %-16s  %5.1f  %-10s  %-21s  %-12s  %-12s  %s\n",
				e.Sequence,
				e.CreatedAt.Local().Format("2006-01-02 15:04"),
				e.Score,
				orDash(e.Modality),
				e.Rule,
				e.FromDifficulty,
				e.ToDifficulty,
				e.ToTier,
			)
			if verbose {
				fmt.Fprintf(out, "       %s\n", e.Reason)
			}
		}
		return nil
	},
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of decisions to show")
	historyCmd.Flags().BoolP("reasons", "r", false, "Show the reason under each decision")
}
