package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/brightpath/internal/quiz"
)

var submitCmd = &cobra.Command{
	Use:   "submit <learner-id>",
	Short: "Record a completed quiz and show the resulting decision",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		f := cmd.Flags()

		score, _ := f.GetFloat64("score")
		modality, _ := f.GetString("modality")
		topic, _ := f.GetString("topic")
		asJSON, _ := f.GetBool("json")

		sub := quiz.Submission{
			LearnerID: args[0],
			Score:     score,
			Modality:  modality,
			Topic:     topic,
		}
		if f.Changed("streak") {
			n, _ := f.GetInt("streak")
			sub.CurrentStreak = &n
		}
		if f.Changed("completion") {
			c, _ := f.GetFloat64("completion")
			sub.CompletionRatio = &c
		}

		d, err := openDeps(ctx)
		if err != nil {
			return err
		}
		defer d.close()

		pub, err := d.publisher()
		if err != nil {
			return err
		}

		res, err := d.quizService(pub).Complete(ctx, sub)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}
		printResult(out, res)
		return nil
	},
}

func printResult(w io.Writer, r *quiz.Result) {
	h := r.Performance
	fmt.Fprintf(w, "Learner:     %s (v%d)\n", r.LearnerID, r.Version)
	fmt.Fprintf(w, "Score:       %.1f\n", r.Score)
	if r.Decision.Changed() {
		fmt.Fprintf(w, "Difficulty:  %s → %s (%s)\n", r.Decision.From, r.Decision.To, r.Decision.Rule)
	} else {
		fmt.Fprintf(w, "Difficulty:  %s (%s)\n", r.Decision.To, r.Decision.Rule)
	}
	if r.Tier.From != r.Tier.To {
		fmt.Fprintf(w, "Tier:        %s → %s\n", r.Tier.From, r.Tier.To)
	} else {
		fmt.Fprintf(w, "Tier:        %s\n", r.Tier.To)
	}
	fmt.Fprintf(w, "Trend:       %s\n", h.Trend)
	fmt.Fprintf(w, "Streak:      %s\n", h.StreakHealth)
	fmt.Fprintf(w, "Reason:      %s\n", r.Decision.Reason)

	if r.Rewards != nil {
		fmt.Fprintf(w, "Earned:      %d XP", r.Rewards.XP)
		if len(r.Rewards.Gems) > 0 {
			names := make([]string, len(r.Rewards.Gems))
			for i, g := range r.Rewards.Gems {
				names[i] = fmt.Sprintf("%s %s %s", g.Type.Icon(), g.Rarity.DisplayName(), g.Type.DisplayName())
			}
			fmt.Fprintf(w, ", %s", strings.Join(names, ", "))
		}
		fmt.Fprintln(w)
	}
	if r.Recovered {
		fmt.Fprintln(w, "Note:        the stored record was unreadable and was reset")
	}
}

func init() {
	f := submitCmd.Flags()
	f.Float64P("score", "s", 0, "Quiz score, 0-100")
	f.StringP("modality", "m", "", "Lesson modality: visual, reading, handson, listening")
	f.StringP("topic", "t", "", "Lesson topic")
	f.Int("streak", 0, "Current engagement streak in days")
	f.Float64("completion", 0, "Fraction of the lesson completed, 0-1")
	f.Bool("json", false, "Print the full result as JSON")
	submitCmd.MarkFlagRequired("score")
}
