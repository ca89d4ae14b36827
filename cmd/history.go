package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/tutoria/internal/mastery"
	"github.com/abhisek/tutoria/internal/screens/history"
	"github.com/abhisek/tutoria/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history [session-id]",
	Short: "List recorded sessions, or the answers of one session",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		exact, _ := cmd.Flags().GetBool("exact")

		st, _, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		repo := st.HistoryRepo()
		out := cmd.OutOrStdout()

		if len(args) == 1 {
			answers, err := repo.QueryAnswers(ctx, args[0])
			if err != nil {
				return fmt.Errorf("query answers: %w", err)
			}
			if len(answers) == 0 {
				fmt.Fprintf(out, "No answers recorded for session %s.\n", args[0])
				return nil
			}
			for i, a := range answers {
				mark := "✓"
				if !a.Correct {
					mark = "✗"
				}
				fmt.Fprintf(out, "%3d. %s [%s] %s\n", i+1, mark, a.Skill, a.QuestionText)
				fmt.Fprintf(out, "       you: %s  answer: %s  (%dms)\n", a.ChosenAnswer, a.CorrectAnswer, a.LatencyMs)
			}
			return nil
		}

		sessions, err := repo.QuerySessionSummaries(ctx, store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query sessions: %w", err)
		}
		if len(sessions) == 0 {
			fmt.Fprintln(out, "No sessions recorded yet.")
			return nil
		}

		for _, s := range sessions {
			fmt.Fprintf(out, "%s  %s\n", s.SessionID, history.SummaryLine(s))
			if len(s.Profile) == 0 {
				continue
			}
			fmt.Fprintf(out, "    profile: %s\n", profileLine(s.Profile, exact))
		}
		return nil
	},
}

// profileLine renders a stored profile in service order. exact shows the
// unrounded percentages instead of the panel labels.
func profileLine(profile []store.PredictionData, exact bool) string {
	parts := make([]string, len(profile))
	for i, p := range profile {
		row := mastery.Row{Skill: p.Skill, Fraction: p.Probability}
		pct := row.Label()
		if exact {
			pct = row.Width()
		}
		parts[i] = row.Skill + " " + pct
	}
	return strings.Join(parts, ", ")
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of sessions to show")
	historyCmd.Flags().Bool("exact", false, "Show unrounded mastery percentages")
}
