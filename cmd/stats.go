package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/tutoria/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show assessment service call statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		recent, _ := cmd.Flags().GetInt("recent")

		st, _, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		repo := st.HistoryRepo()

		usage, err := repo.APIUsageByOperation(ctx)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		if len(usage) == 0 {
			fmt.Fprintln(out, "No API calls recorded yet.")
			return nil
		}

		fmt.Fprintln(out, "Calls by Operation")
		fmt.Fprintln(out, strings.Repeat("─", 64))
		fmt.Fprintf(out, "%-16s  %6s  %8s  %10s  %10s\n", "Operation", "Calls", "Failures", "Avg Ms", "Max Ms")
		fmt.Fprintln(out, strings.Repeat("─", 64))
		for _, u := range usage {
			fmt.Fprintf(out, "%-16s  %6d  %8d  %10d  %10d\n",
				u.Operation, u.Calls, u.Failures, u.AvgLatencyMs, u.MaxLatencyMs)
		}

		if recent <= 0 {
			return nil
		}
		calls, err := repo.QueryAPICalls(ctx, store.QueryOpts{Limit: recent})
		if err != nil {
			return fmt.Errorf("query calls: %w", err)
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Recent Calls")
		fmt.Fprintln(out, strings.Repeat("─", 64))
		for _, c := range calls {
			ok := "✓"
			if !c.Success {
				ok = "✗"
			}
			line := fmt.Sprintf("%s  %-16s  %6dms  %s", c.Timestamp.Local().Format("2006-01-02 15:04:05"), c.Operation, c.LatencyMs, ok)
			if c.ErrorMessage != "" {
				line += "  " + truncate(c.ErrorMessage, 60)
			}
			fmt.Fprintln(out, line)
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().Int("recent", 10, "Number of recent calls to list (0 to hide)")
}
