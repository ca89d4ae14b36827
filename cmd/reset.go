package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/tutoria/internal/assess"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the answer history kept by the assessment service",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, cfg, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		svc, err := newService(cfg, st.EventRepo())
		if err != nil {
			return err
		}
		if err := svc.Reset(cmd.Context()); err != nil {
			return fmt.Errorf("%s: %w", assess.Describe(err), err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Session reset on %s.\n", cfg.APIURL)
		return nil
	},
}
