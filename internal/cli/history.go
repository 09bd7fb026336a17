package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the history command and its clear subcommand.
func NewHistoryCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show scanned products, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			return writeHistory(cmd.OutOrStdout(), opts.Format, a.history.Get(cmd.Context()))
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete the scan history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			a.history.Clear(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
			return nil
		},
	})

	return cmd
}
