package cli

import (
	"github.com/spf13/cobra"
)

// NewLookupCommand creates the lookup command.
func NewLookupCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <barcode>",
		Short: "Look a barcode up and record it in the history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			p := a.lookup.LookupByBarcode(cmd.Context(), args[0])
			return writeProduct(cmd.OutOrStdout(), opts.Format, p)
		},
	}
}
