package cli

import (
	"fmt"

	"github.com/franckalain/allergenscan/internal/ml"
	"github.com/franckalain/allergenscan/internal/server"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command.
func NewServeCommand(opts *RootOptions) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			model, err := ml.NewModel(a.cfg.ML.Type, a.cfg.ML.Google)
			if err != nil {
				return fmt.Errorf("failed to create label model: %w", err)
			}
			if err := model.Load(cmd.Context()); err != nil {
				return fmt.Errorf("failed to load label model: %w", err)
			}
			defer model.Close()

			if port == "" {
				port = a.cfg.Server.Port
			}

			srv := server.New(a.lookup, a.history, model, a.cfg.Server.Debug)
			return srv.Start(port, a.cfg.Server.StaticDir)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "port to listen on (overrides config)")
	return cmd
}
