package cli

import (
	"fmt"
	"time"

	"github.com/franckalain/allergenscan/internal/config"
	"github.com/franckalain/allergenscan/internal/database"
	"github.com/franckalain/allergenscan/internal/foodfacts"
	"github.com/franckalain/allergenscan/internal/history"
	"github.com/franckalain/allergenscan/internal/lookup"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Format     string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the allergenscan CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "allergenscan",
		Short:         "Barcode allergen scanner backend",
		Long:          "Looks products up on Open Food Facts, classifies them against eight allergens and keeps a scan history.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return config.LoadEnvFile()
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to configuration file (JSON or YAML)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewLookupCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// app holds the components shared by the subcommands
type app struct {
	cfg     *config.Config
	db      database.DB
	history *history.Store
	lookup  *lookup.Service
}

func newApp(opts *RootOptions) (*app, error) {
	path := opts.ConfigPath
	if path == "" {
		path = config.GetConfigPath()
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := database.NewSQLiteDB(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := history.NewStore(db)
	client := foodfacts.NewClient(foodfacts.ClientConfig{
		BaseURL:   cfg.FoodFacts.BaseURL,
		UserAgent: cfg.FoodFacts.UserAgent,
		Timeout:   time.Duration(cfg.FoodFacts.Timeout),
	})

	return &app{
		cfg:     cfg,
		db:      db,
		history: store,
		lookup:  lookup.NewService(client, foodfacts.NewNormalizer(), store),
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}
