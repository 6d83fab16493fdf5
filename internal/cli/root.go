package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/braincrumbs/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	Database string // overrides CRUMBS_DB_PATH (sqlite) or CRUMBS_DB_URL
	Catalog  string // overrides CRUMBS_CATALOG

	// Config is resolved lazily from the environment plus flag overrides.
	// Tests may set it directly.
	Config *config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the crumbs CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "crumbs",
		Short: "brainCrumbs academy",
		Long:  "Browse courses, work through lessons and quizzes, and track completion progress.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			cfg, err := opts.ResolveConfig()
			if err != nil {
				return commandError("invalid configuration", err)
			}
			return setupLogging(cmd, opts, cfg)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "progress database path (sqlite) or URL")
	cmd.PersistentFlags().StringVar(&opts.Catalog, "catalog", "", "catalog file (default: embedded catalog)")

	// Add subcommands
	cmd.AddCommand(NewCoursesCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewStartCommand(opts))
	cmd.AddCommand(NewNextCommand(opts))
	cmd.AddCommand(NewCompleteCommand(opts))
	cmd.AddCommand(NewToggleCommand(opts))
	cmd.AddCommand(NewResetCommand(opts))
	cmd.AddCommand(NewProgressCommand(opts))
	cmd.AddCommand(NewQuizCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// ResolveConfig loads configuration from the environment once and applies
// the --db and --catalog overrides.
func (o *RootOptions) ResolveConfig() (*config.Config, error) {
	if o.Config == nil {
		cfg := config.Load()
		if o.Database != "" {
			switch cfg.DatabaseType {
			case config.DatabasePostgres, "postgresql", config.DatabaseMySQL:
				cfg.DatabaseURL = o.Database
			default:
				cfg.DatabasePath = o.Database
			}
		}
		if o.Catalog != "" {
			cfg.CatalogPath = o.Catalog
		}
		o.Config = cfg
	}
	if err := o.Config.Validate(); err != nil {
		return nil, err
	}
	return o.Config, nil
}

// setupLogging installs the default slog logger on the command's stderr.
// --verbose forces debug; otherwise CRUMBS_LOG_LEVEL applies.
func setupLogging(cmd *cobra.Command, opts *RootOptions, cfg *config.Config) error {
	level, err := cfg.Level()
	if err != nil {
		return commandError("invalid log level", err)
	}
	if opts.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: level,
	})))
	return nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
