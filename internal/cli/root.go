package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mrlokans/berthplan/internal/config"
	"github.com/mrlokans/berthplan/internal/logger"
)

// globalFlags override the environment for a single invocation.
type globalFlags struct {
	DatabasePath string
	LogLevel     string
}

// NewRootCommand builds the berthplan command tree. Running it without a
// subcommand starts the HTTP server.
func NewRootCommand(version string) *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "berthplan",
		Short:         "Quay berth schedule importer",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.DatabasePath, "db", "", "database path (overrides DATABASE_PATH)")
	root.PersistentFlags().StringVar(&flags.LogLevel, "log-level", "", "log level: debug, info, warn, error (overrides LOG_LEVEL)")

	serve := newServeCommand(flags, version)
	root.RunE = serve.RunE

	root.AddCommand(
		serve,
		newImportCommand(flags),
		newConvertCommand(),
	)
	return root
}

// load reads the environment config and applies flag overrides.
func (f *globalFlags) load() *config.Config {
	cfg := config.NewConfig()
	if f.DatabasePath != "" {
		cfg.Database.Path = f.DatabasePath
	}
	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}
	return cfg
}

func newLogger(level string) (*zap.Logger, error) {
	log, err := logger.New(level)
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(log)
	return log, nil
}
