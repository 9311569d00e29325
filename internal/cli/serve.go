package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrlokans/berthplan/internal/entrypoint"
)

func newServeCommand(flags *globalFlags, version string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server (default if no command given)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := flags.load()
			log, err := newLogger(cfg.Log.Level)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			return entrypoint.Run(cfg, log, version)
		},
	}
}
