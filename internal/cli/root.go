package cli

import (
	"fmt"
	"io"

	"github.com/soyeahso/roster/internal/config"
	"github.com/soyeahso/roster/internal/logging"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string

	// loaded at init time
	paths     config.Paths
	log       *logging.Logger
	logCloser io.Closer
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Roster - agent roster service, proxy and dashboard",
		Long:  "Roster keeps a roster of agents in a record store, fronts it with a proxy, and manages it from a terminal dashboard.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			paths, err = config.ResolvePaths()
			if err != nil {
				return err
			}
			if cfgFile != "" {
				paths.Config = cfgFile
			}

			// a broken config file must not block the config subcommands
			opts := logging.Options{Level: "info", Style: "pretty"}
			if cfg, err := config.Load(paths.Config); err == nil {
				opts = logging.Options{Level: cfg.Logging.Level, Style: cfg.Logging.ConsoleStyle, File: cfg.Logging.File}
			}
			if logLevel != "" {
				opts.Level = logLevel
			}
			log, logCloser, err = logging.Open(opts)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logCloser != nil {
				logCloser.Close()
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.roster/config.yaml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error, fatal, silent)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newStoreCmd())
	cmd.AddCommand(newProxyCmd())
	cmd.AddCommand(newDashboardCmd())
	cmd.AddCommand(newAgentsCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newStatusCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

// validateConfig logs every issue and fails if there are any.
func validateConfig(cfg *config.Config) error {
	issues := config.Validate(cfg)
	if len(issues) == 0 {
		return nil
	}
	for _, issue := range issues {
		log.Error().Str("path", issue.Path).Msg(issue.Message)
	}
	return fmt.Errorf("config validation failed with %d issue(s)", len(issues))
}
