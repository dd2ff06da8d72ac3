package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/soyeahso/roster/internal/breeds"
	"github.com/soyeahso/roster/internal/config"
	"github.com/soyeahso/roster/internal/gateway"
	"github.com/soyeahso/roster/internal/hooks"
	"github.com/soyeahso/roster/internal/proxy"
	"github.com/soyeahso/roster/internal/recordstore"
	"github.com/soyeahso/roster/internal/store"
	"github.com/spf13/cobra"
)

func newStoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage the record store service",
	}

	cmd.AddCommand(newStoreRunCmd())
	return cmd
}

func newStoreRunCmd() *cobra.Command {
	var (
		port   int
		bind   string
		dbPath string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the record store server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}

			if port != 0 {
				cfg.Store.Port = port
			}
			if bind != "" {
				cfg.Store.Bind = bind
			}
			if dbPath != "" {
				cfg.Store.Path = dbPath
			}
			if err := validateConfig(&cfg); err != nil {
				return err
			}

			path := cfg.Store.Path
			if path == "" {
				path = paths.DatabasePath()
			}
			db, err := store.Open(path, log)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer db.Close()
			log.Info().Str("path", path).Msg("using SQLite record store")

			var opts []recordstore.ServerOption
			if cfg.Store.Breeds.Validate {
				opts = append(opts, recordstore.WithBreedValidator(breeds.NewClient(cfg.Store.Breeds.URL)))
				log.Info().Str("catalog", cfg.Store.Breeds.URL).Msg("breed validation enabled")
			}
			if cfg.Store.Token == "" {
				log.Warn().Msg("store.token is empty, the record store accepts unauthenticated requests")
			}

			// Block until SIGINT/SIGTERM
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return recordstore.New(cfg.Store, db, log, opts...).Start(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "override store port")
	cmd.Flags().StringVar(&bind, "bind", "", "override bind mode (auto, lan, loopback, custom)")
	cmd.Flags().StringVar(&dbPath, "db", "", "sqlite database file (default ~/.roster/data/roster.db)")

	return cmd
}

func newProxyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proxy",
		Short: "Manage the dashboard-facing proxy",
	}

	cmd.AddCommand(newProxyRunCmd())
	return cmd
}

func newProxyRunCmd() *cobra.Command {
	var (
		port    int
		bind    string
		backend string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the proxy server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}

			if port != 0 {
				cfg.Proxy.Port = port
			}
			if bind != "" {
				cfg.Proxy.Bind = bind
			}
			if backend != "" {
				cfg.Backend.BaseURL = backend
			}
			if err := validateConfig(&cfg); err != nil {
				return err
			}

			hookMgr := hooks.NewManager(log)
			hookMgr.OnAll("audit", hooks.AuditLogger(log))

			fwd := proxy.NewForwarder(proxy.Options{
				BaseURL: cfg.Backend.BaseURL,
				Token:   cfg.Backend.Token,
				Timeout: time.Duration(cfg.Backend.TimeoutSeconds) * time.Second,
			}, log)
			log.Info().Str("backend", cfg.Backend.BaseURL).Msg("forwarding to record store")

			// Block until SIGINT/SIGTERM
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return gateway.New(cfg.Proxy, fwd, log, gateway.WithHooks(hookMgr)).Start(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "override proxy port")
	cmd.Flags().StringVar(&bind, "bind", "", "override bind mode (auto, lan, loopback, custom)")
	cmd.Flags().StringVar(&backend, "backend", "", "override backend base URL")

	return cmd
}
