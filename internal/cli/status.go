package cli

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/soyeahso/roster/internal/config"
	"github.com/soyeahso/roster/internal/version"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	var probe bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show roster configuration and service health",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Roster %s (commit %s)\n\n", version.Version, version.Commit)

			fmt.Fprintf(out, "Config:    %s\n", paths.Config)
			fmt.Fprintf(out, "Data:      %s\n", paths.Data)
			fmt.Fprintf(out, "Logs:      %s\n", paths.Logs)
			fmt.Fprintln(out)

			if _, err := os.Stat(paths.Config); os.IsNotExist(err) {
				fmt.Fprintln(out, "Config:    not found (using defaults)")
			}
			cfg, err := config.Load(paths.Config)
			if err != nil {
				fmt.Fprintf(out, "Config:    error loading: %v\n", err)
				return nil
			}

			dbPath := cfg.Store.Path
			if dbPath == "" {
				dbPath = paths.DatabasePath()
			}
			fmt.Fprintf(out, "Store:     addr=%s db=%s auth=%v breeds=%v\n",
				cfg.Store.Addr(), dbPath, cfg.Store.Token != "", cfg.Store.Breeds.Validate)
			fmt.Fprintf(out, "Proxy:     addr=%s tls=%v origins=%s\n",
				cfg.Proxy.Addr(), cfg.Proxy.TLS.Enabled, strings.Join(cfg.Proxy.AllowedOrigins, ","))
			fmt.Fprintf(out, "Backend:   %s (timeout %ds)\n", cfg.Backend.BaseURL, cfg.Backend.TimeoutSeconds)
			fmt.Fprintf(out, "Dashboard: %s\n", cfg.Dashboard.ProxyURL)

			if probe {
				fmt.Fprintln(out)
				fmt.Fprintf(out, "Backend health:  %s\n", health(cfg.Backend.BaseURL))
				fmt.Fprintf(out, "Proxy health:    %s\n", health(cfg.Dashboard.ProxyURL))
			}

			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				fmt.Fprintf(out, "\nValidation issues (%d):\n", len(issues))
				for _, issue := range issues {
					fmt.Fprintf(out, "  - %s: %s\n", issue.Path, issue.Message)
				}
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&probe, "probe", false, "also check the /health endpoints")
	return cmd
}

// health reports the result of GET <base>/health.
func health(base string) string {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(strings.TrimRight(base, "/") + "/health")
	if err != nil {
		return "unreachable"
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Sprintf("unhealthy (%d)", resp.StatusCode)
	}
	return "ok"
}
