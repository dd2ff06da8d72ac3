package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/soyeahso/roster/internal/config"
	"github.com/soyeahso/roster/internal/dashboard"
	"github.com/soyeahso/roster/internal/domain"
	"github.com/soyeahso/roster/internal/proxy"
	"github.com/soyeahso/roster/internal/tui"
	"github.com/spf13/cobra"
)

// openDashboard builds a dashboard over the configured proxy.
func openDashboard() (*dashboard.Dashboard, error) {
	cfg, err := config.Load(paths.Config)
	if err != nil {
		return nil, err
	}
	client := proxy.NewClient(proxy.Options{BaseURL: cfg.Dashboard.ProxyURL}, log)
	return dashboard.New(client, log), nil
}

func newDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Open the terminal roster dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dash, err := openDashboard()
			if err != nil {
				return err
			}
			return tui.Run(dash)
		},
	}
}

func newAgentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agents",
		Short: "List and change roster agents through the proxy",
	}

	cmd.AddCommand(newAgentsListCmd())
	cmd.AddCommand(newAgentsCreateCmd())
	cmd.AddCommand(newAgentsSalaryCmd())
	cmd.AddCommand(newAgentsDeleteCmd())
	return cmd
}

func newAgentsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List agents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dash, err := openDashboard()
			if err != nil {
				return err
			}
			defer dash.Close()

			if err := dash.Load(cmd.Context()); err != nil {
				return userError(err)
			}
			roster := dash.Snapshot().Roster
			if len(roster) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "  (no agents)")
				return nil
			}
			for _, a := range roster {
				printAgent(cmd.OutOrStdout(), a)
			}
			return nil
		},
	}
}

func newAgentsCreateCmd() *cobra.Command {
	var form dashboard.Form

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an agent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dash, err := openDashboard()
			if err != nil {
				return err
			}
			defer dash.Close()

			if err := dash.SetForm(form); err != nil {
				return err
			}
			a, err := dash.Create(cmd.Context())
			if err != nil {
				return userError(err)
			}
			printAgent(cmd.OutOrStdout(), a)
			return nil
		},
	}

	cmd.Flags().StringVar(&form.Name, "name", "", "agent name")
	cmd.Flags().StringVar(&form.YearsOfExperience, "years", "0", "years of experience")
	cmd.Flags().StringVar(&form.Breed, "breed", "", "breed")
	cmd.Flags().StringVar(&form.Salary, "salary", "0", "salary")
	return cmd
}

func newAgentsSalaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "salary <id> <amount>",
		Short: "Update an agent's salary",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			dash, err := openDashboard()
			if err != nil {
				return err
			}
			defer dash.Close()

			if err := dash.Load(cmd.Context()); err != nil {
				return userError(err)
			}
			if err := dash.BeginEdit(id); err != nil {
				return lookupError(id, err)
			}
			if err := dash.StageSalary(args[1]); err != nil {
				return err
			}
			a, err := dash.CommitEdit(cmd.Context())
			if err != nil {
				return userError(err)
			}
			printAgent(cmd.OutOrStdout(), a)
			return nil
		},
	}
}

func newAgentsDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			dash, err := openDashboard()
			if err != nil {
				return err
			}
			defer dash.Close()

			if err := dash.Load(cmd.Context()); err != nil {
				return userError(err)
			}
			c, err := dash.RequestDelete(id)
			if err != nil {
				return lookupError(id, err)
			}
			if !yes && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), c.Prompt) {
				dash.CancelDelete(c.Token)
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
				return nil
			}
			conf, err := dash.ConfirmDelete(cmd.Context(), c.Token)
			if err != nil {
				return userError(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), conf.Message)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func printAgent(w io.Writer, a domain.Agent) {
	fmt.Fprintf(w, "  %-6d %-20s %-16s years=%-3d salary=%.2f\n", a.ID, a.Name, a.Breed, a.YearsOfExperience, a.Salary)
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N] ", prompt)
	line, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid agent id %q", s)
	}
	return id, nil
}

// userError turns a dashboard failure into the message a user should see.
func userError(err error) error {
	return errors.New(dashboard.ErrorMessage(err))
}

func lookupError(id int64, err error) error {
	if errors.Is(err, dashboard.ErrUnknownAgent) {
		return fmt.Errorf("agent %d not found", id)
	}
	return err
}
