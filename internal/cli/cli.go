// Package cli provides the CLI client, i.e. the `console` binary.
package cli

import (
	"context"
	"fmt"
	"io"

	cmdutil "github.com/leg100/console/cmd"
	"github.com/leg100/console/internal/app"
	"github.com/leg100/console/internal/apprepo"
	consolehttp "github.com/leg100/console/internal/http"
	"github.com/leg100/console/internal/issue"
	"github.com/leg100/console/internal/run"
	"github.com/leg100/console/internal/state"
	"github.com/leg100/console/internal/workspace"
	"github.com/spf13/cobra"
)

// CLI is the `console` cli application
type CLI struct {
	workspaces workspaceClient
	apps       appClient
	repos      repoClient
	runs       runClient
	updates    updateClient
	issues     issueClient

	store *ConfigStore
}

func NewCLI() (*CLI, error) {
	store, err := NewConfigStore()
	if err != nil {
		return nil, err
	}
	return &CLI{store: store}, nil
}

func (a *CLI) Run(ctx context.Context, args []string, out io.Writer) error {
	var (
		cfg           consolehttp.ClientConfig
		skipTLSVerify bool
	)

	cmd := &cobra.Command{
		Use:           "console",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg.Transport = consolehttp.Transport(skipTLSVerify)
		return a.newClient(&cfg)(cmd, args)
	}

	cmd.PersistentFlags().StringVar(&cfg.URL, "url", "", "URL of console server")
	cmd.PersistentFlags().StringVar(&cfg.Workspace, "workspace", "", "Workspace slug")
	cmd.PersistentFlags().StringVar(&cfg.Token, "token", "", "API authentication token")
	cmd.PersistentFlags().BoolVar(&skipTLSVerify, "skip-tls-verify", false, "Skip verification of the server's certificate")

	cmd.SetArgs(args)
	cmd.SetOut(out)

	cmd.AddCommand(a.configCommand())
	cmd.AddCommand(a.workspaceCommand())
	cmd.AddCommand(a.appCommand())
	cmd.AddCommand(a.stageCommand())
	cmd.AddCommand(a.repoCommand())
	cmd.AddCommand(a.runCommand())
	cmd.AddCommand(a.updateCommand())
	cmd.AddCommand(a.issueCommand())

	if err := cmdutil.SetFlagsFromEnvVariables(cmd.PersistentFlags()); err != nil {
		return fmt.Errorf("failed to populate config from environment vars: %w", err)
	}

	return cmd.ExecuteContext(ctx)
}

// newClient constructs the API clients. Settings are taken according to the
// following precedence:
// (1) flag
// (2) env var
// (3) config file
func (a *CLI) newClient(cfg *consolehttp.ClientConfig) func(*cobra.Command, []string) error {
	return func(*cobra.Command, []string) error {
		if a.workspaces != nil {
			// already set, e.g. by tests
			return nil
		}
		if a.store != nil {
			saved, err := a.store.Load()
			if err != nil {
				return err
			}
			if cfg.URL == "" {
				cfg.URL = saved.URL
			}
			if cfg.Workspace == "" {
				cfg.Workspace = saved.Workspace
			}
			if cfg.Token == "" {
				cfg.Token = saved.Token
			}
		}
		cfg.RetryRequests = true

		client, err := consolehttp.NewClient(*cfg)
		if err != nil {
			return err
		}
		a.workspaces = &workspace.Client{Client: client}
		a.apps = &app.Client{Client: client}
		a.repos = &apprepo.Client{Client: client}
		a.runs = &run.Client{Client: client}
		a.updates = &state.Client{Client: client}
		a.issues = &issue.Client{Client: client}
		return nil
	}
}
