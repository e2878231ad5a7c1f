package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *CLI) workspaceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workspaces",
		Short: "Workspace management",
	}
	cmd.AddCommand(&cobra.Command{
		Use:           "new [slug]",
		Short:         "Create a new workspace",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.workspaces.CreateWorkspace(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Successfully created workspace %s\n", ws.Slug)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "list",
		Short:         "List workspaces",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := a.workspaces.ListWorkspaces(cmd.Context())
			if err != nil {
				return err
			}
			for _, ws := range list {
				fmt.Fprintln(cmd.OutOrStdout(), ws.Slug)
			}
			return nil
		},
	})
	return cmd
}
