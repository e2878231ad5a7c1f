package cli

import (
	"fmt"

	"github.com/leg100/console/internal/api/types"
	"github.com/spf13/cobra"
)

func (a *CLI) repoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repos",
		Short: "Connect apps to github repositories",
	}

	var opts types.AppRepoConnectOptions
	connectCmd := &cobra.Command{
		Use:           "connect [app-id]",
		Short:         "Connect an app to a github repository",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.repos.Connect(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Successfully connected app to repo %d (%s)\n", repo.RepoID, repo.ID)
			return nil
		},
	}
	connectCmd.Flags().Int64Var(&opts.RepoID, "repo-id", 0, "Github repository ID. Required.")
	connectCmd.Flags().StringVar(&opts.BranchPattern, "branch-pattern", "", "Only deploy pushes to branches matching this glob")
	connectCmd.Flags().StringVar(&opts.StageName, "stage-name", "", "Deploy pushes to this stage instead of the stage named after the branch")
	connectCmd.MarkFlagRequired("repo-id")
	cmd.AddCommand(connectCmd)

	cmd.AddCommand(&cobra.Command{
		Use:           "show [app-id]",
		Short:         "Show the repository connected to an app",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.repos.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			w := newTable(cmd.OutOrStdout())
			fmt.Fprintf(w, "ID\t%s\n", repo.ID)
			fmt.Fprintf(w, "Repo\t%s %d\n", repo.Type, repo.RepoID)
			if repo.BranchPattern != "" {
				fmt.Fprintf(w, "Branch pattern\t%s\n", repo.BranchPattern)
			}
			if repo.StageName != "" {
				fmt.Fprintf(w, "Stage\t%s\n", repo.StageName)
			}
			fmt.Fprintf(w, "Last event\t%s\n", since(repo.TimeLastEvent))
			if repo.LastEventError != nil {
				fmt.Fprintf(w, "Last error\t%s\n", *repo.LastEventError)
			}
			return w.Flush()
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "disconnect [app-repo-id]",
		Short:         "Disconnect an app from its repository",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.repos.Disconnect(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Successfully disconnected %s\n", args[0])
			return nil
		},
	})
	return cmd
}
