package cli

import (
	"fmt"

	"github.com/leg100/console/internal/api/types"
	"github.com/spf13/cobra"
)

func (a *CLI) runCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Deployment runs",
	}

	var opts types.ListOptions
	listCmd := &cobra.Command{
		Use:           "list [stage-id]",
		Short:         "List runs of a stage",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := a.runs.ListRuns(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			w := newTable(cmd.OutOrStdout())
			fmt.Fprintln(w, "ID\tSTATUS\tBRANCH\tCOMMIT\tSTARTED")
			for _, run := range list.Items {
				commit := run.CommitID
				if len(commit) > 7 {
					commit = commit[:7]
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", run.ID, colorStatus(run.Status), run.Branch, commit, since(run.TimeStarted))
			}
			return w.Flush()
		},
	}
	listCmd.Flags().IntVar(&opts.PageNumber, "page", 0, "Page number")
	listCmd.Flags().IntVar(&opts.PageSize, "page-size", 0, "Number of runs per page")
	cmd.AddCommand(listCmd)

	cmd.AddCommand(&cobra.Command{
		Use:           "logs [run-id]",
		Short:         "Print the logs of a run",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logs, err := a.runs.GetLogs(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(logs)
			return err
		},
	})
	return cmd
}
