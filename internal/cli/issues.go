package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *CLI) issueCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "issues",
		Short: "Errors raised by deployed functions",
	}

	var resolved bool
	listCmd := &cobra.Command{
		Use:           "list [stage-id]",
		Short:         "List issues of a stage",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := a.issues.ListIssues(cmd.Context(), args[0], resolved)
			if err != nil {
				return err
			}
			w := newTable(cmd.OutOrStdout())
			fmt.Fprintln(w, "ID\tERROR\tMESSAGE\tCOUNT\tLAST SEEN")
			for _, iss := range list.Items {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", iss.ID, iss.Error, iss.Message, iss.Count, since(&iss.TimeSeen))
			}
			return w.Flush()
		},
	}
	listCmd.Flags().BoolVar(&resolved, "resolved", false, "List resolved issues instead of active issues")
	cmd.AddCommand(listCmd)

	cmd.AddCommand(&cobra.Command{
		Use:           "resolve [issue-id]",
		Short:         "Resolve an issue",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			iss, err := a.issues.ResolveIssue(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Successfully resolved issue %s: %s\n", iss.ID, iss.Error)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "register-log-group [stage-id] [log-group]",
		Short:         "Attribute errors logged to a log group to a stage",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.issues.RegisterLogGroup(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Successfully registered log group %s\n", args[1])
			return nil
		},
	})
	return cmd
}
