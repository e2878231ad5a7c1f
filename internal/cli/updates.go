package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/leg100/console/internal/api/types"
	"github.com/spf13/cobra"
)

func (a *CLI) updateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "updates",
		Short: "Stack updates",
	}
	cmd.AddCommand(&cobra.Command{
		Use:           "list [stage-id]",
		Short:         "List updates of a stage",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			updates, err := a.updates.ListUpdates(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			w := newTable(cmd.OutOrStdout())
			fmt.Fprintln(w, "#\tID\tSTATUS\tCOMMAND\tCHANGES\tSTARTED")
			for _, u := range updates {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", u.Index, u.ID, colorStatus(u.Status), u.Command, changes(u), since(u.TimeStarted))
			}
			return w.Flush()
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "show [update-id]",
		Short:         "Show an update and its errors",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.updates.GetUpdate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			w := newTable(out)
			fmt.Fprintf(w, "Update\t#%d\n", u.Index)
			fmt.Fprintf(w, "Status\t%s\n", colorStatus(u.Status))
			fmt.Fprintf(w, "Command\t%s\n", u.Command)
			fmt.Fprintf(w, "Source\t%s\n", u.SourceType)
			fmt.Fprintf(w, "Changes\t%s\n", changes(u))
			fmt.Fprintf(w, "Started\t%s\n", since(u.TimeStarted))
			if err := w.Flush(); err != nil {
				return err
			}
			for _, e := range u.Errors {
				urn := "-"
				if e.URN != nil {
					urn = *e.URN
				}
				fmt.Fprintf(out, "%s %s: %s\n", color.HiRedString("Error:"), urn, e.Message)
			}
			return nil
		},
	})
	return cmd
}

func changes(u *types.Update) string {
	return fmt.Sprintf("+%d ~%d -%d", u.ResourceCreated, u.ResourceUpdated, u.ResourceDeleted)
}
