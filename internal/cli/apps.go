package cli

import (
	"fmt"

	petname "github.com/dustinkirkland/golang-petname"
	"github.com/spf13/cobra"
)

func (a *CLI) appCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apps",
		Short: "App management",
	}
	cmd.AddCommand(&cobra.Command{
		Use:           "new [name]",
		Short:         "Create a new app. A name is generated if one is not given.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := petname.Generate(2, "-")
			if len(args) == 1 {
				name = args[0]
			}
			app, err := a.apps.CreateApp(cmd.Context(), name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Successfully created app %s (%s)\n", app.Name, app.ID)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "list",
		Short:         "List apps",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			apps, err := a.apps.ListApps(cmd.Context())
			if err != nil {
				return err
			}
			w := newTable(cmd.OutOrStdout())
			fmt.Fprintln(w, "ID\tNAME\tCREATED")
			for _, app := range apps {
				fmt.Fprintf(w, "%s\t%s\t%s\n", app.ID, app.Name, since(&app.CreatedAt))
			}
			return w.Flush()
		},
	})
	return cmd
}

func (a *CLI) stageCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stages",
		Short: "Stage management",
	}

	var region string
	newCmd := &cobra.Command{
		Use:           "new [app-id] [name]",
		Short:         "Create a new stage of an app",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			stage, err := a.apps.CreateStage(cmd.Context(), args[0], args[1], region)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Successfully created stage %s in %s (%s)\n", stage.Name, stage.Region, stage.ID)
			return nil
		},
	}
	newCmd.Flags().StringVar(&region, "region", "", "Cloud region of the stage. Required.")
	newCmd.MarkFlagRequired("region")
	cmd.AddCommand(newCmd)

	cmd.AddCommand(&cobra.Command{
		Use:           "list [app-id]",
		Short:         "List stages of an app",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			stages, err := a.apps.ListStages(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			w := newTable(cmd.OutOrStdout())
			fmt.Fprintln(w, "ID\tNAME\tREGION")
			for _, stage := range stages {
				fmt.Fprintf(w, "%s\t%s\t%s\n", stage.ID, stage.Name, stage.Region)
			}
			return w.Flush()
		},
	})
	return cmd
}
