package main

import (
	"context"
	"os"

	cmdutil "github.com/leg100/console/cmd"
	"github.com/leg100/console/internal/cli"
)

func main() {
	// Configure ^C to terminate program
	ctx, cancel := context.WithCancel(context.Background())
	cmdutil.CatchCtrlC(cancel)

	app, err := cli.NewCLI()
	if err != nil {
		cmdutil.PrintError(err)
		os.Exit(1)
	}
	if err := app.Run(ctx, os.Args[1:], os.Stdout); err != nil {
		cmdutil.PrintError(err)
		os.Exit(1)
	}
}
