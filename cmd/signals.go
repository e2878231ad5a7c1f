package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// CatchCtrlC cancels the context upon the first interrupt or termination
// signal. A second signal exits immediately.
func CatchCtrlC(cancel context.CancelFunc) {
	signals := make(chan os.Signal, 2)
	signal.Notify(signals,
		syscall.SIGTERM,
		syscall.SIGINT,
	)

	go func() {
		<-signals
		cancel()
		<-signals
		fmt.Fprintln(os.Stderr, "received second signal, exiting immediately")
		os.Exit(1)
	}()
}
