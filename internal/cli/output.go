package cli

import (
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// colorStatus colors a run or update status according to its outcome.
func colorStatus(status string) string {
	switch status {
	case "succeeded", "updated":
		return color.GreenString(status)
	case "errored", "error":
		return color.RedString(status)
	case "running", "updating", "queued":
		return color.YellowString(status)
	default:
		return status
	}
}

func since(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return humanize.Time(*t)
}
