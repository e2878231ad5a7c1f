// Package issue turns errors found in function log streams into issues
// grouped by fingerprint, one set per stage.
package issue

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
	"time"

	"github.com/leg100/console/internal"
	"github.com/leg100/console/internal/resource"
)

type (
	// Issue is a distinct error seen in a stage's logs.
	Issue struct {
		ID           resource.ID `db:"issue_id"`
		WorkspaceID  resource.ID `db:"workspace_id"`
		StageID      resource.ID `db:"stage_id"`
		Group        string      `db:"group"`
		Error        string      `db:"error"`
		Message      string      `db:"message"`
		LogGroup     string      `db:"log_group"`
		Count        int         `db:"count"`
		TimeSeen     time.Time   `db:"time_seen"`
		TimeResolved *time.Time  `db:"time_resolved"`
		TimeCreated  time.Time   `db:"time_created"`
	}

	// LogGroup maps a log group to the stage whose functions write to it.
	LogGroup struct {
		LogGroup    string      `db:"log_group"`
		WorkspaceID resource.ID `db:"workspace_id"`
		StageID     resource.ID `db:"stage_id"`
	}

	ListOptions struct {
		resource.PageOptions
		// Resolved lists resolved issues rather than open ones.
		Resolved bool `schema:"resolved"`
	}
)

func newIssue(lg *LogGroup, occ occurrence) *Issue {
	return &Issue{
		ID:          resource.NewID(resource.IssueKind),
		WorkspaceID: lg.WorkspaceID,
		StageID:     lg.StageID,
		Group:       fingerprint(occ.Error, occ.Message),
		Error:       occ.Error,
		Message:     occ.Message,
		LogGroup:    lg.LogGroup,
		Count:       1,
		TimeSeen:    occ.Time,
		TimeCreated: internal.CurrentTimestamp(),
	}
}

func (i *Issue) GetID() resource.ID { return i.ID }

func (i *Issue) Resolved() bool { return i.TimeResolved != nil }

func (i *Issue) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", i.ID.String()),
		slog.String("stage_id", i.StageID.String()),
		slog.String("group", i.Group),
		slog.String("error", i.Error),
	)
}

// fingerprint groups occurrences by error type and the first line of the
// message.
func fingerprint(errType, msg string) string {
	first, _, _ := strings.Cut(msg, "\n")
	sum := sha256.Sum256([]byte(errType + "\n" + strings.TrimSpace(first)))
	return hex.EncodeToString(sum[:])
}
