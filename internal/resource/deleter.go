package resource

import (
	"context"
	"errors"
	"time"

	"github.com/leg100/console/internal"
	"github.com/leg100/console/internal/logr"
)

// By default check resources every minute
var deleterDefaultCheckInterval = time.Minute

type (
	deleteableResource interface {
		GetID() ID
	}

	// Deleter periodically deletes resources that have aged past a threshold.
	Deleter[R deleteableResource] struct {
		logr.Logger

		OverrideCheckInterval time.Duration
		// AgeThreshold of zero disables deletion.
		AgeThreshold time.Duration
		Client       deleterClient[R]

		// now overrides the current time in tests.
		now func() time.Time
	}

	deleterClient[R any] interface {
		ListOlderThan(ctx context.Context, age time.Time) ([]R, error)
		Delete(ctx context.Context, id ID) error
	}
)

// Start the deleter daemon.
func (e *Deleter[R]) Start(ctx context.Context) error {
	interval := deleterDefaultCheckInterval
	if e.OverrideCheckInterval != 0 {
		interval = e.OverrideCheckInterval
	}

	if _, err := e.deleteResources(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := e.deleteResources(ctx); err != nil {
				return err
			}
		}
	}
}

// deleteResources deletes every resource older than the threshold and
// returns the number deleted. A resource that has already gone is skipped.
func (e *Deleter[R]) deleteResources(ctx context.Context) (int, error) {
	if e.AgeThreshold == 0 {
		return 0, nil
	}
	now := time.Now
	if e.now != nil {
		now = e.now
	}
	cutoff := now().Add(-e.AgeThreshold)
	resources, err := e.Client.ListOlderThan(ctx, cutoff)
	if err != nil {
		e.Error(err, "retrieving aged resources for deletion", "cutoff", cutoff)
		return 0, err
	}
	var deleted int
	for _, res := range resources {
		id := res.GetID()
		err := e.Client.Delete(ctx, id)
		if errors.Is(err, internal.ErrResourceNotFound) {
			e.V(3).Info("aged resource already deleted", "id", id)
			continue
		} else if err != nil {
			e.Error(err, "deleting aged resource", "id", id, "kind", id.Kind)
			return deleted, err
		}
		deleted++
		e.V(1).Info("deleted aged resource", "id", id, "kind", id.Kind)
	}
	if deleted > 0 {
		e.V(0).Info("deleted aged resources", "count", deleted, "cutoff", cutoff)
	}
	return deleted, nil
}
