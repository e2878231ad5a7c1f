package daemon

import (
	"context"
	"errors"
	"testing"

	"github.com/leg100/console/internal/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestSubsystem(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		exclusive bool
	}{
		{"backoff", false},
		{"backoff and wait and lock", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := &Subsystem{
				Name:   tt.name,
				System: &fakeStartable{},
				Logger: logr.Discard(),
			}
			lock := &fakeWaitAndLock{}
			if tt.exclusive {
				sub.DB = lock
				sub.LockID = new(int64(123))
			}
			var g errgroup.Group
			err := sub.Start(ctx, &g)
			require.NoError(t, err)
			require.NoError(t, g.Wait())

			if tt.exclusive {
				assert.Equal(t, int64(123), lock.id)
			}
		})
	}

	t.Run("restart after failure", func(t *testing.T) {
		system := &fakeStartable{failures: 2}
		sub := &Subsystem{
			Name:   "flaky",
			System: system,
			Logger: logr.Discard(),
		}
		var g errgroup.Group
		require.NoError(t, sub.Start(ctx, &g))
		require.NoError(t, g.Wait())
		assert.Equal(t, 3, system.starts)
	})

	t.Run("lock requires db", func(t *testing.T) {
		sub := &Subsystem{
			Name:   "no-db",
			System: &fakeStartable{},
			Logger: logr.Discard(),
			LockID: new(int64(123)),
		}
		err := sub.Start(ctx, &errgroup.Group{})
		assert.Error(t, err)
	})
}

type (
	fakeStartable struct {
		failures int
		starts   int
	}
	fakeWaitAndLock struct {
		id int64
	}
)

func (f *fakeStartable) Start(ctx context.Context) error {
	f.starts++
	if f.starts <= f.failures {
		return errors.New("transient failure")
	}
	return nil
}

func (f *fakeWaitAndLock) WaitAndLock(ctx context.Context, id int64, fn func(context.Context) error) error {
	f.id = id
	return fn(ctx)
}
