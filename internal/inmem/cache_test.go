package inmem

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache(t *testing.T) {
	ctx := context.Background()
	cache, err := NewCache(CacheConfig{TTL: time.Minute})
	require.NoError(t, err)

	seen, err := cache.Seen(ctx, "record-1")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, cache.Mark(ctx, "record-1"))

	seen, err = cache.Seen(ctx, "record-1")
	require.NoError(t, err)
	assert.True(t, seen)

	seen, err = cache.Seen(ctx, "record-2")
	require.NoError(t, err)
	assert.False(t, seen)
}
