package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brickfolio/brickfolio/internal/valuation"
)

func TestMemoryCache_RoundTrip(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	_, ok := c.Get(ctx, "p1")
	assert.False(t, ok)

	metrics := valuation.ValueMetrics{
		CurrentPrice:   9000,
		IntrinsicValue: 12000,
		TargetPrice:    9600,
		MarginOfSafety: 6.25,
	}
	require.NoError(t, c.Set(ctx, "p1", metrics))

	got, ok := c.Get(ctx, "p1")
	require.True(t, ok)
	assert.Equal(t, metrics, *got)

	// Returned value is a copy; mutating it must not affect the cache
	got.MarginOfSafety = 99
	again, ok := c.Get(ctx, "p1")
	require.True(t, ok)
	assert.Equal(t, 6.25, again.MarginOfSafety)

	require.NoError(t, c.Invalidate(ctx, "p1"))
	_, ok = c.Get(ctx, "p1")
	assert.False(t, ok)
}
