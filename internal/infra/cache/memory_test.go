package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemoryCache()
	c.now = func() time.Time { return now }

	_, hit, err := c.Get(ctx, "prompts")
	require.NoError(t, err)
	require.False(t, hit)

	value := []byte(`{"main":"x"}`)
	require.NoError(t, c.Set(ctx, "prompts", value, time.Minute))
	value[0] = 'X'
	got, hit, err := c.Get(ctx, "prompts")
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, `{"main":"x"}`, string(got))

	now = now.Add(2 * time.Minute)
	_, hit, err = c.Get(ctx, "prompts")
	require.NoError(t, err)
	require.False(t, hit)

	require.NoError(t, c.Set(ctx, "model", []byte("1"), 0))
	now = now.Add(24 * time.Hour)
	_, hit, _ = c.Get(ctx, "model")
	require.True(t, hit)
	require.NoError(t, c.Delete(ctx, "model"))
	_, hit, _ = c.Get(ctx, "model")
	require.False(t, hit)
}
