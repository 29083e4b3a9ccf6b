package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Symbol string  `json:"symbol"`
	Score  float64 `json:"score"`
}

func TestMemoryCacheSetGet(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "analysis:AAPL", payload{Symbol: "AAPL", Score: 42.5}, time.Minute))

	var got payload
	require.NoError(t, mc.Get(ctx, "analysis:AAPL", &got))
	assert.Equal(t, payload{Symbol: "AAPL", Score: 42.5}, got)

	err := mc.Get(ctx, "analysis:MSFT", &got)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCacheExpiration(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k", payload{Symbol: "X"}, 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	var got payload
	assert.ErrorIs(t, mc.Get(ctx, "k", &got), ErrCacheMiss)

	ok, err := mc.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCacheDeleteAndExists(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "a", 1, time.Minute))
	require.NoError(t, mc.Set(ctx, "b", 2, time.Minute))

	ok, err := mc.Exists(ctx, "a", "b")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, mc.Delete(ctx, "a", "b"))
	ok, err = mc.Exists(ctx, "a", "b")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCacheEvictsLRU(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "old", 1, time.Minute))
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, mc.Set(ctx, "newer", 2, time.Minute))
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, mc.Set(ctx, "newest", 3, time.Minute))

	var v int
	assert.ErrorIs(t, mc.Get(ctx, "old", &v), ErrCacheMiss)
	assert.NoError(t, mc.Get(ctx, "newest", &v))
}

func TestKey(t *testing.T) {
	assert.Equal(t, "analysis:AAPL:1748822400", Key("analysis", "AAPL", 1748822400))
	assert.Equal(t, "solo", Key("solo"))
	assert.Equal(t, "", Key())
}
