package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"site-admin-backend/internal/cache"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestTTL_ExpiresAfterTTL(t *testing.T) {
	clk := &clock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	c := cache.NewTTL[int](5 * time.Minute).WithClock(clk.now)

	c.Set("k", 7)
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 7, v)

	clk.advance(4*time.Minute + 59*time.Second)
	_, ok = c.Get("k")
	assert.True(t, ok, "still fresh just before the TTL")

	clk.advance(time.Second)
	_, ok = c.Get("k")
	assert.False(t, ok, "stale once the TTL has elapsed")

	e, ok := c.Entry("k")
	require.True(t, ok)
	assert.Equal(t, 7, e.Value)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), e.FetchedAt)
}

func TestTTL_Invalidate(t *testing.T) {
	c := cache.NewTTL[string](time.Hour)
	c.Set("k", "v")
	c.Invalidate("k")

	_, ok := c.Get("k")
	assert.False(t, ok)
	_, ok = c.Entry("k")
	assert.False(t, ok)
}

func TestMemoryCounts_CopiesMaps(t *testing.T) {
	ctx := context.Background()
	m := cache.NewMemoryCounts(time.Minute)

	in := map[string]int{"all": 3}
	m.Set(ctx, "counts", in)
	in["all"] = 99

	out, ok := m.Get(ctx, "counts")
	require.True(t, ok)
	assert.Equal(t, 3, out["all"])

	out["all"] = 42
	again, _ := m.Get(ctx, "counts")
	assert.Equal(t, 3, again["all"])
}

func TestMemoryCounts_MissAndInvalidate(t *testing.T) {
	ctx := context.Background()
	clk := &clock{t: time.Unix(0, 0)}
	m := cache.NewMemoryCounts(time.Minute).WithClock(clk.now)

	_, ok := m.Get(ctx, "counts")
	assert.False(t, ok)

	m.Set(ctx, "counts", map[string]int{"all": 1})
	m.Invalidate(ctx, "counts")
	_, ok = m.Get(ctx, "counts")
	assert.False(t, ok)

	m.Set(ctx, "counts", map[string]int{"all": 1})
	clk.advance(time.Minute)
	_, ok = m.Get(ctx, "counts")
	assert.False(t, ok)
}

func TestNewRedisCounts_RequiresAddress(t *testing.T) {
	_, err := cache.NewRedisCounts("", time.Minute, nil)
	assert.Error(t, err)
}

func TestMemoryCounts_SetIfGenerationRefusesAfterInvalidate(t *testing.T) {
	ctx := context.Background()
	m := cache.NewMemoryCounts(time.Minute)

	gen := m.Generation(ctx, "counts")
	m.Invalidate(ctx, "counts")
	assert.Equal(t, gen+1, m.Generation(ctx, "counts"))

	assert.False(t, m.SetIfGeneration(ctx, "counts", gen, map[string]int{"all": 0}))
	_, ok := m.Get(ctx, "counts")
	assert.False(t, ok, "a value computed before the invalidation is not stored")

	assert.True(t, m.SetIfGeneration(ctx, "counts", gen+1, map[string]int{"all": 1}))
	out, ok := m.Get(ctx, "counts")
	require.True(t, ok)
	assert.Equal(t, 1, out["all"])
}

func TestMemoryCounts_GenerationsArePerKey(t *testing.T) {
	ctx := context.Background()
	m := cache.NewMemoryCounts(time.Minute)

	m.Invalidate(ctx, "a")
	assert.Equal(t, uint64(1), m.Generation(ctx, "a"))
	assert.Zero(t, m.Generation(ctx, "b"))
	assert.True(t, m.SetIfGeneration(ctx, "b", 0, map[string]int{"all": 2}))
}
