package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*UnifiedCache[int], *time.Time) {
	t.Helper()
	c := NewUnifiedCache[int](time.Minute, "test", nil)
	t.Cleanup(c.Close)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestUnifiedCacheExpiry(t *testing.T) {
	c, now := newTestCache(t)

	c.Set("a", 1)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	*now = now.Add(2 * time.Minute)
	_, ok = c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Size())

	c.sweep()
	assert.Equal(t, 0, c.Size())
	assert.Equal(t, CacheMetrics{Hits: 1, Misses: 1, Sets: 1}, c.GetMetrics())
}

func TestGetOrLoad(t *testing.T) {
	c, _ := newTestCache(t)
	calls := 0
	load := func() (int, error) { calls++; return 7, nil }

	for i := 0; i < 3; i++ {
		v, err := c.GetOrLoad("k", load)
		require.NoError(t, err)
		assert.Equal(t, 7, v)
	}
	assert.Equal(t, 1, calls)

	_, err := c.GetOrLoad("bad", func() (int, error) { return 0, errors.New("boom") })
	assert.Error(t, err)
	_, ok := c.Get("bad")
	assert.False(t, ok)

	c.Delete("k")
	_, ok = c.Get("k")
	assert.False(t, ok)

	c.Set("x", 1)
	c.Clear()
	assert.Equal(t, 0, c.Size())
}
