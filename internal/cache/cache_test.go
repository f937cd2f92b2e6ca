package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSetAndGet(t *testing.T) {
	c := New[string, int]()
	c.Set("a", 1, 0)

	v, ok := c.Get("a")
	require.True(t, ok)
	require.Equal(t, 1, v)

	_, ok = c.Get("missing")
	require.False(t, ok)
}

func TestExpiration(t *testing.T) {
	base := time.Now()
	now = func() time.Time { return base }
	defer func() { now = time.Now }()

	c := New[string, string]()
	c.Set("k", "v", time.Minute)

	_, ok := c.Get("k")
	require.True(t, ok)

	now = func() time.Time { return base.Add(2 * time.Minute) }
	_, ok = c.Get("k")
	require.False(t, ok)
}

func TestZeroTTLNeverExpires(t *testing.T) {
	base := time.Now()
	now = func() time.Time { return base }
	defer func() { now = time.Now }()

	c := New[string, string]()
	c.Set("k", "v", 0)

	now = func() time.Time { return base.Add(24 * time.Hour) }
	_, ok := c.Get("k")
	require.True(t, ok)
}

func TestDeleteAndLen(t *testing.T) {
	base := time.Now()
	now = func() time.Time { return base }
	defer func() { now = time.Now }()

	c := New[string, int]()
	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Second)
	require.Equal(t, 2, c.Len())

	c.Delete("a")
	require.Equal(t, 1, c.Len())

	now = func() time.Time { return base.Add(time.Minute) }
	require.Equal(t, 0, c.Len())
}

func TestPurgeExpired(t *testing.T) {
	base := time.Now()
	now = func() time.Time { return base }
	defer func() { now = time.Now }()

	c := New[string, int]()
	c.Set("a", 1, time.Second)
	c.Set("b", 2, 0)

	now = func() time.Time { return base.Add(time.Minute) }
	c.PurgeExpired()

	require.Equal(t, 1, len(c.items))
	_, ok := c.Get("b")
	require.True(t, ok)
}
