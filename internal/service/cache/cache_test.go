package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTLCache_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewTTLCache()
	c.now = func() time.Time { return now }

	require.NoError(t, c.SetBytes(ctx, "dash:7,30", []byte("payload"), time.Minute))
	b, ok, err := c.GetBytes(ctx, "dash:7,30")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "payload", string(b))

	now = now.Add(61 * time.Second)
	_, ok, err = c.GetBytes(ctx, "dash:7,30")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestTTLCache_NoTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	c := NewTTLCache()
	require.NoError(t, c.SetBytes(ctx, "k", []byte("v"), 0))
	c.now = func() time.Time { return time.Now().Add(24 * 365 * time.Hour) }

	_, ok, _ := c.GetBytes(ctx, "k")
	assert.True(t, ok)
}

func TestTTLCache_StoresCopy(t *testing.T) {
	ctx := context.Background()
	c := NewTTLCache()
	v := []byte("abc")
	require.NoError(t, c.SetBytes(ctx, "k", v, time.Minute))
	v[0] = 'z'

	b, _, _ := c.GetBytes(ctx, "k")
	assert.Equal(t, "abc", string(b))
}

func TestRedisCache_UnreachableSurfacesError(t *testing.T) {
	c := NewRedisCache(RedisConfig{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond})
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, ok, err := c.GetBytes(ctx, "k")
	assert.False(t, ok)
	assert.Error(t, err)
}

var (
	_ BytesCache = (*TTLCache)(nil)
	_ BytesCache = (*RedisCache)(nil)
)

type failingCache struct{ err error }

func (f failingCache) GetBytes(context.Context, string) ([]byte, bool, error) {
	return nil, false, f.err
}

func (f failingCache) SetBytes(context.Context, string, []byte, time.Duration) error { return f.err }

func TestLayeredCache_PromotesFromL2(t *testing.T) {
	ctx := context.Background()
	l2 := NewTTLCache()
	require.NoError(t, l2.SetBytes(ctx, "k", []byte("shared"), time.Hour))

	lc := NewLayeredCache(l2, time.Second)
	b, ok, err := lc.GetBytes(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "shared", string(b))
	assert.Equal(t, 1, lc.l1.Len())
}

func TestLayeredCache_WriteThrough(t *testing.T) {
	ctx := context.Background()
	l2 := NewTTLCache()
	lc := NewLayeredCache(l2, 0)

	require.NoError(t, lc.SetBytes(ctx, "k", []byte("v"), time.Minute))
	_, ok, _ := l2.GetBytes(ctx, "k")
	assert.True(t, ok)
	_, ok, _ = lc.l1.GetBytes(ctx, "k")
	assert.True(t, ok)
}

func TestLayeredCache_L1ExpiresBeforeL2(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l2 := NewTTLCache()
	lc := NewLayeredCache(l2, 10*time.Second)
	lc.l1.now = func() time.Time { return now }

	require.NoError(t, lc.SetBytes(ctx, "k", []byte("v1"), time.Hour))
	require.NoError(t, l2.SetBytes(ctx, "k", []byte("v2"), time.Hour))

	b, _, _ := lc.GetBytes(ctx, "k")
	assert.Equal(t, "v1", string(b))

	now = now.Add(11 * time.Second)
	b, _, _ = lc.GetBytes(ctx, "k")
	assert.Equal(t, "v2", string(b))
}

func TestLayeredCache_L2ErrorsSurface(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("redis down")
	lc := NewLayeredCache(failingCache{err: boom}, 0)

	_, ok, err := lc.GetBytes(ctx, "k")
	assert.False(t, ok)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, lc.SetBytes(ctx, "k", []byte("v"), time.Minute), boom)
	assert.Equal(t, 0, lc.l1.Len())
}

var _ BytesCache = (*LayeredCache)(nil)
