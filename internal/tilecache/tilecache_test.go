package tilecache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hstin/locatormap/internal/config"
	"hstin/locatormap/internal/db"
)

var key = Key{Source: "terrain", Z: 6, X: 22, Y: 37}

func TestKeyString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "terrain/6/22/37", key.String())
}

func TestMemory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemory(2)

	_, ok, err := m.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Put(ctx, key, []byte("a")))
	data, ok, err := m.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("a"), data)
}

func TestMemoryEvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemory(2)

	k1 := Key{Source: "s", Z: 1, X: 0, Y: 0}
	k2 := Key{Source: "s", Z: 1, X: 1, Y: 0}
	k3 := Key{Source: "s", Z: 1, X: 0, Y: 1}

	require.NoError(t, m.Put(ctx, k1, []byte("1")))
	require.NoError(t, m.Put(ctx, k2, []byte("2")))
	_, _, _ = m.Get(ctx, k1)
	require.NoError(t, m.Put(ctx, k3, []byte("3")))

	assert.Equal(t, 2, m.Len())
	_, ok, _ := m.Get(ctx, k2)
	assert.False(t, ok)
	_, ok, _ = m.Get(ctx, k1)
	assert.True(t, ok)
	_, ok, _ = m.Get(ctx, k3)
	assert.True(t, ok)
}

func TestMBTiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	m := NewMBTiles(dir, func(source string) db.Metadata {
		return db.Metadata{Name: source, Format: "png", MaxZoom: 18}
	})

	require.NoError(t, m.Put(ctx, key, []byte("png")))
	data, ok, err := m.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("png"), data)
	require.NoError(t, m.Close())

	_, err = os.Stat(filepath.Join(dir, "terrain.mbtiles"))
	assert.NoError(t, err)

	reopened := NewMBTiles(dir, nil)
	defer reopened.Close()
	data, ok, err = reopened.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("png"), data)
}

type failingCache struct{}

func (failingCache) Get(context.Context, Key) ([]byte, bool, error) {
	return nil, false, assert.AnError
}
func (failingCache) Put(context.Context, Key, []byte) error { return assert.AnError }
func (failingCache) Close() error                           { return nil }

func TestChainBackfills(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	upper := NewMemory(10)
	lower := NewMemory(10)
	require.NoError(t, lower.Put(ctx, key, []byte("tile")))

	c := NewChain(upper, nil, lower)

	data, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("tile"), data)

	data, ok, _ = upper.Get(ctx, key)
	assert.True(t, ok)
	assert.Equal(t, []byte("tile"), data)
}

func TestChainPutWritesEveryTier(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	a, b := NewMemory(10), NewMemory(10)
	c := NewChain(a, b)

	require.NoError(t, c.Put(ctx, key, []byte("x")))
	assert.Equal(t, 1, a.Len())
	assert.Equal(t, 1, b.Len())

	_, ok, err := NewChain().Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestChainPropagatesErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := NewChain(NewMemory(1), failingCache{})

	_, _, err := c.Get(ctx, key)
	assert.ErrorIs(t, err, assert.AnError)
	assert.ErrorIs(t, c.Put(ctx, key, nil), assert.AnError)
}

func TestNewFromConfig(t *testing.T) {
	ctx := context.Background()

	c, err := New(ctx, config.CacheConfig{MemoryEntries: 4, MBTilesDir: t.TempDir()}, nil)
	require.NoError(t, err)
	defer c.Close()
	assert.Len(t, c.tiers, 2)

	empty, err := New(ctx, config.CacheConfig{}, nil)
	require.NoError(t, err)
	assert.Empty(t, empty.tiers)
}

func TestRedis(t *testing.T) {
	addr := os.Getenv("LOCATORMAP_TEST_REDIS")
	if addr == "" {
		t.Skip("LOCATORMAP_TEST_REDIS not set")
	}

	ctx := context.Background()
	r := NewRedis(addr, "", 0, time.Minute)
	defer r.Close()
	require.NoError(t, r.Ping(ctx))

	k := Key{Source: "test", Z: 1, X: 1, Y: time.Now().Nanosecond() % 2}
	require.NoError(t, r.Put(ctx, k, []byte("redis")))
	data, ok, err := r.Get(ctx, k)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("redis"), data)

	_, ok, err = r.Get(ctx, Key{Source: "test", Z: 30, X: 1, Y: 1})
	require.NoError(t, err)
	assert.False(t, ok)
}
