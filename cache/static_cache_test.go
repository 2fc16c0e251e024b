package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedCity struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func newTestCache(t *testing.T) (*StaticCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := New(NewRedisClient(mr.Addr(), ""), 5*time.Minute, zerolog.Nop())
	require.NotNil(t, c)
	return c, mr
}

func TestSetAndGet(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, "city", "sydney", cachedCity{Name: "Sydney", Slug: "sydney"})

	var got cachedCity
	require.True(t, c.Get(ctx, "city", "sydney", &got))
	assert.Equal(t, "Sydney", got.Name)
}

func TestGetMiss(t *testing.T) {
	c, _ := newTestCache(t)

	var got cachedCity
	assert.False(t, c.Get(context.Background(), "city", "perth", &got))
}

func TestEntriesExpire(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, "city", "sydney", cachedCity{Name: "Sydney", Slug: "sydney"})
	mr.FastForward(10 * time.Minute)

	var got cachedCity
	assert.False(t, c.Get(ctx, "city", "sydney", &got))
}

func TestInvalidateDropsOnlyKind(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, "city", "sydney", cachedCity{Name: "Sydney", Slug: "sydney"})
	c.Set(ctx, "city", "melbourne", cachedCity{Name: "Melbourne", Slug: "melbourne"})
	c.Set(ctx, "service", "deep-cleaning", map[string]string{"name": "Deep Cleaning"})

	c.Invalidate(ctx, "city")

	var city cachedCity
	assert.False(t, c.Get(ctx, "city", "sydney", &city))
	assert.False(t, c.Get(ctx, "city", "melbourne", &city))

	var service map[string]string
	assert.True(t, c.Get(ctx, "service", "deep-cleaning", &service),
		"other kinds must survive invalidation")
}

func TestCorruptEntryIsAMiss(t *testing.T) {
	c, mr := newTestCache(t)

	require.NoError(t, mr.Set("static:city:sydney", "{not json"))

	var got cachedCity
	assert.False(t, c.Get(context.Background(), "city", "sydney", &got))
}

func TestNilCacheIsPassThrough(t *testing.T) {
	var c *StaticCache
	ctx := context.Background()

	var got cachedCity
	assert.False(t, c.Get(ctx, "city", "sydney", &got))
	c.Set(ctx, "city", "sydney", cachedCity{Name: "Sydney"})
	c.Invalidate(ctx, "city")
	assert.NoError(t, c.Close())
}

func TestNewRedisClientEmptyAddr(t *testing.T) {
	assert.Nil(t, NewRedisClient("", ""))
	assert.Nil(t, New(nil, time.Minute, zerolog.Nop()))
}
