package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/rangershop/pkg/cache"
)

func TestNoopCacheWithNilClient(t *testing.T) {
	ctx := context.Background()
	c := cache.New(nil)

	assert.NoError(t, c.Set(ctx, "k", "v", time.Minute))

	var dest string
	assert.False(t, c.Get(ctx, "k", &dest), "a no-op cache never hits")
	assert.Empty(t, dest)

	assert.NoError(t, c.Del(ctx, "k"))
}

func TestNilCacheIsSafe(t *testing.T) {
	ctx := context.Background()
	var c *cache.Cache

	var dest int
	assert.False(t, c.Get(ctx, "k", &dest))
	assert.NoError(t, c.Set(ctx, "k", 1, time.Minute))
	assert.NoError(t, c.Del(ctx, "k"))
}
