package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
)

func TestClient_RoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(mr.Addr(), "", 0)
	ctx := context.Background()

	got, err := c.Get(ctx, "user:1:profile")
	assert.NoError(t, err)
	assert.Nil(t, got)

	assert.NoError(t, c.Set(ctx, "user:1:profile", []byte(`{"id":1}`), time.Minute))

	got, err = c.Get(ctx, "user:1:profile")
	assert.NoError(t, err)
	assert.Equal(t, []byte(`{"id":1}`), got)

	assert.NoError(t, c.Delete(ctx, "user:1:profile"))

	got, err = c.Get(ctx, "user:1:profile")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestClient_TTLExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(mr.Addr(), "", 0)
	ctx := context.Background()

	assert.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	mr.FastForward(2 * time.Minute)

	got, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestClient_FailsSafeWhenRedisIsDown(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(mr.Addr(), "", 0)
	ctx := context.Background()

	assert.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	mr.Close()

	// Reads degrade to cache misses, writes are swallowed.
	got, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, c.Set(ctx, "k", []byte("v2"), time.Minute))
	assert.NoError(t, c.Delete(ctx, "k"))
}

func TestClient_NilClientIsANoop(t *testing.T) {
	var c *Client
	ctx := context.Background()

	got, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	assert.NoError(t, c.Delete(ctx, "k"))
}
