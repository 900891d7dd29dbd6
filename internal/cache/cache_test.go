package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetSetPurge(t *testing.T) {
	c := New(true, time.Minute)
	_, _, ok := c.Get("k")
	assert.False(t, ok)

	etag := c.Set("k", []byte(`{"a":1}`))
	data, got, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, etag, got)
	assert.Equal(t, `{"a":1}`, string(data))

	c.Purge()
	_, _, ok = c.Get("k")
	assert.False(t, ok)

	stats := c.Stats()
	assert.Equal(t, uint64(1), stats["hits"])
	assert.Equal(t, uint64(2), stats["misses"])
	assert.Equal(t, uint64(1), stats["purges"])
}

func TestDisabledCache(t *testing.T) {
	c := New(false, time.Minute)
	etag := c.Set("k", []byte("x"))
	assert.Equal(t, ComputeETag([]byte("x")), etag)
	_, _, ok := c.Get("k")
	assert.False(t, ok)
}

func TestExpiry(t *testing.T) {
	c := New(true, -time.Second)
	c.Set("k", []byte("x"))
	_, _, ok := c.Get("k")
	assert.False(t, ok)
}

func TestCheckETagMatch(t *testing.T) {
	etag := ComputeETag([]byte("body"))
	assert.True(t, CheckETagMatch(etag, etag))
	assert.True(t, CheckETagMatch(`W/"0000", `+etag, etag))
	assert.True(t, CheckETagMatch("*", etag))
	assert.False(t, CheckETagMatch("", etag))
	assert.False(t, CheckETagMatch(`W/"0000"`, etag))
}
