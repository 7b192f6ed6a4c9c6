package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryCachePutGet(t *testing.T) {
	c := NewMemoryCache()

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Put("key", "value", time.Second)
	got, ok := c.Get("key")
	assert.True(t, ok)
	assert.Equal(t, "value", got)
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache()

	c.Put("key", "value", 20*time.Millisecond)
	_, ok := c.Get("key")
	assert.True(t, ok)

	time.Sleep(50 * time.Millisecond)
	_, ok = c.Get("key")
	assert.False(t, ok)
}

func TestMemoryCacheNoExpiryForZeroTTL(t *testing.T) {
	c := NewMemoryCache()

	c.Put("key", "value", 0)
	time.Sleep(20 * time.Millisecond)
	got, ok := c.Get("key")
	assert.True(t, ok)
	assert.Equal(t, "value", got)
}

func TestMemoryCacheDelete(t *testing.T) {
	c := NewMemoryCache()

	c.Delete("missing") // no-op

	c.Put("key", "value", 0)
	c.Delete("key")
	_, ok := c.Get("key")
	assert.False(t, ok)
}

func TestMemoryCacheOverwrite(t *testing.T) {
	c := NewMemoryCache()

	c.Put("key", "old", 0)
	c.Put("key", "new", 0)
	got, _ := c.Get("key")
	assert.Equal(t, "new", got)
}
