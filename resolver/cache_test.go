package resolver

import (
	"fmt"
	"testing"

	"github.com/alecthomas/assert"
)

func TestCacheDualKeys(t *testing.T) {
	cache := NewMessageStringCache(16)

	cache.Put("guid-1", "Application Error", 0xc0000001, NoEventVersion,
		"it broke")

	// Both key forms hit independently.
	value, pres := cache.Get("guid-1", "", 0xc0000001, NoEventVersion)
	assert.True(t, pres)
	assert.Equal(t, "it broke", value)

	value, pres = cache.Get("", "Application Error", 0xc0000001, NoEventVersion)
	assert.True(t, pres)
	assert.Equal(t, "it broke", value)

	// Two slots were consumed.
	assert.Equal(t, 2, cache.Len())

	// One identifier alone only writes one slot.
	cache.Put("guid-2", "", 0xc0000002, NoEventVersion, "other")
	assert.Equal(t, 3, cache.Len())
}

func TestCacheVersionQualifiedKeys(t *testing.T) {
	cache := NewMessageStringCache(16)

	cache.Put("guid-1", "", 7, 0, "version zero")
	cache.Put("guid-1", "", 7, 1, "version one")
	cache.Put("guid-1", "", 7, NoEventVersion, "unversioned")

	value, pres := cache.Get("guid-1", "", 7, 0)
	assert.True(t, pres)
	assert.Equal(t, "version zero", value)

	value, pres = cache.Get("guid-1", "", 7, 1)
	assert.True(t, pres)
	assert.Equal(t, "version one", value)

	value, pres = cache.Get("guid-1", "", 7, NoEventVersion)
	assert.True(t, pres)
	assert.Equal(t, "unversioned", value)

	_, pres = cache.Get("guid-1", "", 7, 2)
	assert.False(t, pres)
}

func TestCacheEviction(t *testing.T) {
	cache := NewMessageStringCache(4)

	for i := 0; i < 4; i++ {
		cache.Put(fmt.Sprintf("provider-%d", i), "", uint32(i),
			NoEventVersion, fmt.Sprintf("message-%d", i))
	}
	assert.Equal(t, 4, cache.Len())

	// Inserting beyond capacity evicts the least recently used entry.
	cache.Put("provider-4", "", 4, NoEventVersion, "message-4")
	assert.Equal(t, 4, cache.Len())

	_, pres := cache.Get("provider-0", "", 0, NoEventVersion)
	assert.False(t, pres)

	_, pres = cache.Get("provider-1", "", 1, NoEventVersion)
	assert.True(t, pres)
}

func TestCachePromotion(t *testing.T) {
	cache := NewMessageStringCache(4)

	for i := 0; i < 4; i++ {
		cache.Put(fmt.Sprintf("provider-%d", i), "", uint32(i),
			NoEventVersion, fmt.Sprintf("message-%d", i))
	}

	// A hit makes the oldest entry the most recently used, so the
	// next insert evicts provider-1 instead.
	_, pres := cache.Get("provider-0", "", 0, NoEventVersion)
	assert.True(t, pres)

	cache.Put("provider-4", "", 4, NoEventVersion, "message-4")

	_, pres = cache.Get("provider-0", "", 0, NoEventVersion)
	assert.True(t, pres)

	_, pres = cache.Get("provider-1", "", 1, NoEventVersion)
	assert.False(t, pres)
}

func TestCacheOverwrite(t *testing.T) {
	cache := NewMessageStringCache(4)

	cache.Put("guid-1", "", 1, NoEventVersion, "first")
	cache.Put("guid-1", "", 1, NoEventVersion, "second")
	assert.Equal(t, 1, cache.Len())

	value, pres := cache.Get("guid-1", "", 1, NoEventVersion)
	assert.True(t, pres)
	assert.Equal(t, "second", value)
}
