package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLRU_PutGet(t *testing.T) {
	c := NewLRU[int](4, 0)

	c.Put("a", 1)
	c.Put("b", 2)

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestLRU_EvictsLeastRecentlyRead(t *testing.T) {
	c := NewLRU[int](3, 0)

	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)

	// чтение освежает "a"; следующая вставка должна вытеснить "b"
	_, _ = c.Get("a")
	c.Put("d", 4)

	_, ok := c.Get("b")
	assert.False(t, ok, "least recently read entry must be evicted")

	for _, key := range []string{"a", "c", "d"} {
		_, ok := c.Get(key)
		assert.True(t, ok, "entry %q must survive", key)
	}
	assert.Equal(t, 3, c.Len())
}

func TestLRU_UpdateDoesNotGrow(t *testing.T) {
	c := NewLRU[int](2, 0)

	c.Put("a", 1)
	c.Put("a", 10)
	c.Put("b", 2)

	assert.Equal(t, 2, c.Len())
	v, _ := c.Get("a")
	assert.Equal(t, 10, v)
}

func TestLRU_MaxAge(t *testing.T) {
	c := NewLRU[string](4, time.Minute)

	base := time.Now()
	c.now = func() time.Time { return base }
	c.Put("a", "fresh")

	// спустя 30 секунд запись жива
	c.now = func() time.Time { return base.Add(30 * time.Second) }
	_, ok := c.Get("a")
	assert.True(t, ok)

	// спустя 2 минуты — протухла
	c.now = func() time.Time { return base.Add(2 * time.Minute) }
	_, ok = c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len(), "expired entry must be removed on read")
}

func TestLRU_DeletePrefix(t *testing.T) {
	c := NewLRU[int](10, 0)

	c.Put("md5a:0:0:all", 1)
	c.Put("md5a:0:0:mods:64", 2)
	c.Put("md5a:0:1:all", 3)
	c.Put("md5b:0:0:all", 4)

	c.DeletePrefix("md5a:0:0")

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("md5a:0:1:all")
	assert.True(t, ok)
	_, ok = c.Get("md5b:0:0:all")
	assert.True(t, ok)
}

func TestLRU_Purge(t *testing.T) {
	c := NewLRU[int](4, 0)
	c.Put("a", 1)
	c.Put("b", 2)

	c.Purge()

	assert.Equal(t, 0, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok)
}
