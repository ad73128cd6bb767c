package cache

import (
	"container/list"
	"strings"
	"sync"
	"time"
)

// LRU — потокобезопасный ограниченный кеш с вытеснением давно не читавшихся
// записей и максимальным возрастом записи. Значения трактуются как
// неизменяемые снимки: кладите копию, если собираетесь мутировать оригинал.
type LRU[V any] struct {
	mu       sync.Mutex
	capacity int
	maxAge   time.Duration

	ll    *list.List
	items map[string]*list.Element

	now func() time.Time
}

type lruEntry[V any] struct {
	key      string
	value    V
	storedAt time.Time
}

// NewLRU создает новый кеш. capacity <= 0 недопустим; maxAge <= 0 означает
// отсутствие ограничения возраста.
func NewLRU[V any](capacity int, maxAge time.Duration) *LRU[V] {
	if capacity <= 0 {
		capacity = 1
	}
	return &LRU[V]{
		capacity: capacity,
		maxAge:   maxAge,
		ll:       list.New(),
		items:    make(map[string]*list.Element),
		now:      time.Now,
	}
}

// Get возвращает значение по ключу. Протухшая запись удаляется и считается
// промахом. Попадание освежает позицию записи.
func (c *LRU[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	el, ok := c.items[key]
	if !ok {
		return zero, false
	}

	ent := el.Value.(*lruEntry[V])
	if c.maxAge > 0 && c.now().Sub(ent.storedAt) > c.maxAge {
		c.removeElement(el)
		return zero, false
	}

	c.ll.MoveToFront(el)
	return ent.value, true
}

// Put кладет значение, при переполнении вытесняя самую старую по чтению запись.
func (c *LRU[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		ent := el.Value.(*lruEntry[V])
		ent.value = value
		ent.storedAt = c.now()
		c.ll.MoveToFront(el)
		return
	}

	el := c.ll.PushFront(&lruEntry[V]{key: key, value: value, storedAt: c.now()})
	c.items[key] = el

	for c.ll.Len() > c.capacity {
		c.removeElement(c.ll.Back())
	}
}

// Delete удаляет запись по ключу.
func (c *LRU[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.removeElement(el)
	}
}

// DeletePrefix удаляет все записи, ключи которых начинаются с prefix.
func (c *LRU[V]) DeletePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, el := range c.items {
		if strings.HasPrefix(key, prefix) {
			c.removeElement(el)
		}
	}
}

// Each вызывает fn для каждой записи под блокировкой кеша. fn не должна
// обращаться к кешу и обязана быть быстрой.
func (c *LRU[V]) Each(fn func(key string, value V)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, el := range c.items {
		fn(key, el.Value.(*lruEntry[V]).value)
	}
}

// Purge удаляет все записи.
func (c *LRU[V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ll.Init()
	c.items = make(map[string]*list.Element)
}

// Len возвращает текущее число записей.
func (c *LRU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

func (c *LRU[V]) removeElement(el *list.Element) {
	ent := el.Value.(*lruEntry[V])
	delete(c.items, ent.key)
	c.ll.Remove(el)
}
