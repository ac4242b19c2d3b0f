package cache

import (
	"sync"
	"time"
)

type InMemory[V any] struct {
	storage map[string]V
	lastSet map[string]time.Time

	mx sync.RWMutex
}

func NewInMemory[V any]() *InMemory[V] {
	return &InMemory[V]{
		storage: make(map[string]V, 100),
		lastSet: make(map[string]time.Time, 100),

		mx: sync.RWMutex{},
	}
}

func (c *InMemory[V]) Get(key string) (V, bool) {
	c.mx.RLock()
	defer c.mx.RUnlock()

	v, ok := c.storage[key]
	return v, ok
}

func (c *InMemory[V]) Set(key string, value V, ttl time.Duration) {
	c.mx.Lock()
	defer c.mx.Unlock()
	c.storage[key] = value
	c.lastSet[key] = time.Now()

	go func() {
		time.Sleep(ttl + time.Minute) // add extra minute
		c.mx.Lock()
		defer c.mx.Unlock()
		if _, ok := c.storage[key]; !ok {
			return
		}
		if time.Since(c.lastSet[key]) > ttl {
			delete(c.storage, key)
			delete(c.lastSet, key)
		}
	}()
}
