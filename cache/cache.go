package cache

import (
	"sync"
	"time"
)

type Item struct {
	data      []byte
	expiredAt time.Time
}

// Cache is an in-process TTL cache with a per-resource lifetime that can be
// raised at runtime, which is how degraded capacity levels stretch the
// stats cache from its base TTL.
type Cache struct {
	store       map[string]Item
	lifeTimes   map[string]time.Duration
	defaultLife time.Duration
	lock        *sync.RWMutex
}

func New(defaultLifeTime time.Duration) *Cache {
	return &Cache{
		store:       map[string]Item{},
		lifeTimes:   map[string]time.Duration{},
		defaultLife: defaultLifeTime,
		lock:        &sync.RWMutex{},
	}
}

func (c *Cache) Get(key string) ([]byte, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()

	item, ok := c.store[key]
	if !ok {
		return nil, false
	}

	if c.now().After(item.expiredAt) {
		return nil, false
	}

	return item.data, true
}

// GetStale returns the value even past its lifetime. Used when live reads
// are disabled and stale data beats no data.
func (c *Cache) GetStale(key string) ([]byte, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()

	item, ok := c.store[key]
	if !ok {
		return nil, false
	}
	return item.data, true
}

func (c *Cache) Set(resource string, key string, data []byte) {
	c.lock.Lock()
	defer c.lock.Unlock()

	lifeTime, ok := c.lifeTimes[resource]
	if !ok {
		lifeTime = c.defaultLife
	}

	c.store[key] = Item{
		data:      data,
		expiredAt: c.now().Add(lifeTime),
	}
}

func (c *Cache) SetCacheTtl(resource string, ttl time.Duration) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.lifeTimes[resource] = ttl
}

func (c *Cache) now() time.Time {
	return time.Now()
}
