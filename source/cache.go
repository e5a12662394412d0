package source

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// sourceCache stores successfully loaded sources by name.
type sourceCache interface {
	get(name string) (*Source, bool)
	add(name string, s *Source)
	len() int
}

// mapCache keeps every source for the lifetime of the process.
type mapCache struct {
	mu      sync.RWMutex
	sources map[string]*Source
}

func newMapCache() *mapCache {
	return &mapCache{sources: make(map[string]*Source)}
}

func (c *mapCache) get(name string) (*Source, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.sources[name]
	return s, ok
}

func (c *mapCache) add(name string, s *Source) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sources[name] = s
}

func (c *mapCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sources)
}

// lruCache bounds the number of cached sources, evicting the least recently
// loaded one.
type lruCache struct {
	lru *lru.Cache[string, *Source]
}

func newLRUCache(size int) (*lruCache, error) {
	c, err := lru.New[string, *Source](size)
	if err != nil {
		return nil, err
	}
	return &lruCache{lru: c}, nil
}

func (c *lruCache) get(name string) (*Source, bool) {
	return c.lru.Get(name)
}

func (c *lruCache) add(name string, s *Source) {
	c.lru.Add(name, s)
}

func (c *lruCache) len() int {
	return c.lru.Len()
}
