/*
Copyright The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package cache provides a TTL cache for lookups that rarely change, such as
// image catalogs and workspace metadata.
package cache

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/mitchellh/hashstructure/v2"
	"k8s.io/utils/clock"
)

type entry[V any] struct {
	value      V
	expiration time.Time
}

// Cache is a TTL-based cache keyed by string
type Cache[V any] struct {
	mu       sync.RWMutex
	clock    clock.WithTicker
	items    map[string]*entry[V]
	ttl      time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
}

// New creates a cache with the specified TTL and starts its cleanup loop.
func New[V any](ttl time.Duration) *Cache[V] {
	return NewWithClock[V](ttl, clock.RealClock{})
}

// NewWithClock is New with an injectable clock.
func NewWithClock[V any](ttl time.Duration, clk clock.WithTicker) *Cache[V] {
	c := &Cache[V]{
		clock:    clk,
		items:    make(map[string]*entry[V]),
		ttl:      ttl,
		stopChan: make(chan struct{}),
	}
	go c.cleanup()
	return c
}

// Get retrieves a value from the cache
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V

	c.mu.RLock()
	e, exists := c.items[key]
	if !exists {
		c.mu.RUnlock()
		return zero, false
	}
	now := c.clock.Now()
	if !now.After(e.expiration) {
		defer c.mu.RUnlock()
		return e.value, true
	}
	c.mu.RUnlock()

	// Expired: take the write lock and re-check before removing.
	c.mu.Lock()
	defer c.mu.Unlock()
	e, exists = c.items[key]
	if exists && now.After(e.expiration) {
		delete(c.items, key)
	}
	return zero, false
}

// Set stores a value in the cache with the default TTL
func (c *Cache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value in the cache with a custom TTL
func (c *Cache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = &entry[V]{value: value, expiration: c.clock.Now().Add(ttl)}
}

// Delete removes a key from the cache
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Size returns the number of items in the cache, expired ones included until cleanup.
func (c *Cache[V]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Clear removes all items from the cache
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*entry[V])
}

// Stop stops the cleanup goroutine
func (c *Cache[V]) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopChan)
	})
}

func (c *Cache[V]) cleanup() {
	interval := c.ttl / 2
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := c.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C():
			c.removeExpired()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Cache[V]) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	for key, e := range c.items {
		if now.After(e.expiration) {
			delete(c.items, key)
		}
	}
}

// GetOrSet returns the cached value or stores the result of fetch. Errors are not cached.
func (c *Cache[V]) GetOrSet(key string, fetch func() (V, error)) (V, error) {
	if value, ok := c.Get(key); ok {
		return value, nil
	}
	value, err := fetch()
	if err != nil {
		var zero V
		return zero, err
	}
	c.Set(key, value)
	return value, nil
}

// Key hashes an arbitrary query struct into a cache key.
func Key(v interface{}) (string, error) {
	h, err := hashstructure.Hash(v, hashstructure.FormatV2, nil)
	if err != nil {
		return "", fmt.Errorf("hashing cache key: %w", err)
	}
	return strconv.FormatUint(h, 16), nil
}
