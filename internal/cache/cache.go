// Package cache provides a small concurrency-safe memoization cache: a
// bounded LRU whose entries also expire after a TTL, so wall-clock-dependent
// values cannot go stale in a long-lived process.
package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Memo is a bounded LRU keyed by string. The zero value is not usable; use New.
type Memo[V any] struct {
	lru *expirable.LRU[string, V]
}

// New creates a Memo holding at most size entries, each expiring after ttl.
// size <= 0 defaults to 128; ttl <= 0 disables expiry.
func New[V any](size int, ttl time.Duration) *Memo[V] {
	if size <= 0 {
		size = 128
	}
	return &Memo[V]{lru: expirable.NewLRU[string, V](size, nil, ttl)}
}

// Get returns the cached value for key and whether it was present.
func (m *Memo[V]) Get(key string) (V, bool) {
	return m.lru.Get(key)
}

// Add stores a value, evicting the least-recently-used entry when full.
func (m *Memo[V]) Add(key string, value V) {
	m.lru.Add(key, value)
}

// Len reports the number of live entries.
func (m *Memo[V]) Len() int {
	return m.lru.Len()
}

// Purge drops every entry.
func (m *Memo[V]) Purge() {
	m.lru.Purge()
}
