// Package cache holds the in-memory session state observed by UI bindings.
package cache

import (
	"sync"

	"event-admin-console/internal/session/domain"
)

// Cache is a subscribable container for domain.State. Subscribers run synchronously after each
// mutation, outside the lock, and see the post-mutation state.
type Cache struct {
	mu     sync.RWMutex
	state  domain.State
	subs   map[int]func(domain.State)
	nextID int
}

// New returns a Cache in the initial unauthenticated state.
func New() *Cache {
	return &Cache{state: domain.InitialState(), subs: make(map[int]func(domain.State))}
}

// State returns a snapshot. The returned User is a copy.
func (c *Cache) State() domain.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return snapshot(c.state)
}

// Subscribe registers fn and returns a function that removes it.
func (c *Cache) Subscribe(fn func(domain.State)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
		})
	}
}

// SetCredentials marks the session authenticated as profile and clears loading and error.
func (c *Cache) SetCredentials(profile domain.UserProfile) {
	c.update(func(s *domain.State) {
		p := profile
		s.User = &p
		s.IsAuthenticated = true
		s.IsLoading = false
		s.Error = ""
	})
}

// Clear resets to the initial state.
func (c *Cache) Clear() {
	c.update(func(s *domain.State) { *s = domain.InitialState() })
}

// SetLoading sets the loading flag.
func (c *Cache) SetLoading(loading bool) {
	c.update(func(s *domain.State) { s.IsLoading = loading })
}

// SetError records msg and stops loading.
func (c *Cache) SetError(msg string) {
	c.update(func(s *domain.State) {
		s.Error = msg
		s.IsLoading = false
	})
}

// ClearError removes any recorded error.
func (c *Cache) ClearError() {
	c.update(func(s *domain.State) { s.Error = "" })
}

func (c *Cache) update(mutate func(*domain.State)) {
	c.mu.Lock()
	mutate(&c.state)
	state := snapshot(c.state)
	subs := make([]func(domain.State), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}

func snapshot(s domain.State) domain.State {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}
