package cache

import (
	"context"
	"sync"
	"time"

	"github.com/swipeit/chatrelay/internal/models"
)

type memoryItem struct {
	profile   models.Participant
	expiresAt time.Time
}

// MemoryCache is the default in-process profile cache.
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string]memoryItem
	ttl   time.Duration
	now   func() time.Time
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		items: make(map[string]memoryItem),
		ttl:   profileTTL,
		now:   time.Now,
	}
}

// Get returns the cached profile for an id, if present and not expired.
func (c *MemoryCache) Get(_ context.Context, id string) (*models.Participant, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.items[id]
	if !ok || c.now().After(item.expiresAt) {
		return nil, false
	}
	p := item.profile
	return &p, true
}

// Put stores a profile under its id.
func (c *MemoryCache) Put(_ context.Context, p *models.Participant) {
	if p == nil || p.ID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[p.ID] = memoryItem{profile: *p, expiresAt: c.now().Add(c.ttl)}
}

// CleanupExpired drops expired entries. Callers decide the sweep cadence.
func (c *MemoryCache) CleanupExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for id, item := range c.items {
		if now.After(item.expiresAt) {
			delete(c.items, id)
		}
	}
}
