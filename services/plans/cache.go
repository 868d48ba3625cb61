package plans

import (
	"container/list"
	"sync"
	"time"

	"github.com/google/uuid"
)

// cacheEntry represents a single cache entry with TTL
type cacheEntry struct {
	userID     uuid.UUID
	planTier   *string
	insertedAt time.Time
	element    *list.Element // For LRU tracking
}

// isExpired checks if the cache entry has expired
func (e *cacheEntry) isExpired(ttl time.Duration) bool {
	return time.Since(e.insertedAt) > ttl
}

// PlanCache is an in-memory LRU cache with TTL for plan tiers.
// A cached nil plan tier is a valid entry (user on the default plan).
type PlanCache struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*cacheEntry
	lruList *list.List // front is most recently used
	maxSize int
	ttl     time.Duration
	hits    uint64
	misses  uint64
}

// NewPlanCache creates a new PlanCache with specified max size and TTL
func NewPlanCache(maxSize int, ttl time.Duration) *PlanCache {
	if maxSize <= 0 {
		maxSize = 1
	}
	return &PlanCache{
		entries: make(map[uuid.UUID]*cacheEntry),
		lruList: list.New(),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

// Get returns the cached plan tier and whether a live entry was found.
func (c *PlanCache) Get(userID uuid.UUID) (*string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[userID]
	if !exists || entry.isExpired(c.ttl) {
		c.misses++
		if exists {
			c.removeEntry(userID)
		}
		return nil, false
	}

	c.lruList.MoveToFront(entry.element)
	c.hits++
	return copyTier(entry.planTier), true
}

// Set stores a plan tier in cache
func (c *PlanCache) Set(userID uuid.UUID, planTier *string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, exists := c.entries[userID]; exists {
		entry.planTier = copyTier(planTier)
		entry.insertedAt = time.Now()
		c.lruList.MoveToFront(entry.element)
		return
	}

	if c.lruList.Len() >= c.maxSize {
		c.evictLRU()
	}

	entry := &cacheEntry{
		userID:     userID,
		planTier:   copyTier(planTier),
		insertedAt: time.Now(),
	}
	entry.element = c.lruList.PushFront(userID)
	c.entries[userID] = entry
}

// CacheStats represents cache statistics
type CacheStats struct {
	Size    int
	MaxSize int
	Hits    uint64
	Misses  uint64
	HitRate float64
}

// Stats returns cache statistics
func (c *PlanCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	var hitRate float64
	if total := c.hits + c.misses; total > 0 {
		hitRate = float64(c.hits) / float64(total)
	}

	return CacheStats{
		Size:    c.lruList.Len(),
		MaxSize: c.maxSize,
		Hits:    c.hits,
		Misses:  c.misses,
		HitRate: hitRate,
	}
}

// removeEntry removes an entry from the cache (must be called with lock held)
func (c *PlanCache) removeEntry(userID uuid.UUID) {
	if entry, exists := c.entries[userID]; exists {
		c.lruList.Remove(entry.element)
		delete(c.entries, userID)
	}
}

// evictLRU evicts the least recently used entry (must be called with lock held)
func (c *PlanCache) evictLRU() {
	back := c.lruList.Back()
	if back == nil {
		return
	}
	userID := back.Value.(uuid.UUID)
	c.lruList.Remove(back)
	delete(c.entries, userID)
}

// CleanupExpired removes all expired entries and returns how many were removed
func (c *PlanCache) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var removed int
	for userID, entry := range c.entries {
		if entry.isExpired(c.ttl) {
			c.removeEntry(userID)
			removed++
		}
	}
	return removed
}

// StartCleanupWorker periodically removes expired entries until stopCh is closed
func (c *PlanCache) StartCleanupWorker(interval time.Duration, stopCh <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.CleanupExpired()
		case <-stopCh:
			return
		}
	}
}

func copyTier(planTier *string) *string {
	if planTier == nil {
		return nil
	}
	v := *planTier
	return &v
}
