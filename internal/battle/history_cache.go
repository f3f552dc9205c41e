package battle

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"beastbattle/backend/internal/models"
)

// HistoryCache is a bounded, process-local read cache in front of
// battle-history queries, keyed by character id plus query shape. It is
// best effort: safe to drop, never a source of truth. Writers must call
// Invalidate for both participants after every resolved battle.
type HistoryCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]cacheEntry
}

type cacheEntry struct {
	records []models.BattleRecord
	addedAt time.Time
}

// NewHistoryCache creates a cache that evicts its oldest entry once
// capacity is exceeded.
func NewHistoryCache(capacity int) *HistoryCache {
	if capacity <= 0 {
		capacity = 1
	}
	return &HistoryCache{
		capacity: capacity,
		entries:  make(map[string]cacheEntry),
	}
}

func cacheKey(characterID string, limit int) string {
	return fmt.Sprintf("%s:%d", characterID, limit)
}

// Get returns the cached records for a character/limit pair, if present.
func (c *HistoryCache) Get(characterID string, limit int) ([]models.BattleRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[cacheKey(characterID, limit)]
	if !ok {
		return nil, false
	}
	return entry.records, true
}

// Put stores a query result, evicting the oldest entry when full.
func (c *HistoryCache) Put(characterID string, limit int, records []models.BattleRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(characterID, limit)
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.capacity {
		c.evictOldestLocked()
	}
	c.entries[key] = cacheEntry{records: records, addedAt: time.Now()}
}

// Invalidate drops every cached query for the given character id.
func (c *HistoryCache) Invalidate(characterID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := characterID + ":"
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
}

// Len reports the number of cached entries.
func (c *HistoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *HistoryCache) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	for key, entry := range c.entries {
		if oldestKey == "" || entry.addedAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = entry.addedAt
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}
