package battle_test

import (
	"fmt"
	"testing"

	"beastbattle/backend/internal/battle"
	"beastbattle/backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestHistoryCache_PutGet(t *testing.T) {
	cache := battle.NewHistoryCache(4)
	records := []models.BattleRecord{{ID: "b1"}, {ID: "b2"}}

	cache.Put("char-1", 20, records)

	got, ok := cache.Get("char-1", 20)
	assert.True(t, ok)
	assert.Equal(t, records, got)
}

func TestHistoryCache_QueryShapeIsPartOfTheKey(t *testing.T) {
	cache := battle.NewHistoryCache(4)
	cache.Put("char-1", 20, []models.BattleRecord{{ID: "b1"}})

	_, ok := cache.Get("char-1", 10)
	assert.False(t, ok, "different limit must miss")
}

func TestHistoryCache_InvalidateDropsAllShapesForCharacter(t *testing.T) {
	cache := battle.NewHistoryCache(8)
	cache.Put("char-1", 10, []models.BattleRecord{{ID: "a"}})
	cache.Put("char-1", 20, []models.BattleRecord{{ID: "a"}})
	cache.Put("char-2", 10, []models.BattleRecord{{ID: "b"}})

	cache.Invalidate("char-1")

	_, ok := cache.Get("char-1", 10)
	assert.False(t, ok)
	_, ok = cache.Get("char-1", 20)
	assert.False(t, ok)
	_, ok = cache.Get("char-2", 10)
	assert.True(t, ok, "other characters' entries must survive")
}

func TestHistoryCache_CapacityEvictsOldest(t *testing.T) {
	cache := battle.NewHistoryCache(3)
	for i := 0; i < 4; i++ {
		cache.Put(fmt.Sprintf("char-%d", i), 20, nil)
	}

	assert.Equal(t, 3, cache.Len())
	_, ok := cache.Get("char-0", 20)
	assert.False(t, ok, "oldest entry should have been evicted")
	_, ok = cache.Get("char-3", 20)
	assert.True(t, ok)
}

func TestHistoryCache_OverwriteDoesNotEvict(t *testing.T) {
	cache := battle.NewHistoryCache(2)
	cache.Put("char-1", 20, nil)
	cache.Put("char-2", 20, nil)
	cache.Put("char-1", 20, []models.BattleRecord{{ID: "fresh"}})

	assert.Equal(t, 2, cache.Len())
	got, ok := cache.Get("char-1", 20)
	assert.True(t, ok)
	assert.Len(t, got, 1)
}
