package catalog

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/mossfall/grottobot/internal/domain"
)

// itemCache provides an in-memory LRU cache for catalog reads with
// time-based expiration. The catalog is read on every earn/use/sell action
// but written only by administrative operations, so a short TTL keeps reads
// cheap without a write-through protocol.
type itemCache struct {
	items    *expirable.LRU[string, *domain.ItemDefinition]
	listings *expirable.LRU[string, []domain.ItemDefinition]
}

func newItemCache(size int, ttl time.Duration) *itemCache {
	return &itemCache{
		items:    expirable.NewLRU[string, *domain.ItemDefinition](size, nil, ttl),
		listings: expirable.NewLRU[string, []domain.ItemDefinition](size, nil, ttl),
	}
}

func itemKey(guildID, itemID string) string {
	return guildID + ":" + itemID
}

func (c *itemCache) GetItem(guildID, itemID string) (*domain.ItemDefinition, bool) {
	return c.items.Get(itemKey(guildID, itemID))
}

func (c *itemCache) SetItem(def *domain.ItemDefinition) {
	c.items.Add(itemKey(def.GuildID, def.ID), def)
}

func (c *itemCache) GetListing(guildID string) ([]domain.ItemDefinition, bool) {
	return c.listings.Get(guildID)
}

func (c *itemCache) SetListing(guildID string, defs []domain.ItemDefinition) {
	c.listings.Add(guildID, defs)
}

// InvalidateGuild drops everything cached for one guild. Called after any
// administrative write.
func (c *itemCache) InvalidateGuild(guildID string) {
	c.listings.Remove(guildID)
	for _, key := range c.items.Keys() {
		if len(key) > len(guildID) && key[:len(guildID)+1] == guildID+":" {
			c.items.Remove(key)
		}
	}
}
