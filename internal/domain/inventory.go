package domain

import "time"

// InventoryEntry is one stack of an item (and variant) a user owns in a
// guild. Quantity stays in (0, MaxQuantity]; a stack reaching zero is deleted
// rather than persisted, and an entry past ExpiresAt vanishes on discovery.
type InventoryEntry struct {
	UserID     string     `json:"user_id" db:"user_id"`
	GuildID    string     `json:"guild_id" db:"guild_id"`
	ItemID     string     `json:"item_id" db:"item_id"`
	Variant    string     `json:"variant,omitempty" db:"variant"`
	Quantity   int        `json:"quantity" db:"quantity"`
	AcquiredAt time.Time  `json:"acquired_at" db:"acquired_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty" db:"expires_at"`
}

// Expired reports whether the stack has passed its expiry at the given time.
func (e *InventoryEntry) Expired(now time.Time) bool {
	return e.ExpiresAt != nil && now.After(*e.ExpiresAt)
}

// AddItemResult reports an add that may have been truncated by the item's
// stacking cap. Truncation is a partial success, never an error.
type AddItemResult struct {
	ItemID  string `json:"item_id"`
	Variant string `json:"variant,omitempty"`
	Added   int    `json:"added"`
	Capped  bool   `json:"capped"`
	Total   int    `json:"total"`
}
