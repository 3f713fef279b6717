package domain

import "time"

// Rarity is the ordered rarity tier of a catalog item.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
	RarityMythic    Rarity = "mythic"
)

// rarityRank orders tiers from common (0) upward. Unknown tiers rank as common.
var rarityRank = map[Rarity]int{
	RarityCommon:    0,
	RarityUncommon:  1,
	RarityRare:      2,
	RarityEpic:      3,
	RarityLegendary: 4,
	RarityMythic:    5,
}

// Rank returns the ordinal position of the rarity tier.
func (r Rarity) Rank() int {
	return rarityRank[r]
}

// AtLeast reports whether r is the given tier or rarer.
func (r Rarity) AtLeast(other Rarity) bool {
	return r.Rank() >= other.Rank()
}

// Valid reports whether the rarity names a known tier.
func (r Rarity) Valid() bool {
	_, ok := rarityRank[r]
	return ok
}

// ItemType categorizes catalog items. The type drives use-time behavior:
// consumables and mystery items are decremented after a successful use.
type ItemType string

const (
	ItemTypeConsumable  ItemType = "consumable"
	ItemTypeMystery     ItemType = "mystery"
	ItemTypeEquipment   ItemType = "equipment"
	ItemTypeMaterial    ItemType = "material"
	ItemTypeFish        ItemType = "fish"
	ItemTypeBait        ItemType = "bait"
	ItemTypeScratch     ItemType = "scratch"
	ItemTypeCollectible ItemType = "collectible"
)

// ItemVariant is an alternate display identity sharing the base item's stack.
type ItemVariant struct {
	Name  string `json:"name"`
	Emoji string `json:"emoji,omitempty"`
}

// ItemDefinition is one catalog entry, scoped to a guild. Created by
// administrative operations only; the rest of the engine treats it read-only.
type ItemDefinition struct {
	ID            string        `json:"id" db:"item_id"`
	GuildID       string        `json:"guild_id" db:"guild_id"`
	Name          string        `json:"name" db:"name"`
	Description   string        `json:"description" db:"description"`
	Type          ItemType      `json:"type" db:"item_type"`
	Rarity        Rarity        `json:"rarity" db:"rarity"`
	Price         int           `json:"price" db:"price"`
	MaxQuantity   int           `json:"max_quantity" db:"max_quantity"`
	DurationHours int           `json:"duration_hours" db:"duration_hours"`
	EffectType    EffectType    `json:"effect_type,omitempty" db:"effect_type"`
	EffectValue   float64       `json:"effect_value,omitempty" db:"effect_value"`
	Variants      []ItemVariant `json:"variants,omitempty"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
}

// EffectDuration converts DurationHours into a duration. Zero means the
// item's effect is permanent once applied.
func (d *ItemDefinition) EffectDuration() time.Duration {
	return time.Duration(d.DurationHours) * time.Hour
}

// Timed reports whether using the item grants a time-limited effect.
func (d *ItemDefinition) Timed() bool {
	return d.DurationHours > 0
}
