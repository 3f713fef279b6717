package reward

import "github.com/mossfall/grottobot/internal/domain"

// MysteryDraw picks one item from the full catalog, excluding mystery-type
// items so a box can never contain another box. Returns nil when the catalog
// has nothing eligible.
func MysteryDraw(catalog []domain.ItemDefinition, rnd func() float64) *domain.ItemDefinition {
	pool := BuildRarityPool(catalog, func(d domain.ItemDefinition) bool {
		return d.Type != domain.ItemTypeMystery
	})
	return pool.Select(rnd)
}

// PremiumDraw picks one rare-or-better non-mystery item, falling back to the
// full mystery pool when no item qualifies.
func PremiumDraw(catalog []domain.ItemDefinition, rnd func() float64) *domain.ItemDefinition {
	pool := BuildRarityPool(catalog, func(d domain.ItemDefinition) bool {
		return d.Type != domain.ItemTypeMystery && d.Rarity.AtLeast(domain.RarityRare)
	})
	if pool == nil {
		return MysteryDraw(catalog, rnd)
	}
	return pool.Select(rnd)
}
