package reward

import "github.com/mossfall/grottobot/internal/domain"

// SelectCatch picks one fish from the catalog's fish-typed items. Base
// weights follow rarity (common heaviest). When bait is active, each
// rare-or-better entry gets an independent success roll: on success its
// weight is multiplied by the bait boost, otherwise it is left unchanged.
// Returns nil when the catalog defines no fish.
func SelectCatch(fish []domain.ItemDefinition, baitChance, baitBoost float64, rnd func() float64) *domain.ItemDefinition {
	p := &Pool{}
	for _, item := range fish {
		if item.Type != domain.ItemTypeFish {
			continue
		}
		w := domain.RarityWeight(item.Rarity)
		if w <= 0 {
			continue
		}
		if baitBoost > 1 && item.Rarity.AtLeast(domain.RarityRare) && rnd() < baitChance {
			w = int(float64(w) * baitBoost)
		}
		p.add(item, w)
	}
	return p.Select(rnd)
}
