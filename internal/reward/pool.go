package reward

import "github.com/mossfall/grottobot/internal/domain"

// PoolEntry is one resolved item entry in a flattened pool.
type PoolEntry struct {
	Item        domain.ItemDefinition
	CumulWeight int // cumulative weight up to and including this entry
}

// Pool is a draw pool whose entries carry cumulative weights for weighted
// selection. Pools are built per draw from catalog snapshots; they hold no
// state between calls.
type Pool struct {
	Entries     []PoolEntry
	TotalWeight int
}

// BuildRarityPool flattens the eligible items into a pool where each item's
// weight is its rarity weight. Items failing the filter (or with zero
// weight) contribute nothing. Returns nil when no item qualifies.
func BuildRarityPool(items []domain.ItemDefinition, eligible func(domain.ItemDefinition) bool) *Pool {
	p := &Pool{}
	for _, item := range items {
		if eligible != nil && !eligible(item) {
			continue
		}
		w := domain.RarityWeight(item.Rarity)
		if w <= 0 {
			continue
		}
		p.add(item, w)
	}
	if len(p.Entries) == 0 {
		return nil
	}
	return p
}

func (p *Pool) add(item domain.ItemDefinition, weight int) {
	p.TotalWeight += weight
	p.Entries = append(p.Entries, PoolEntry{Item: item, CumulWeight: p.TotalWeight})
}

// Select returns the entry chosen by a weighted roll in [0, TotalWeight).
func (p *Pool) Select(rnd func() float64) *domain.ItemDefinition {
	if p == nil || p.TotalWeight == 0 {
		return nil
	}
	roll := int(rnd() * float64(p.TotalWeight))
	lo, hi := 0, len(p.Entries)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if p.Entries[mid].CumulWeight <= roll {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return &p.Entries[lo].Item
}
