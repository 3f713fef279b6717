package reward

import (
	"time"

	"github.com/mossfall/grottobot/internal/domain"
)

// EffectKind tags the branch a random-effect draw landed on.
type EffectKind string

const (
	KindXPBoost   EffectKind = "xp_boost"
	KindWorkBoost EffectKind = "work_boost"
	KindCoinBoost EffectKind = "coin_boost"
	KindCurrency  EffectKind = "currency"
	KindItemGrant EffectKind = "item_grant"
	KindNothing   EffectKind = "nothing"
)

// EffectResult is the outcome of one random-effect draw. The caller applies
// it through the ledger/inventory operations; nothing here is persisted.
type EffectResult struct {
	Kind       EffectKind
	EffectType domain.EffectType // set for multiplier grants
	Value      float64           // multiplier for effect grants
	Duration   time.Duration     // effect lifetime for multiplier grants
	Currency   int               // instant currency for the currency branch
	Item       *domain.ItemDefinition
	Quantity   int
}

// EffectParams are the inputs a branch resolver may draw from.
type EffectParams struct {
	Catalog []domain.ItemDefinition
}

// effectBranch binds one effect kind to its fixed weight and pure resolver.
type effectBranch struct {
	kind    EffectKind
	weight  int
	resolve func(p EffectParams, rnd func() float64) EffectResult
}

// effectTable is the declarative weighted table of random-effect branches,
// kept separate from the dispatch loop.
var effectTable = []effectBranch{
	{kind: KindXPBoost, weight: 15, resolve: resolveXPBoost},
	{kind: KindWorkBoost, weight: 15, resolve: resolveWorkBoost},
	{kind: KindCoinBoost, weight: 10, resolve: resolveCoinBoost},
	{kind: KindCurrency, weight: 25, resolve: resolveCurrency},
	{kind: KindItemGrant, weight: 15, resolve: resolveItemGrant},
	{kind: KindNothing, weight: 20, resolve: resolveNothing},
}

// RandomEffect runs one weighted draw over the effect table and resolves the
// chosen branch. Two calls produce two independent draws.
func RandomEffect(p EffectParams, rnd func() float64) EffectResult {
	total := 0
	for _, b := range effectTable {
		total += b.weight
	}

	roll := int(rnd() * float64(total))
	cumul := 0
	for _, b := range effectTable {
		cumul += b.weight
		if roll < cumul {
			return b.resolve(p, rnd)
		}
	}
	// Unreachable for roll in [0, total); keep the last branch as a guard.
	return effectTable[len(effectTable)-1].resolve(p, rnd)
}

func resolveXPBoost(_ EffectParams, rnd func() float64) EffectResult {
	return EffectResult{
		Kind:       KindXPBoost,
		EffectType: domain.EffectXPMultiplier,
		Value:      1.5 + rnd(), // 1.5x..2.5x
		Duration:   time.Hour,
	}
}

func resolveWorkBoost(_ EffectParams, rnd func() float64) EffectResult {
	return EffectResult{
		Kind:       KindWorkBoost,
		EffectType: domain.EffectWorkMultiplier,
		Value:      1.25 + rnd()*0.75, // 1.25x..2x
		Duration:   2 * time.Hour,
	}
}

func resolveCoinBoost(_ EffectParams, rnd func() float64) EffectResult {
	return EffectResult{
		Kind:       KindCoinBoost,
		EffectType: domain.EffectCoinMultiplier,
		Value:      1.25 + rnd()*0.25, // 1.25x..1.5x
		Duration:   time.Hour,
	}
}

func resolveCurrency(_ EffectParams, rnd func() float64) EffectResult {
	return EffectResult{
		Kind:     KindCurrency,
		Currency: 100 + int(rnd()*400), // 100..499
	}
}

func resolveItemGrant(p EffectParams, rnd func() float64) EffectResult {
	item := MysteryDraw(p.Catalog, rnd)
	if item == nil {
		// Empty catalog degrades to the nothing branch.
		return EffectResult{Kind: KindNothing}
	}
	return EffectResult{Kind: KindItemGrant, Item: item, Quantity: 1}
}

func resolveNothing(_ EffectParams, _ func() float64) EffectResult {
	return EffectResult{Kind: KindNothing}
}
