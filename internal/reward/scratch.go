package reward

import "github.com/mossfall/grottobot/internal/domain"

// ScratchKind tags the band a scratch draw landed on.
type ScratchKind string

const (
	ScratchNothing  ScratchKind = "nothing"
	ScratchCurrency ScratchKind = "currency"
	ScratchItem     ScratchKind = "item"
)

// Fixed cumulative band boundaries: 50% nothing, 30% currency, 20% item.
const (
	scratchNothingBand  = 0.50
	scratchCurrencyBand = 0.80
)

// Currency sub-range for the middle band.
const (
	scratchCurrencyMin = 50
	scratchCurrencyMax = 300
)

// ScratchOutcome is the result of one scratch resolution.
type ScratchOutcome struct {
	Kind     ScratchKind
	Currency int
	Item     *domain.ItemDefinition
}

// ResolveScratch evaluates the three fixed probability bands with a single
// draw compared against cumulative boundaries.
func ResolveScratch(catalog []domain.ItemDefinition, rnd func() float64) ScratchOutcome {
	roll := rnd()

	switch {
	case roll < scratchNothingBand:
		return ScratchOutcome{Kind: ScratchNothing}
	case roll < scratchCurrencyBand:
		amount := scratchCurrencyMin + int(rnd()*float64(scratchCurrencyMax-scratchCurrencyMin+1))
		return ScratchOutcome{Kind: ScratchCurrency, Currency: amount}
	default:
		item := MysteryDraw(catalog, rnd)
		if item == nil {
			return ScratchOutcome{Kind: ScratchNothing}
		}
		return ScratchOutcome{Kind: ScratchItem, Item: item}
	}
}
