package reward

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mossfall/grottobot/internal/domain"
)

func TestRandomEffect_BranchSelection(t *testing.T) {
	params := EffectParams{Catalog: testCatalog()}

	// Table weights: 15 xp, 15 work, 10 coin, 25 currency, 15 item, 20 nothing (total 100).
	tests := []struct {
		name string
		roll float64
		want EffectKind
	}{
		{"first band is xp boost", 0.0, KindXPBoost},
		{"work boost band", 0.20, KindWorkBoost},
		{"coin boost band", 0.35, KindCoinBoost},
		{"currency band", 0.50, KindCurrency},
		{"item grant band", 0.70, KindItemGrant},
		{"nothing band", 0.90, KindNothing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RandomEffect(params, seqRnd(tt.roll, 0.5))
			assert.Equal(t, tt.want, result.Kind)
		})
	}
}

func TestRandomEffect_MultiplierGrantShape(t *testing.T) {
	result := RandomEffect(EffectParams{}, seqRnd(0.0, 0.5))

	require.Equal(t, KindXPBoost, result.Kind)
	assert.Equal(t, domain.EffectXPMultiplier, result.EffectType)
	assert.Greater(t, result.Value, 1.0)
	assert.Greater(t, result.Duration, time.Duration(0))
	assert.Zero(t, result.Currency)
	assert.Nil(t, result.Item)
}

func TestRandomEffect_CurrencyRange(t *testing.T) {
	low := RandomEffect(EffectParams{}, seqRnd(0.50, 0.0))
	require.Equal(t, KindCurrency, low.Kind)
	assert.Equal(t, 100, low.Currency)

	high := RandomEffect(EffectParams{}, seqRnd(0.50, 0.999))
	require.Equal(t, KindCurrency, high.Kind)
	assert.LessOrEqual(t, high.Currency, 499)
	assert.GreaterOrEqual(t, high.Currency, 100)
}

func TestRandomEffect_ItemGrantEmptyCatalogDegrades(t *testing.T) {
	result := RandomEffect(EffectParams{}, seqRnd(0.70, 0.5))
	assert.Equal(t, KindNothing, result.Kind)
	assert.Nil(t, result.Item)
}

func TestRandomEffect_IndependentDraws(t *testing.T) {
	params := EffectParams{Catalog: testCatalog()}

	a := RandomEffect(params, seqRnd(0.0, 0.5))
	b := RandomEffect(params, seqRnd(0.90))

	// No memory between calls: outcomes depend only on their own rolls.
	assert.Equal(t, KindXPBoost, a.Kind)
	assert.Equal(t, KindNothing, b.Kind)
}
