package reward

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveScratch_NothingBand(t *testing.T) {
	outcome := ResolveScratch(testCatalog(), seqRnd(0.0))
	assert.Equal(t, ScratchNothing, outcome.Kind)
	assert.Zero(t, outcome.Currency)
	assert.Nil(t, outcome.Item)

	// Just under the boundary still resolves to nothing.
	outcome = ResolveScratch(testCatalog(), seqRnd(0.4999))
	assert.Equal(t, ScratchNothing, outcome.Kind)
}

func TestResolveScratch_CurrencyBand(t *testing.T) {
	outcome := ResolveScratch(testCatalog(), seqRnd(0.5, 0.0))
	require.Equal(t, ScratchCurrency, outcome.Kind)
	assert.Equal(t, scratchCurrencyMin, outcome.Currency)

	outcome = ResolveScratch(testCatalog(), seqRnd(0.79, 0.999))
	require.Equal(t, ScratchCurrency, outcome.Kind)
	assert.GreaterOrEqual(t, outcome.Currency, scratchCurrencyMin)
	assert.LessOrEqual(t, outcome.Currency, scratchCurrencyMax)
}

func TestResolveScratch_ItemBand(t *testing.T) {
	outcome := ResolveScratch(testCatalog(), seqRnd(0.85, 0.5))
	require.Equal(t, ScratchItem, outcome.Kind)
	require.NotNil(t, outcome.Item)
	assert.Zero(t, outcome.Currency)
}

func TestResolveScratch_ItemBandEmptyCatalog(t *testing.T) {
	outcome := ResolveScratch(nil, seqRnd(0.85, 0.5))
	assert.Equal(t, ScratchNothing, outcome.Kind)
}
