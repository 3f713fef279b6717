package reward

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mossfall/grottobot/internal/domain"
)

// seqRnd returns a rnd func that replays the given values, repeating the
// last one when exhausted.
func seqRnd(vals ...float64) func() float64 {
	i := 0
	return func() float64 {
		v := vals[i]
		if i < len(vals)-1 {
			i++
		}
		return v
	}
}

func testCatalog() []domain.ItemDefinition {
	return []domain.ItemDefinition{
		{ID: "pebble", Rarity: domain.RarityCommon, Type: domain.ItemTypeMaterial},
		{ID: "lockpick", Rarity: domain.RarityUncommon, Type: domain.ItemTypeConsumable},
		{ID: "golden_rod", Rarity: domain.RarityRare, Type: domain.ItemTypeEquipment},
		{ID: "dragon_scale", Rarity: domain.RarityLegendary, Type: domain.ItemTypeCollectible},
		{ID: "mystery_box", Rarity: domain.RarityRare, Type: domain.ItemTypeMystery},
	}
}

func TestBuildRarityPool_Weights(t *testing.T) {
	pool := BuildRarityPool(testCatalog(), nil)
	require.NotNil(t, pool)

	// 30 + 25 + 20 + 10 + 20 (mystery is rare) = 105
	assert.Equal(t, 105, pool.TotalWeight)
	assert.Len(t, pool.Entries, 5)

	// Cumulative weights ascend strictly.
	prev := 0
	for _, e := range pool.Entries {
		assert.Greater(t, e.CumulWeight, prev)
		prev = e.CumulWeight
	}
	assert.Equal(t, pool.TotalWeight, prev)
}

func TestBuildRarityPool_FilterAndEmpty(t *testing.T) {
	pool := BuildRarityPool(testCatalog(), func(d domain.ItemDefinition) bool {
		return d.Rarity == domain.RarityMythic
	})
	assert.Nil(t, pool)
}

func TestPoolSelect_Boundaries(t *testing.T) {
	pool := BuildRarityPool(testCatalog(), nil)
	require.NotNil(t, pool)

	// Roll 0 lands in the first entry.
	first := pool.Select(seqRnd(0))
	require.NotNil(t, first)
	assert.Equal(t, "pebble", first.ID)

	// Roll just under 1.0 lands in the last entry.
	last := pool.Select(seqRnd(0.999999))
	require.NotNil(t, last)
	assert.Equal(t, pool.Entries[len(pool.Entries)-1].Item.ID, last.ID)
}

func TestPoolSelect_NilPool(t *testing.T) {
	var pool *Pool
	assert.Nil(t, pool.Select(seqRnd(0.5)))
}

func TestMysteryDraw_ExcludesMysteryItems(t *testing.T) {
	catalog := testCatalog()

	// Sweep the roll space; a mystery item must never come out.
	for roll := 0.0; roll < 1.0; roll += 0.01 {
		item := MysteryDraw(catalog, seqRnd(roll))
		require.NotNil(t, item)
		assert.NotEqual(t, domain.ItemTypeMystery, item.Type)
	}
}

func TestPremiumDraw_RareOrBetterOnly(t *testing.T) {
	catalog := testCatalog()

	for roll := 0.0; roll < 1.0; roll += 0.01 {
		item := PremiumDraw(catalog, seqRnd(roll))
		require.NotNil(t, item)
		assert.True(t, item.Rarity.AtLeast(domain.RarityRare), "got %s (%s)", item.ID, item.Rarity)
		assert.NotEqual(t, domain.ItemTypeMystery, item.Type)
	}
}

func TestPremiumDraw_FallsBackToFullPool(t *testing.T) {
	catalog := []domain.ItemDefinition{
		{ID: "pebble", Rarity: domain.RarityCommon, Type: domain.ItemTypeMaterial},
	}

	item := PremiumDraw(catalog, seqRnd(0.5))
	require.NotNil(t, item)
	assert.Equal(t, "pebble", item.ID)
}
