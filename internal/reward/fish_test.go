package reward

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mossfall/grottobot/internal/domain"
)

func fishCatalog() []domain.ItemDefinition {
	return []domain.ItemDefinition{
		{ID: "minnow", Rarity: domain.RarityCommon, Type: domain.ItemTypeFish},
		{ID: "trout", Rarity: domain.RarityUncommon, Type: domain.ItemTypeFish},
		{ID: "marlin", Rarity: domain.RarityRare, Type: domain.ItemTypeFish},
		{ID: "leviathan", Rarity: domain.RarityMythic, Type: domain.ItemTypeFish},
		{ID: "old_boot", Rarity: domain.RarityCommon, Type: domain.ItemTypeMaterial},
	}
}

func TestSelectCatch_IgnoresNonFish(t *testing.T) {
	for roll := 0.0; roll < 1.0; roll += 0.01 {
		caught := SelectCatch(fishCatalog(), 0, 1, seqRnd(roll))
		require.NotNil(t, caught)
		assert.Equal(t, domain.ItemTypeFish, caught.Type)
	}
}

func TestSelectCatch_NoFishDefined(t *testing.T) {
	catalog := []domain.ItemDefinition{
		{ID: "old_boot", Rarity: domain.RarityCommon, Type: domain.ItemTypeMaterial},
	}
	assert.Nil(t, SelectCatch(catalog, 0, 1, seqRnd(0.5)))
}

func TestSelectCatch_NoBaitLeavesRarityWeights(t *testing.T) {
	// Without bait the pool is 30+25+20+5 = 80; roll 0 hits the common fish.
	caught := SelectCatch(fishCatalog(), 0.5, 1.0, seqRnd(0))
	require.NotNil(t, caught)
	assert.Equal(t, "minnow", caught.ID)
}

func TestSelectCatch_BaitBoostsRareTiersOnly(t *testing.T) {
	// Bait chance 1.0 guarantees the boost roll succeeds for rare-or-better
	// entries. With boost 10x: minnow 30, trout 25, marlin 200, leviathan 50.
	// A roll landing beyond the first two cumulative weights must be a
	// boosted tier.
	caught := SelectCatch(fishCatalog(), 1.0, 10.0, seqRnd(0.0, 0.0, 0.9))
	require.NotNil(t, caught)
	assert.True(t, caught.Rarity.AtLeast(domain.RarityRare), "got %s", caught.ID)
}

func TestSelectCatch_BaitRollFailureKeepsWeight(t *testing.T) {
	// Bait chance 0 means boost rolls always fail; distribution matches the
	// unbaited pool.
	caught := SelectCatch(fishCatalog(), 0.0, 10.0, seqRnd(0.99, 0.99, 0.0))
	require.NotNil(t, caught)
	assert.Equal(t, "minnow", caught.ID)
}
