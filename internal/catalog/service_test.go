package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mossfall/grottobot/internal/domain"
)

const testGuild = "guild-1"

func seedRepo(t *testing.T, repo *FakeRepository, defs ...domain.ItemDefinition) {
	t.Helper()
	for _, def := range defs {
		require.NoError(t, repo.UpsertItem(context.Background(), def))
	}
}

func TestGetItem_Found(t *testing.T) {
	repo := NewFakeRepository()
	seedRepo(t, repo, domain.ItemDefinition{
		ID: "golden_rod", GuildID: testGuild, Name: "Golden Rod",
		Rarity: domain.RarityRare, Type: domain.ItemTypeEquipment,
		Price: 500, MaxQuantity: 1,
	})
	svc := NewService(repo)

	def, err := svc.GetItem(context.Background(), testGuild, "golden_rod")
	require.NoError(t, err)
	assert.Equal(t, "Golden Rod", def.Name)
	assert.Equal(t, domain.RarityRare, def.Rarity)
}

func TestGetItem_NotFound(t *testing.T) {
	svc := NewService(NewFakeRepository())

	_, err := svc.GetItem(context.Background(), testGuild, "missing")
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestGetItem_CachesReads(t *testing.T) {
	repo := NewFakeRepository()
	seedRepo(t, repo, domain.ItemDefinition{
		ID: "pebble", GuildID: testGuild, Name: "Pebble",
		Rarity: domain.RarityCommon, Type: domain.ItemTypeMaterial, MaxQuantity: 99,
	})
	svc := NewServiceWithTTL(repo, time.Minute)

	for i := 0; i < 5; i++ {
		_, err := svc.GetItem(context.Background(), testGuild, "pebble")
		require.NoError(t, err)
	}

	assert.Equal(t, 1, repo.Reads, "repeated reads should come from the cache")
}

func TestGetItem_CorruptRowRejected(t *testing.T) {
	repo := NewFakeRepository()
	seedRepo(t, repo, domain.ItemDefinition{
		ID: "broken", GuildID: testGuild, Rarity: "shiny", MaxQuantity: 5,
	})
	svc := NewService(repo)

	_, err := svc.GetItem(context.Background(), testGuild, "broken")
	assert.ErrorIs(t, err, domain.ErrCorruptRecord)
}

func TestUpsertItem_InvalidatesCache(t *testing.T) {
	repo := NewFakeRepository()
	seedRepo(t, repo, domain.ItemDefinition{
		ID: "pebble", GuildID: testGuild, Name: "Pebble",
		Rarity: domain.RarityCommon, Type: domain.ItemTypeMaterial, MaxQuantity: 99,
	})
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.GetItem(ctx, testGuild, "pebble")
	require.NoError(t, err)

	require.NoError(t, svc.UpsertItem(ctx, domain.ItemDefinition{
		ID: "pebble", GuildID: testGuild, Name: "Shiny Pebble",
		Rarity: domain.RarityUncommon, Type: domain.ItemTypeMaterial, MaxQuantity: 99,
	}))

	def, err := svc.GetItem(ctx, testGuild, "pebble")
	require.NoError(t, err)
	assert.Equal(t, "Shiny Pebble", def.Name)
}

func TestUpsertItem_DefaultsMaxQuantity(t *testing.T) {
	repo := NewFakeRepository()
	svc := NewService(repo)

	require.NoError(t, svc.UpsertItem(context.Background(), domain.ItemDefinition{
		ID: "pebble", GuildID: testGuild, Rarity: domain.RarityCommon,
	}))

	def, err := svc.GetItem(context.Background(), testGuild, "pebble")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultMaxQuantity, def.MaxQuantity)
}

func TestGetItemsByType_Filters(t *testing.T) {
	repo := NewFakeRepository()
	seedRepo(t, repo,
		domain.ItemDefinition{ID: "minnow", GuildID: testGuild, Rarity: domain.RarityCommon, Type: domain.ItemTypeFish, MaxQuantity: 99},
		domain.ItemDefinition{ID: "trout", GuildID: testGuild, Rarity: domain.RarityUncommon, Type: domain.ItemTypeFish, MaxQuantity: 99},
		domain.ItemDefinition{ID: "pebble", GuildID: testGuild, Rarity: domain.RarityCommon, Type: domain.ItemTypeMaterial, MaxQuantity: 99},
	)
	svc := NewService(repo)

	fish, err := svc.GetItemsByType(context.Background(), testGuild, domain.ItemTypeFish)
	require.NoError(t, err)
	assert.Len(t, fish, 2)
	for _, def := range fish {
		assert.Equal(t, domain.ItemTypeFish, def.Type)
	}
}
