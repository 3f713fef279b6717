package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mossfall/grottobot/internal/domain"
)

func trout() domain.ItemDefinition {
	return domain.ItemDefinition{
		ID:     "raw_trout",
		Name:   "Raw Trout",
		Type:   domain.ItemTypeFish,
		Rarity: domain.RarityCommon,
		Price:  75,
	}
}

func TestClaimDaily(t *testing.T) {
	f := newFixture(t, seqRnd())

	result, err := f.svc.ClaimDaily(context.Background(), testUser, testGuild, 0)

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultDailyAmount, result.Amount)
	assert.Equal(t, 1.0, result.Multiplier)
	assert.Equal(t, "500 coins", result.Formatted)

	account := f.account(t, testUser)
	assert.Equal(t, domain.DefaultDailyAmount, account.Balance)
	require.NotNil(t, account.LastDaily)
}

func TestClaimDaily_DoubleClaimRejected(t *testing.T) {
	f := newFixture(t, seqRnd())

	_, err := f.svc.ClaimDaily(context.Background(), testUser, testGuild, 100)
	require.NoError(t, err)

	_, err = f.svc.ClaimDaily(context.Background(), testUser, testGuild, 100)
	require.Error(t, err)

	var cdErr domain.CooldownError
	require.True(t, errors.As(err, &cdErr))
	assert.Equal(t, domain.ActionDaily, cdErr.Action)
	assert.Greater(t, cdErr.Remaining, 23*time.Hour)

	// The rejected claim leaves the balance alone.
	assert.Equal(t, 100, f.account(t, testUser).Balance)
}

func TestClaimDaily_AvailableAgainAfterCooldown(t *testing.T) {
	f := newFixture(t, seqRnd())

	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return start }
	_, err := f.svc.ClaimDaily(context.Background(), testUser, testGuild, 100)
	require.NoError(t, err)

	f.svc.now = func() time.Time { return start.Add(domain.DailyCooldown) }
	_, err = f.svc.ClaimDaily(context.Background(), testUser, testGuild, 100)
	require.NoError(t, err)

	assert.Equal(t, 200, f.account(t, testUser).Balance)
}

func TestWork_MultipliersStack(t *testing.T) {
	f := newFixture(t, seqRnd())
	f.invRepo.SeedEffect(domain.ActiveEffect{
		UserID: testUser, GuildID: testGuild,
		Type: domain.EffectWorkMultiplier, Value: 2.0,
		ExpiresAt: time.Now().Add(time.Hour),
	})
	f.invRepo.SeedEffect(domain.ActiveEffect{
		UserID: testUser, GuildID: testGuild,
		Type: domain.EffectCoinMultiplier, Value: 2.0,
		ExpiresAt: time.Now().Add(time.Hour),
	})

	result, err := f.svc.Work(context.Background(), testUser, testGuild, 100)

	require.NoError(t, err)
	// Work multiplier shapes the payout, coin multiplier inflates what lands.
	assert.Equal(t, 400, result.Amount)
	assert.Equal(t, 2.0, result.Multiplier)

	account := f.account(t, testUser)
	assert.Equal(t, 400, account.Balance)
	assert.Equal(t, 200, account.TotalEarned)
}

func TestCanWork(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	ok, remaining := CanWork(&domain.Account{}, now)
	assert.True(t, ok)
	assert.Zero(t, remaining)

	recent := now.Add(-20 * time.Minute)
	ok, remaining = CanWork(&domain.Account{LastWork: &recent}, now)
	assert.False(t, ok)
	assert.Equal(t, 40*time.Minute, remaining)

	old := now.Add(-2 * time.Hour)
	ok, _ = CanWork(&domain.Account{LastWork: &old}, now)
	assert.True(t, ok)
}

func TestFish_CatchAddedToInventory(t *testing.T) {
	// 0.5 clears the no-catch roll, 0.0 selects the only fish.
	f := newFixture(t, seqRnd(0.5, 0.0))
	f.seedItem(t, trout())

	result, err := f.svc.Fish(context.Background(), testUser, testGuild)

	require.NoError(t, err)
	assert.True(t, result.Caught)
	require.NotNil(t, result.Item)
	assert.Equal(t, "raw_trout", result.Item.ID)
	require.NotNil(t, result.Added)
	assert.Equal(t, 1, result.Added.Added)

	stack, err := f.invRepo.GetStack(context.Background(), testUser, testGuild, "raw_trout", "")
	require.NoError(t, err)
	require.NotNil(t, stack)
	assert.Equal(t, 1, stack.Quantity)

	account := f.account(t, testUser)
	require.NotNil(t, account.LastFish)

	txs := f.repo.Transactions()
	require.Len(t, txs, 1)
	assert.Equal(t, domain.TxFishing, txs[0].Kind)
}

func TestFish_NoCatchStillStampsCooldown(t *testing.T) {
	f := newFixture(t, seqRnd(0.01))
	f.seedItem(t, trout())

	result, err := f.svc.Fish(context.Background(), testUser, testGuild)

	require.NoError(t, err)
	assert.False(t, result.Caught)
	assert.Nil(t, result.Item)

	account := f.account(t, testUser)
	require.NotNil(t, account.LastFish)

	// The failed attempt burned the cooldown.
	_, err = f.svc.Fish(context.Background(), testUser, testGuild)
	var cdErr domain.CooldownError
	require.True(t, errors.As(err, &cdErr))
	assert.Equal(t, domain.ActionFish, cdErr.Action)
}

func TestFish_EquipmentShortensCooldown(t *testing.T) {
	f := newFixture(t, seqRnd(0.5, 0.0, 0.5, 0.0))
	f.seedItem(t, trout())
	f.invRepo.SeedEffect(domain.ActiveEffect{
		UserID: testUser, GuildID: testGuild,
		Type: domain.EffectFishingSpeed, Value: 0.5,
	})

	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return start }
	_, err := f.svc.Fish(context.Background(), testUser, testGuild)
	require.NoError(t, err)

	// 15 minutes in: the halved cooldown has already elapsed.
	f.svc.now = func() time.Time { return start.Add(15 * time.Minute) }
	result, err := f.svc.Fish(context.Background(), testUser, testGuild)
	require.NoError(t, err)
	assert.True(t, result.Caught)
}

func TestFish_EmptyCatalog(t *testing.T) {
	f := newFixture(t, seqRnd(0.5))

	result, err := f.svc.Fish(context.Background(), testUser, testGuild)

	require.NoError(t, err)
	assert.False(t, result.Caught)
}

func TestFish_DeliveryFailureRollsBackAttempt(t *testing.T) {
	f := newFixture(t, seqRnd(0.5, 0.0, 0.5, 0.0))
	f.seedItem(t, trout())
	f.invRepo.FailNextUpsert(errors.New("connection reset"))

	_, err := f.svc.Fish(context.Background(), testUser, testGuild)
	require.Error(t, err)

	// The cooldown stamp and the audit row rolled back with the failed add.
	account := f.account(t, testUser)
	assert.Nil(t, account.LastFish)
	assert.Empty(t, f.repo.Transactions())

	// The next cast is not blocked by a cooldown from the failed attempt.
	result, err := f.svc.Fish(context.Background(), testUser, testGuild)
	require.NoError(t, err)
	assert.True(t, result.Caught)
}

func TestPurchase(t *testing.T) {
	f := newFixture(t, seqRnd())
	def := domain.ItemDefinition{
		ID: "iron_ore", Name: "Iron Ore",
		Type: domain.ItemTypeMaterial, Rarity: domain.RarityCommon,
		Price: 100, MaxQuantity: 99,
	}
	f.seedItem(t, def)
	f.repo.SeedAccount(domain.Account{UserID: testUser, GuildID: testGuild, Balance: 250})

	result, err := f.svc.Purchase(context.Background(), testUser, testGuild, "iron_ore", "", 2)

	require.NoError(t, err)
	assert.Equal(t, 2, result.Quantity)
	assert.Equal(t, 200, result.Cost)
	assert.Equal(t, 50, result.Balance)

	account := f.account(t, testUser)
	assert.Equal(t, 50, account.Balance)
	assert.Equal(t, 200, account.TotalSpent)

	stack, err := f.invRepo.GetStack(context.Background(), testUser, testGuild, "iron_ore", "")
	require.NoError(t, err)
	assert.Equal(t, 2, stack.Quantity)
}

func TestPurchase_InsufficientFunds(t *testing.T) {
	f := newFixture(t, seqRnd())
	def := domain.ItemDefinition{
		ID: "iron_ore", Name: "Iron Ore",
		Type: domain.ItemTypeMaterial, Rarity: domain.RarityCommon,
		Price: 100, MaxQuantity: 99,
	}
	f.seedItem(t, def)
	f.repo.SeedAccount(domain.Account{UserID: testUser, GuildID: testGuild, Balance: 150})

	_, err := f.svc.Purchase(context.Background(), testUser, testGuild, "iron_ore", "", 2)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	stack, err := f.invRepo.GetStack(context.Background(), testUser, testGuild, "iron_ore", "")
	require.NoError(t, err)
	assert.Nil(t, stack)
}

func TestPurchase_CapTruncatesCharge(t *testing.T) {
	f := newFixture(t, seqRnd())
	def := domain.ItemDefinition{
		ID: "rare_lure", Name: "Rare Lure",
		Type: domain.ItemTypeMaterial, Rarity: domain.RarityRare,
		Price: 100, MaxQuantity: 1,
	}
	f.seedItem(t, def)
	f.repo.SeedAccount(domain.Account{UserID: testUser, GuildID: testGuild, Balance: 1_000})

	result, err := f.svc.Purchase(context.Background(), testUser, testGuild, "rare_lure", "", 3)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Quantity)
	assert.Equal(t, 100, result.Cost)
	assert.True(t, result.Capped)
	assert.Equal(t, 900, f.account(t, testUser).Balance)

	// The full charge and the refund for the rejected copies both stay on
	// the books.
	txs := f.repo.Transactions()
	require.Len(t, txs, 2)
	assert.Equal(t, domain.TxShopPurchase, txs[0].Kind)
	assert.Equal(t, -300, txs[0].Amount)
	assert.Equal(t, domain.TxShopRefund, txs[1].Kind)
	assert.Equal(t, 200, txs[1].Amount)
}

func TestPurchase_DeliveryFailureRefunds(t *testing.T) {
	f := newFixture(t, seqRnd())
	def := domain.ItemDefinition{
		ID: "iron_ore", Name: "Iron Ore",
		Type: domain.ItemTypeMaterial, Rarity: domain.RarityCommon,
		Price: 100, MaxQuantity: 99,
	}
	f.seedItem(t, def)
	f.repo.SeedAccount(domain.Account{UserID: testUser, GuildID: testGuild, Balance: 250})
	f.invRepo.FailNextUpsert(errors.New("connection reset"))

	_, err := f.svc.Purchase(context.Background(), testUser, testGuild, "iron_ore", "", 2)
	require.Error(t, err)

	account := f.account(t, testUser)
	assert.Equal(t, 250, account.Balance)
	assert.Equal(t, 0, account.TotalSpent)

	txs := f.repo.Transactions()
	require.Len(t, txs, 2)
	assert.Equal(t, domain.TxShopPurchase, txs[0].Kind)
	assert.Equal(t, -200, txs[0].Amount)
	assert.Equal(t, domain.TxShopRefund, txs[1].Kind)
	assert.Equal(t, 200, txs[1].Amount)

	stack, err := f.invRepo.GetStack(context.Background(), testUser, testGuild, "iron_ore", "")
	require.NoError(t, err)
	assert.Nil(t, stack)
}

// Selling and re-adding the same quantity restores the original stack.
func TestSellThenAddRoundTrip(t *testing.T) {
	f := newFixture(t, seqRnd())
	def := domain.ItemDefinition{
		ID: "iron_ore", Name: "Iron Ore",
		Type: domain.ItemTypeMaterial, Rarity: domain.RarityCommon,
		Price: 100, MaxQuantity: 99,
	}
	f.seedItem(t, def)
	f.invRepo.SeedStack(domain.InventoryEntry{
		UserID: testUser, GuildID: testGuild, ItemID: "iron_ore", Quantity: 7,
	})

	_, err := f.inv.SellItem(context.Background(), testUser, testGuild, "iron_ore", "", 4)
	require.NoError(t, err)

	_, err = f.inv.AddItem(context.Background(), testUser, testGuild, "iron_ore", "", 4)
	require.NoError(t, err)

	stack, err := f.invRepo.GetStack(context.Background(), testUser, testGuild, "iron_ore", "")
	require.NoError(t, err)
	assert.Equal(t, 7, stack.Quantity)
}
