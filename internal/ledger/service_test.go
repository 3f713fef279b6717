package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mossfall/grottobot/internal/catalog"
	"github.com/mossfall/grottobot/internal/domain"
	"github.com/mossfall/grottobot/internal/event"
	"github.com/mossfall/grottobot/internal/inventory"
)

const (
	testUser  = "user-1"
	testOther = "user-2"
	testGuild = "guild-1"
)

// seqRnd returns a deterministic rnd replaying the given values, then 0.5.
func seqRnd(vals ...float64) func() float64 {
	i := 0
	return func() float64 {
		if i < len(vals) {
			v := vals[i]
			i++
			return v
		}
		return 0.5
	}
}

// fixture wires the ledger over a real inventory service so multiplier
// lookups and fishing item placement run through the same code paths as
// production.
type fixture struct {
	svc     *service
	repo    *FakeRepository
	invRepo *inventory.FakeRepository
	catRepo *catalog.FakeRepository
	inv     inventory.Service
	bus     *event.MemoryBus
}

func newFixture(t *testing.T, rnd func() float64) *fixture {
	t.Helper()

	repo := NewFakeRepository()
	invRepo := inventory.NewFakeRepository()
	catRepo := catalog.NewFakeRepository()
	bus := event.NewMemoryBus()

	catalogSvc := catalog.NewService(catRepo)
	invSvc := inventory.NewService(invRepo, catalogSvc, bus, rnd)
	svc := NewService(repo, catalogSvc, invSvc, bus, rnd).(*service)
	invSvc.SetCrediter(svc)

	return &fixture{svc: svc, repo: repo, invRepo: invRepo, catRepo: catRepo, inv: invSvc, bus: bus}
}

func (f *fixture) seedItem(t *testing.T, def domain.ItemDefinition) {
	t.Helper()
	def.GuildID = testGuild
	require.NoError(t, f.catRepo.UpsertItem(context.Background(), def))
}

func (f *fixture) account(t *testing.T, userID string) domain.Account {
	t.Helper()
	account, err := f.repo.GetOrCreateAccount(context.Background(), userID, testGuild)
	require.NoError(t, err)
	return *account
}

func TestCredit_AppliesCoinMultiplierButNotToLifetimeEarnings(t *testing.T) {
	f := newFixture(t, seqRnd())
	f.invRepo.SeedEffect(domain.ActiveEffect{
		UserID: testUser, GuildID: testGuild,
		Type: domain.EffectCoinMultiplier, Value: 2.0,
		ExpiresAt: time.Now().Add(time.Hour),
	})

	err := f.svc.Credit(context.Background(), testUser, testGuild, 100, domain.TxScratch, "win")
	require.NoError(t, err)

	account := f.account(t, testUser)
	assert.Equal(t, 200, account.Balance)
	assert.Equal(t, 100, account.TotalEarned)

	txs := f.repo.Transactions()
	require.Len(t, txs, 1)
	assert.Equal(t, domain.TxScratch, txs[0].Kind)
	assert.Equal(t, 200, txs[0].Amount)
}

func TestCredit_InvalidAmount(t *testing.T) {
	f := newFixture(t, seqRnd())

	err := f.svc.Credit(context.Background(), testUser, testGuild, 0, domain.TxScratch, "")
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	err = f.svc.Credit(context.Background(), testUser, testGuild, -5, domain.TxScratch, "")
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestTransfer_Atomic(t *testing.T) {
	f := newFixture(t, seqRnd())
	f.repo.SeedAccount(domain.Account{UserID: testUser, GuildID: testGuild, Balance: 500})

	err := f.svc.Transfer(context.Background(), testUser, testOther, testGuild, 200)
	require.NoError(t, err)

	assert.Equal(t, 300, f.account(t, testUser).Balance)
	assert.Equal(t, 200, f.account(t, testOther).Balance)

	txs := f.repo.Transactions()
	require.Len(t, txs, 2)
	assert.Equal(t, domain.TxTransferOut, txs[0].Kind)
	assert.Equal(t, -200, txs[0].Amount)
	assert.Equal(t, testOther, txs[0].Counterparty)
	assert.Equal(t, domain.TxTransferIn, txs[1].Kind)
	assert.Equal(t, 200, txs[1].Amount)
	assert.Equal(t, testUser, txs[1].Counterparty)
}

func TestTransfer_InsufficientFundsLeavesBothUntouched(t *testing.T) {
	f := newFixture(t, seqRnd())
	f.repo.SeedAccount(domain.Account{UserID: testUser, GuildID: testGuild, Balance: 100})

	err := f.svc.Transfer(context.Background(), testUser, testOther, testGuild, 1000)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	assert.Equal(t, 100, f.account(t, testUser).Balance)
	assert.Equal(t, 0, f.account(t, testOther).Balance)
	assert.Empty(t, f.repo.Transactions())
}

func TestTransfer_SelfRejected(t *testing.T) {
	f := newFixture(t, seqRnd())
	f.repo.SeedAccount(domain.Account{UserID: testUser, GuildID: testGuild, Balance: 100})

	err := f.svc.Transfer(context.Background(), testUser, testUser, testGuild, 50)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestDepositWithdraw(t *testing.T) {
	f := newFixture(t, seqRnd())
	f.repo.SeedAccount(domain.Account{UserID: testUser, GuildID: testGuild, Balance: 100})

	account, err := f.svc.Deposit(context.Background(), testUser, testGuild, 40)
	require.NoError(t, err)
	assert.Equal(t, 60, account.Balance)
	assert.Equal(t, 40, account.Bank)

	account, err = f.svc.Withdraw(context.Background(), testUser, testGuild, 30)
	require.NoError(t, err)
	assert.Equal(t, 90, account.Balance)
	assert.Equal(t, 10, account.Bank)

	_, err = f.svc.Withdraw(context.Background(), testUser, testGuild, 50)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
}

func TestMilestones_IdempotentAcrossOscillation(t *testing.T) {
	f := newFixture(t, seqRnd())

	var reached []event.MilestoneReachedPayloadV1
	f.bus.Subscribe(event.MilestoneReached, func(ctx context.Context, e event.Event) error {
		payload, err := event.DecodePayload[event.MilestoneReachedPayloadV1](e.Payload)
		if err != nil {
			return err
		}
		reached = append(reached, payload)
		return nil
	})

	require.NoError(t, f.svc.Credit(context.Background(), testUser, testGuild, 1_200, domain.TxScratch, ""))
	require.Len(t, reached, 1)
	assert.Equal(t, int64(1_000), reached[0].Threshold)
	assert.Equal(t, int64(100), reached[0].XPBonus)

	// Drop below the threshold and climb back over it: no second grant.
	_, err := f.svc.AdminAdjust(context.Background(), testUser, testGuild, AdminSet, 0, "drain")
	require.NoError(t, err)
	require.NoError(t, f.svc.Credit(context.Background(), testUser, testGuild, 1_200, domain.TxScratch, ""))
	assert.Len(t, reached, 1)

	// A bigger credit can cross several thresholds at once.
	require.NoError(t, f.svc.Credit(context.Background(), testUser, testGuild, 60_000, domain.TxScratch, ""))
	require.Len(t, reached, 3)
	assert.Equal(t, int64(10_000), reached[1].Threshold)
	assert.Equal(t, int64(50_000), reached[2].Threshold)
}

func TestMilestones_BankCountsTowardNetWorth(t *testing.T) {
	f := newFixture(t, seqRnd())
	f.repo.SeedAccount(domain.Account{UserID: testUser, GuildID: testGuild, Balance: 600, Bank: 350})

	var reached int
	f.bus.Subscribe(event.MilestoneReached, func(ctx context.Context, e event.Event) error {
		reached++
		return nil
	})

	require.NoError(t, f.svc.Credit(context.Background(), testUser, testGuild, 50, domain.TxScratch, ""))
	assert.Equal(t, 1, reached)
}

func TestAdminAdjust(t *testing.T) {
	f := newFixture(t, seqRnd())
	f.repo.SeedAccount(domain.Account{UserID: testUser, GuildID: testGuild, Balance: 100})

	account, err := f.svc.AdminAdjust(context.Background(), testUser, testGuild, AdminAdd, 50, "event prize")
	require.NoError(t, err)
	assert.Equal(t, 150, account.Balance)

	// Removing more than the balance clamps at zero instead of going negative.
	account, err = f.svc.AdminAdjust(context.Background(), testUser, testGuild, AdminRemove, 500, "penalty")
	require.NoError(t, err)
	assert.Equal(t, 0, account.Balance)

	account, err = f.svc.AdminAdjust(context.Background(), testUser, testGuild, AdminSet, 777, "reset")
	require.NoError(t, err)
	assert.Equal(t, 777, account.Balance)

	txs := f.repo.Transactions()
	require.Len(t, txs, 3)
	assert.Equal(t, domain.TxAdminAdd, txs[0].Kind)
	assert.Equal(t, domain.TxAdminRemove, txs[1].Kind)
	assert.Equal(t, -100, txs[1].Amount)
	assert.Equal(t, domain.TxAdminSet, txs[2].Kind)
}

func TestLeaderboardAndHistory(t *testing.T) {
	f := newFixture(t, seqRnd())
	f.repo.SeedAccount(domain.Account{UserID: testUser, GuildID: testGuild, Balance: 100, Bank: 50})
	f.repo.SeedAccount(domain.Account{UserID: testOther, GuildID: testGuild, Balance: 500})
	f.repo.SeedAccount(domain.Account{UserID: "user-3", GuildID: "other-guild", Balance: 9_999})

	entries, err := f.svc.Leaderboard(context.Background(), testGuild, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, testOther, entries[0].UserID)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, 150, entries[1].NetWorth)

	require.NoError(t, f.svc.Credit(context.Background(), testUser, testGuild, 10, domain.TxScratch, "first"))
	require.NoError(t, f.svc.Credit(context.Background(), testUser, testGuild, 20, domain.TxScratch, "second"))

	history, err := f.svc.History(context.Background(), testUser, testGuild, 1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "second", history[0].Description)
}

// The walkthrough from the account lifecycle: earn, failed withdraw, deposit,
// failed transfer.
func TestAccountLifecycleScenario(t *testing.T) {
	f := newFixture(t, seqRnd())

	require.NoError(t, f.svc.Credit(context.Background(), testUser, testGuild, 100, domain.TxScratch, ""))
	account := f.account(t, testUser)
	assert.Equal(t, 100, account.Balance)
	assert.Equal(t, 100, account.TotalEarned)

	_, err := f.svc.Withdraw(context.Background(), testUser, testGuild, 50)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	account2, err := f.svc.Deposit(context.Background(), testUser, testGuild, 40)
	require.NoError(t, err)
	assert.Equal(t, 60, account2.Balance)
	assert.Equal(t, 40, account2.Bank)

	err = f.svc.Transfer(context.Background(), testUser, testOther, testGuild, 1000)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.Equal(t, 60, f.account(t, testUser).Balance)
	assert.Equal(t, 0, f.account(t, testOther).Balance)
}

func TestGetAccount_IncludesEffects(t *testing.T) {
	f := newFixture(t, seqRnd())
	f.invRepo.SeedEffect(domain.ActiveEffect{
		UserID: testUser, GuildID: testGuild,
		Type: domain.EffectWorkMultiplier, Value: 1.5,
		ExpiresAt: time.Now().Add(time.Hour),
	})

	snapshot, err := f.svc.GetAccount(context.Background(), testUser, testGuild)
	require.NoError(t, err)
	assert.Equal(t, testUser, snapshot.Account.UserID)
	require.Len(t, snapshot.Effects, 1)
	assert.Equal(t, domain.EffectWorkMultiplier, snapshot.Effects[0].Type)
}
