package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mossfall/grottobot/internal/domain"
	"github.com/mossfall/grottobot/internal/repository"
)

// FakeRepository is an in-memory repository.Ledger for tests. Transactions
// write through to the shared state; Rollback restores the snapshot taken
// at BeginTx, so aborted operations leave no trace.
type FakeRepository struct {
	mu           sync.Mutex
	accounts     map[string]domain.Account
	transactions []domain.Transaction
	claims       map[string]bool
}

// NewFakeRepository creates an empty fake ledger repository
func NewFakeRepository() *FakeRepository {
	return &FakeRepository{
		accounts: make(map[string]domain.Account),
		claims:   make(map[string]bool),
	}
}

func accountKey(userID, guildID string) string {
	return userID + "|" + guildID
}

func claimKey(userID, guildID string, threshold int) string {
	return fmt.Sprintf("%s|%s|%d", userID, guildID, threshold)
}

// SeedAccount inserts an account directly, bypassing service logic
func (f *FakeRepository) SeedAccount(account domain.Account) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[accountKey(account.UserID, account.GuildID)] = account
}

// Transactions returns a copy of every appended record, oldest first
func (f *FakeRepository) Transactions() []domain.Transaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Transaction, len(f.transactions))
	copy(out, f.transactions)
	return out
}

func (f *FakeRepository) GetOrCreateAccount(ctx context.Context, userID, guildID string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.getOrCreateLocked(userID, guildID), nil
}

func (f *FakeRepository) getOrCreateLocked(userID, guildID string) *domain.Account {
	key := accountKey(userID, guildID)
	if account, ok := f.accounts[key]; ok {
		a := account
		return &a
	}
	account := domain.Account{UserID: userID, GuildID: guildID, CreatedAt: time.Now()}
	f.accounts[key] = account
	a := account
	return &a
}

func (f *FakeRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[accountKey(account.UserID, account.GuildID)] = account
	return nil
}

func (f *FakeRepository) AppendTransaction(ctx context.Context, tx domain.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transactions = append(f.transactions, tx)
	return nil
}

func (f *FakeRepository) GetTransactions(ctx context.Context, userID, guildID string, limit int) ([]domain.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Transaction
	for i := len(f.transactions) - 1; i >= 0 && len(out) < limit; i-- {
		tx := f.transactions[i]
		if tx.UserID == userID && tx.GuildID == guildID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (f *FakeRepository) GetLeaderboard(ctx context.Context, guildID string, limit int) ([]domain.LeaderboardEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var entries []domain.LeaderboardEntry
	for _, account := range f.accounts {
		if account.GuildID != guildID {
			continue
		}
		entries = append(entries, domain.LeaderboardEntry{
			UserID:   account.UserID,
			Balance:  account.Balance,
			Bank:     account.Bank,
			NetWorth: account.NetWorth(),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].NetWorth > entries[j].NetWorth })
	if len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

func (f *FakeRepository) HasMilestoneClaim(ctx context.Context, userID, guildID string, threshold int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.claims[claimKey(userID, guildID, threshold)], nil
}

func (f *FakeRepository) RecordMilestoneClaim(ctx context.Context, userID, guildID string, threshold int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.claims[claimKey(userID, guildID, threshold)] = true
	return nil
}

func (f *FakeRepository) BeginTx(ctx context.Context) (repository.LedgerTx, error) {
	return &fakeLedgerTx{repo: f, snap: f.snapshot()}, nil
}

// ledgerSnapshot captures the repository state at BeginTx for rollback.
type ledgerSnapshot struct {
	accounts     map[string]domain.Account
	transactions []domain.Transaction
	claims       map[string]bool
}

func (f *FakeRepository) snapshot() *ledgerSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	snap := &ledgerSnapshot{
		accounts:     make(map[string]domain.Account, len(f.accounts)),
		transactions: make([]domain.Transaction, len(f.transactions)),
		claims:       make(map[string]bool, len(f.claims)),
	}
	for k, v := range f.accounts {
		snap.accounts[k] = v
	}
	copy(snap.transactions, f.transactions)
	for k, v := range f.claims {
		snap.claims[k] = v
	}
	return snap
}

func (f *FakeRepository) restore(snap *ledgerSnapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts = snap.accounts
	f.transactions = snap.transactions
	f.claims = snap.claims
}

type fakeLedgerTx struct {
	repo *FakeRepository
	snap *ledgerSnapshot
	done bool
}

func (t *fakeLedgerTx) Commit(ctx context.Context) error {
	t.done = true
	return nil
}

func (t *fakeLedgerTx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.repo.restore(t.snap)
	return nil
}

func (t *fakeLedgerTx) GetOrCreateAccount(ctx context.Context, userID, guildID string) (*domain.Account, error) {
	return t.repo.GetOrCreateAccount(ctx, userID, guildID)
}

func (t *fakeLedgerTx) UpdateAccount(ctx context.Context, account domain.Account) error {
	return t.repo.UpdateAccount(ctx, account)
}

func (t *fakeLedgerTx) AppendTransaction(ctx context.Context, tx domain.Transaction) error {
	return t.repo.AppendTransaction(ctx, tx)
}

func (t *fakeLedgerTx) HasMilestoneClaim(ctx context.Context, userID, guildID string, threshold int) (bool, error) {
	return t.repo.HasMilestoneClaim(ctx, userID, guildID, threshold)
}

func (t *fakeLedgerTx) RecordMilestoneClaim(ctx context.Context, userID, guildID string, threshold int) error {
	return t.repo.RecordMilestoneClaim(ctx, userID, guildID, threshold)
}
