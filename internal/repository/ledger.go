package repository

import (
	"context"

	"github.com/mossfall/grottobot/internal/domain"
)

// Ledger defines the interface for account and transaction persistence
type Ledger interface {
	// GetOrCreateAccount returns the account, inserting a zeroed row when
	// none exists. Accounts are never deleted.
	GetOrCreateAccount(ctx context.Context, userID, guildID string) (*domain.Account, error)
	UpdateAccount(ctx context.Context, account domain.Account) error
	AppendTransaction(ctx context.Context, tx domain.Transaction) error
	GetTransactions(ctx context.Context, userID, guildID string, limit int) ([]domain.Transaction, error)
	GetLeaderboard(ctx context.Context, guildID string, limit int) ([]domain.LeaderboardEntry, error)
	HasMilestoneClaim(ctx context.Context, userID, guildID string, threshold int) (bool, error)

	BeginTx(ctx context.Context) (LedgerTx, error)
}

// LedgerTx defines the interface for atomic multi-step ledger mutations.
// Transfers and milestone claim-and-credit run entirely inside one of these
// so that either all sub-writes land or none do.
type LedgerTx interface {
	Tx
	GetOrCreateAccount(ctx context.Context, userID, guildID string) (*domain.Account, error)
	UpdateAccount(ctx context.Context, account domain.Account) error
	AppendTransaction(ctx context.Context, tx domain.Transaction) error
	HasMilestoneClaim(ctx context.Context, userID, guildID string, threshold int) (bool, error)
	RecordMilestoneClaim(ctx context.Context, userID, guildID string, threshold int) error
}
