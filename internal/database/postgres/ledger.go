package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mossfall/grottobot/internal/domain"
	"github.com/mossfall/grottobot/internal/repository"
)

// LedgerRepository implements the ledger repository for PostgreSQL
type LedgerRepository struct {
	db *pgxpool.Pool
}

// NewLedgerRepository creates a new LedgerRepository
func NewLedgerRepository(db *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// LedgerTx implements repository.LedgerTx
type LedgerTx struct {
	tx pgx.Tx
}

// BeginTx starts a new transaction
func (r *LedgerRepository) BeginTx(ctx context.Context) (repository.LedgerTx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &LedgerTx{tx: tx}, nil
}

// Commit commits the transaction
func (t *LedgerTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback rolls back the transaction
func (t *LedgerTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

const accountColumns = `user_id, guild_id, balance, bank, last_daily, last_work, last_fish, total_earned, total_spent, created_at`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	err := row.Scan(&a.UserID, &a.GuildID, &a.Balance, &a.Bank,
		&a.LastDaily, &a.LastWork, &a.LastFish,
		&a.TotalEarned, &a.TotalSpent, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func getOrCreateAccount(ctx context.Context, q dbtx, userID, guildID string) (*domain.Account, error) {
	// The no-op update makes ON CONFLICT return the existing row.
	row := q.QueryRow(ctx, `
		INSERT INTO accounts (user_id, guild_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, guild_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING `+accountColumns,
		userID, guildID)
	account, err := scanAccount(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create account: %w", err)
	}
	return account, nil
}

func updateAccount(ctx context.Context, q dbtx, account domain.Account) error {
	_, err := q.Exec(ctx, `
		UPDATE accounts
		SET balance = $3, bank = $4, last_daily = $5, last_work = $6, last_fish = $7,
		    total_earned = $8, total_spent = $9
		WHERE user_id = $1 AND guild_id = $2`,
		account.UserID, account.GuildID, account.Balance, account.Bank,
		account.LastDaily, account.LastWork, account.LastFish,
		account.TotalEarned, account.TotalSpent)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	return nil
}

func appendTransaction(ctx context.Context, q dbtx, txn domain.Transaction) error {
	_, err := q.Exec(ctx, `
		INSERT INTO transactions (transaction_id, user_id, guild_id, kind, amount, description, counterparty, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		txn.ID, txn.UserID, txn.GuildID, string(txn.Kind), txn.Amount,
		txn.Description, txn.Counterparty, txn.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append transaction: %w", err)
	}
	return nil
}

func hasMilestoneClaim(ctx context.Context, q dbtx, userID, guildID string, threshold int) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM milestone_claims
			WHERE user_id = $1 AND guild_id = $2 AND threshold = $3
		)`, userID, guildID, threshold).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check milestone claim: %w", err)
	}
	return exists, nil
}

// GetOrCreateAccount returns the account, inserting a zeroed row when none exists
func (r *LedgerRepository) GetOrCreateAccount(ctx context.Context, userID, guildID string) (*domain.Account, error) {
	return getOrCreateAccount(ctx, r.db, userID, guildID)
}

// UpdateAccount persists balance, bank, cooldown stamps and lifetime totals
func (r *LedgerRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	return updateAccount(ctx, r.db, account)
}

// AppendTransaction records one row in the immutable transaction log
func (r *LedgerRepository) AppendTransaction(ctx context.Context, txn domain.Transaction) error {
	return appendTransaction(ctx, r.db, txn)
}

// GetTransactions returns the newest transactions first, up to limit
func (r *LedgerRepository) GetTransactions(ctx context.Context, userID, guildID string, limit int) ([]domain.Transaction, error) {
	rows, err := r.db.Query(ctx, `
		SELECT transaction_id, user_id, guild_id, kind, amount, description, counterparty, created_at
		FROM transactions
		WHERE user_id = $1 AND guild_id = $2
		ORDER BY created_at DESC
		LIMIT $3`, userID, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		var kind string
		if err := rows.Scan(&t.ID, &t.UserID, &t.GuildID, &kind, &t.Amount,
			&t.Description, &t.Counterparty, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		t.Kind = domain.TransactionKind(kind)
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

// GetLeaderboard returns accounts ranked by net worth, richest first
func (r *LedgerRepository) GetLeaderboard(ctx context.Context, guildID string, limit int) ([]domain.LeaderboardEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT user_id, balance, bank
		FROM accounts
		WHERE guild_id = $1
		ORDER BY balance + bank DESC, user_id ASC
		LIMIT $2`, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []domain.LeaderboardEntry
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Balance, &e.Bank); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		e.NetWorth = e.Balance + e.Bank
		e.Rank = len(entries) + 1
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// HasMilestoneClaim reports whether the threshold was already claimed
func (r *LedgerRepository) HasMilestoneClaim(ctx context.Context, userID, guildID string, threshold int) (bool, error) {
	return hasMilestoneClaim(ctx, r.db, userID, guildID, threshold)
}

// GetOrCreateAccount returns the account within the transaction
func (t *LedgerTx) GetOrCreateAccount(ctx context.Context, userID, guildID string) (*domain.Account, error) {
	return getOrCreateAccount(ctx, t.tx, userID, guildID)
}

// UpdateAccount persists the account within the transaction
func (t *LedgerTx) UpdateAccount(ctx context.Context, account domain.Account) error {
	return updateAccount(ctx, t.tx, account)
}

// AppendTransaction records a transaction row within the transaction
func (t *LedgerTx) AppendTransaction(ctx context.Context, txn domain.Transaction) error {
	return appendTransaction(ctx, t.tx, txn)
}

// HasMilestoneClaim reports whether the threshold was already claimed
func (t *LedgerTx) HasMilestoneClaim(ctx context.Context, userID, guildID string, threshold int) (bool, error) {
	return hasMilestoneClaim(ctx, t.tx, userID, guildID, threshold)
}

// RecordMilestoneClaim marks the threshold claimed. Racing claims resolve to
// one row; the loser's insert is a no-op.
func (t *LedgerTx) RecordMilestoneClaim(ctx context.Context, userID, guildID string, threshold int) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO milestone_claims (user_id, guild_id, threshold)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, guild_id, threshold) DO NOTHING`,
		userID, guildID, threshold)
	if err != nil {
		return fmt.Errorf("failed to record milestone claim: %w", err)
	}
	return nil
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
