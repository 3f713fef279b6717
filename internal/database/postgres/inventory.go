package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mossfall/grottobot/internal/domain"
	"github.com/mossfall/grottobot/internal/repository"
)

// InventoryRepository implements the inventory repository for PostgreSQL
type InventoryRepository struct {
	db *pgxpool.Pool
}

// NewInventoryRepository creates a new InventoryRepository
func NewInventoryRepository(db *pgxpool.Pool) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// InventoryTx implements repository.InventoryTx
type InventoryTx struct {
	tx pgx.Tx
}

// BeginTx starts a new transaction
func (r *InventoryRepository) BeginTx(ctx context.Context) (repository.InventoryTx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &InventoryTx{tx: tx}, nil
}

// Commit commits the transaction
func (t *InventoryTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback rolls back the transaction
func (t *InventoryTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

func getStack(ctx context.Context, q dbtx, userID, guildID, itemID, variant string) (*domain.InventoryEntry, error) {
	row := q.QueryRow(ctx, `
		SELECT user_id, guild_id, item_id, variant, quantity, acquired_at, expires_at
		FROM inventory_stacks
		WHERE user_id = $1 AND guild_id = $2 AND item_id = $3 AND variant = $4`,
		userID, guildID, itemID, variant)
	var e domain.InventoryEntry
	err := row.Scan(&e.UserID, &e.GuildID, &e.ItemID, &e.Variant,
		&e.Quantity, &e.AcquiredAt, &e.ExpiresAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get inventory stack: %w", err)
	}
	return &e, nil
}

func upsertStack(ctx context.Context, q dbtx, entry domain.InventoryEntry) error {
	_, err := q.Exec(ctx, `
		INSERT INTO inventory_stacks (user_id, guild_id, item_id, variant, quantity, acquired_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, guild_id, item_id, variant)
		DO UPDATE SET quantity = EXCLUDED.quantity, expires_at = EXCLUDED.expires_at`,
		entry.UserID, entry.GuildID, entry.ItemID, entry.Variant,
		entry.Quantity, entry.AcquiredAt, entry.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to upsert inventory stack: %w", err)
	}
	return nil
}

func deleteStack(ctx context.Context, q dbtx, userID, guildID, itemID, variant string) error {
	_, err := q.Exec(ctx, `
		DELETE FROM inventory_stacks
		WHERE user_id = $1 AND guild_id = $2 AND item_id = $3 AND variant = $4`,
		userID, guildID, itemID, variant)
	if err != nil {
		return fmt.Errorf("failed to delete inventory stack: %w", err)
	}
	return nil
}

// nullableExpiry maps the zero time onto NULL so that permanent effects carry
// no timestamp in the database.
func nullableExpiry(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func scanEffect(row pgx.Row) (*domain.ActiveEffect, error) {
	var e domain.ActiveEffect
	var effectType string
	var expiresAt *time.Time
	err := row.Scan(&e.UserID, &e.GuildID, &effectType, &e.Value, &expiresAt)
	if err != nil {
		return nil, err
	}
	e.Type = domain.EffectType(effectType)
	if expiresAt != nil {
		e.ExpiresAt = *expiresAt
	}
	return &e, nil
}

func getActiveEffect(ctx context.Context, q dbtx, userID, guildID string, effectType domain.EffectType) (*domain.ActiveEffect, error) {
	row := q.QueryRow(ctx, `
		SELECT user_id, guild_id, effect_type, effect_value, expires_at
		FROM active_effects
		WHERE user_id = $1 AND guild_id = $2 AND effect_type = $3`,
		userID, guildID, string(effectType))
	effect, err := scanEffect(row)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active effect: %w", err)
	}
	return effect, nil
}

func putActiveEffect(ctx context.Context, q dbtx, effect domain.ActiveEffect) error {
	_, err := q.Exec(ctx, `
		INSERT INTO active_effects (user_id, guild_id, effect_type, effect_value, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, guild_id, effect_type)
		DO UPDATE SET effect_value = EXCLUDED.effect_value, expires_at = EXCLUDED.expires_at`,
		effect.UserID, effect.GuildID, string(effect.Type), effect.Value,
		nullableExpiry(effect.ExpiresAt))
	if err != nil {
		return fmt.Errorf("failed to put active effect: %w", err)
	}
	return nil
}

func deleteActiveEffect(ctx context.Context, q dbtx, userID, guildID string, effectType domain.EffectType) error {
	_, err := q.Exec(ctx, `
		DELETE FROM active_effects
		WHERE user_id = $1 AND guild_id = $2 AND effect_type = $3`,
		userID, guildID, string(effectType))
	if err != nil {
		return fmt.Errorf("failed to delete active effect: %w", err)
	}
	return nil
}

// GetStack returns a single stack, or nil when the user owns none
func (r *InventoryRepository) GetStack(ctx context.Context, userID, guildID, itemID, variant string) (*domain.InventoryEntry, error) {
	return getStack(ctx, r.db, userID, guildID, itemID, variant)
}

// GetStacks returns every stack a user owns in a guild
func (r *InventoryRepository) GetStacks(ctx context.Context, userID, guildID string) ([]domain.InventoryEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT user_id, guild_id, item_id, variant, quantity, acquired_at, expires_at
		FROM inventory_stacks
		WHERE user_id = $1 AND guild_id = $2
		ORDER BY item_id, variant`, userID, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory stacks: %w", err)
	}
	defer rows.Close()

	var entries []domain.InventoryEntry
	for rows.Next() {
		var e domain.InventoryEntry
		if err := rows.Scan(&e.UserID, &e.GuildID, &e.ItemID, &e.Variant,
			&e.Quantity, &e.AcquiredAt, &e.ExpiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan inventory stack: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// UpsertStack inserts or replaces a stack row
func (r *InventoryRepository) UpsertStack(ctx context.Context, entry domain.InventoryEntry) error {
	return upsertStack(ctx, r.db, entry)
}

// DeleteStack removes a stack row
func (r *InventoryRepository) DeleteStack(ctx context.Context, userID, guildID, itemID, variant string) error {
	return deleteStack(ctx, r.db, userID, guildID, itemID, variant)
}

// DeleteExpiredStacks purges stacks whose expiry has passed
func (r *InventoryRepository) DeleteExpiredStacks(ctx context.Context, userID, guildID string, now time.Time) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM inventory_stacks
		WHERE user_id = $1 AND guild_id = $2 AND expires_at IS NOT NULL AND expires_at < $3`,
		userID, guildID, now)
	if err != nil {
		return fmt.Errorf("failed to delete expired stacks: %w", err)
	}
	return nil
}

// GetActiveEffect returns the live effect of one type, or nil
func (r *InventoryRepository) GetActiveEffect(ctx context.Context, userID, guildID string, effectType domain.EffectType) (*domain.ActiveEffect, error) {
	return getActiveEffect(ctx, r.db, userID, guildID, effectType)
}

// GetActiveEffects returns every effect recorded for a user in a guild
func (r *InventoryRepository) GetActiveEffects(ctx context.Context, userID, guildID string) ([]domain.ActiveEffect, error) {
	rows, err := r.db.Query(ctx, `
		SELECT user_id, guild_id, effect_type, effect_value, expires_at
		FROM active_effects
		WHERE user_id = $1 AND guild_id = $2
		ORDER BY effect_type`, userID, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get active effects: %w", err)
	}
	defer rows.Close()

	var effects []domain.ActiveEffect
	for rows.Next() {
		var e domain.ActiveEffect
		var effectType string
		var expiresAt *time.Time
		if err := rows.Scan(&e.UserID, &e.GuildID, &effectType, &e.Value, &expiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan active effect: %w", err)
		}
		e.Type = domain.EffectType(effectType)
		if expiresAt != nil {
			e.ExpiresAt = *expiresAt
		}
		effects = append(effects, e)
	}
	return effects, rows.Err()
}

// PutActiveEffect inserts or replaces an effect row
func (r *InventoryRepository) PutActiveEffect(ctx context.Context, effect domain.ActiveEffect) error {
	return putActiveEffect(ctx, r.db, effect)
}

// DeleteActiveEffect removes an effect row
func (r *InventoryRepository) DeleteActiveEffect(ctx context.Context, userID, guildID string, effectType domain.EffectType) error {
	return deleteActiveEffect(ctx, r.db, userID, guildID, effectType)
}

// DeleteExpiredEffects purges effects whose expiry has passed. Rows with a
// NULL expiry are permanent and never purged.
func (r *InventoryRepository) DeleteExpiredEffects(ctx context.Context, userID, guildID string, now time.Time) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM active_effects
		WHERE user_id = $1 AND guild_id = $2 AND expires_at IS NOT NULL AND expires_at < $3`,
		userID, guildID, now)
	if err != nil {
		return fmt.Errorf("failed to delete expired effects: %w", err)
	}
	return nil
}

// GetStack returns a single stack within the transaction
func (t *InventoryTx) GetStack(ctx context.Context, userID, guildID, itemID, variant string) (*domain.InventoryEntry, error) {
	return getStack(ctx, t.tx, userID, guildID, itemID, variant)
}

// UpsertStack inserts or replaces a stack row within the transaction
func (t *InventoryTx) UpsertStack(ctx context.Context, entry domain.InventoryEntry) error {
	return upsertStack(ctx, t.tx, entry)
}

// DeleteStack removes a stack row within the transaction
func (t *InventoryTx) DeleteStack(ctx context.Context, userID, guildID, itemID, variant string) error {
	return deleteStack(ctx, t.tx, userID, guildID, itemID, variant)
}

// GetActiveEffect returns the live effect of one type within the transaction
func (t *InventoryTx) GetActiveEffect(ctx context.Context, userID, guildID string, effectType domain.EffectType) (*domain.ActiveEffect, error) {
	return getActiveEffect(ctx, t.tx, userID, guildID, effectType)
}

// PutActiveEffect inserts or replaces an effect row within the transaction
func (t *InventoryTx) PutActiveEffect(ctx context.Context, effect domain.ActiveEffect) error {
	return putActiveEffect(ctx, t.tx, effect)
}

// DeleteActiveEffect removes an effect row within the transaction
func (t *InventoryTx) DeleteActiveEffect(ctx context.Context, userID, guildID string, effectType domain.EffectType) error {
	return deleteActiveEffect(ctx, t.tx, userID, guildID, effectType)
}
