package repository

import (
	"context"
	"time"

	"github.com/mossfall/grottobot/internal/domain"
)

// Inventory defines the interface for stack and active-effect persistence
type Inventory interface {
	GetStack(ctx context.Context, userID, guildID, itemID, variant string) (*domain.InventoryEntry, error)
	GetStacks(ctx context.Context, userID, guildID string) ([]domain.InventoryEntry, error)
	UpsertStack(ctx context.Context, entry domain.InventoryEntry) error
	DeleteStack(ctx context.Context, userID, guildID, itemID, variant string) error
	DeleteExpiredStacks(ctx context.Context, userID, guildID string, now time.Time) error

	GetActiveEffect(ctx context.Context, userID, guildID string, effectType domain.EffectType) (*domain.ActiveEffect, error)
	GetActiveEffects(ctx context.Context, userID, guildID string) ([]domain.ActiveEffect, error)
	PutActiveEffect(ctx context.Context, effect domain.ActiveEffect) error
	DeleteActiveEffect(ctx context.Context, userID, guildID string, effectType domain.EffectType) error
	DeleteExpiredEffects(ctx context.Context, userID, guildID string, now time.Time) error

	BeginTx(ctx context.Context) (InventoryTx, error)
}

// InventoryTx defines the interface for atomic inventory mutations. Item use
// touches both the stack and the effect registry and must not be observable
// halfway.
type InventoryTx interface {
	Tx
	GetStack(ctx context.Context, userID, guildID, itemID, variant string) (*domain.InventoryEntry, error)
	UpsertStack(ctx context.Context, entry domain.InventoryEntry) error
	DeleteStack(ctx context.Context, userID, guildID, itemID, variant string) error
	GetActiveEffect(ctx context.Context, userID, guildID string, effectType domain.EffectType) (*domain.ActiveEffect, error)
	PutActiveEffect(ctx context.Context, effect domain.ActiveEffect) error
	DeleteActiveEffect(ctx context.Context, userID, guildID string, effectType domain.EffectType) error
}
