package repository

import (
	"context"

	"github.com/mossfall/grottobot/internal/domain"
)

// Catalog defines the interface for item-definition persistence. Read-heavy;
// writes come only from administrative operations.
type Catalog interface {
	GetItem(ctx context.Context, guildID, itemID string) (*domain.ItemDefinition, error)
	GetAllItems(ctx context.Context, guildID string) ([]domain.ItemDefinition, error)
	GetItemsByType(ctx context.Context, guildID string, itemType domain.ItemType) ([]domain.ItemDefinition, error)
	UpsertItem(ctx context.Context, def domain.ItemDefinition) error
	DeleteItem(ctx context.Context, guildID, itemID string) error
}
