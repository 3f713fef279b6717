package catalog

import (
	"context"

	"github.com/mossfall/grottobot/internal/domain"
)

// FakeRepository is a stateful in-memory implementation of
// repository.Catalog for integration-style unit tests.
type FakeRepository struct {
	items map[string]*domain.ItemDefinition // keyed by guild:item
	Reads int                               // repo hits, for cache assertions
}

func NewFakeRepository() *FakeRepository {
	return &FakeRepository{items: make(map[string]*domain.ItemDefinition)}
}

func (f *FakeRepository) GetItem(ctx context.Context, guildID, itemID string) (*domain.ItemDefinition, error) {
	f.Reads++
	if def, ok := f.items[guildID+":"+itemID]; ok {
		copied := *def
		return &copied, nil
	}
	return nil, nil
}

func (f *FakeRepository) GetAllItems(ctx context.Context, guildID string) ([]domain.ItemDefinition, error) {
	f.Reads++
	var defs []domain.ItemDefinition
	for key, def := range f.items {
		if len(key) > len(guildID) && key[:len(guildID)+1] == guildID+":" {
			defs = append(defs, *def)
		}
	}
	return defs, nil
}

func (f *FakeRepository) GetItemsByType(ctx context.Context, guildID string, itemType domain.ItemType) ([]domain.ItemDefinition, error) {
	all, err := f.GetAllItems(ctx, guildID)
	if err != nil {
		return nil, err
	}
	var defs []domain.ItemDefinition
	for _, def := range all {
		if def.Type == itemType {
			defs = append(defs, def)
		}
	}
	return defs, nil
}

func (f *FakeRepository) UpsertItem(ctx context.Context, def domain.ItemDefinition) error {
	copied := def
	f.items[def.GuildID+":"+def.ID] = &copied
	return nil
}

func (f *FakeRepository) DeleteItem(ctx context.Context, guildID, itemID string) error {
	delete(f.items, guildID+":"+itemID)
	return nil
}
