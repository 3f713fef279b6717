package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/mossfall/grottobot/internal/domain"
	"github.com/mossfall/grottobot/internal/logger"
	"github.com/mossfall/grottobot/internal/repository"
)

// Service defines the interface for catalog operations
type Service interface {
	GetItem(ctx context.Context, guildID, itemID string) (*domain.ItemDefinition, error)
	GetAllItems(ctx context.Context, guildID string) ([]domain.ItemDefinition, error)
	GetItemsByType(ctx context.Context, guildID string, itemType domain.ItemType) ([]domain.ItemDefinition, error)
	UpsertItem(ctx context.Context, def domain.ItemDefinition) error
	DeleteItem(ctx context.Context, guildID, itemID string) error
}

const (
	defaultCacheSize = 512
	defaultCacheTTL  = time.Minute
)

type service struct {
	repo  repository.Catalog
	cache *itemCache
}

// NewService creates a new catalog service with the default cache TTL.
func NewService(repo repository.Catalog) Service {
	return NewServiceWithTTL(repo, defaultCacheTTL)
}

// NewServiceWithTTL creates a catalog service with an explicit cache TTL.
func NewServiceWithTTL(repo repository.Catalog, ttl time.Duration) Service {
	return &service{
		repo:  repo,
		cache: newItemCache(defaultCacheSize, ttl),
	}
}

func (s *service) GetItem(ctx context.Context, guildID, itemID string) (*domain.ItemDefinition, error) {
	if def, ok := s.cache.GetItem(guildID, itemID); ok {
		return def, nil
	}

	def, err := s.repo.GetItem(ctx, guildID, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	if def == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrItemNotFound, itemID)
	}
	if err := validateDefinition(def); err != nil {
		return nil, err
	}

	s.cache.SetItem(def)
	return def, nil
}

func (s *service) GetAllItems(ctx context.Context, guildID string) ([]domain.ItemDefinition, error) {
	if defs, ok := s.cache.GetListing(guildID); ok {
		return defs, nil
	}

	defs, err := s.repo.GetAllItems(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	s.cache.SetListing(guildID, defs)
	return defs, nil
}

func (s *service) GetItemsByType(ctx context.Context, guildID string, itemType domain.ItemType) ([]domain.ItemDefinition, error) {
	defs, err := s.GetAllItems(ctx, guildID)
	if err != nil {
		return nil, err
	}

	var filtered []domain.ItemDefinition
	for _, def := range defs {
		if def.Type == itemType {
			filtered = append(filtered, def)
		}
	}
	return filtered, nil
}

func (s *service) UpsertItem(ctx context.Context, def domain.ItemDefinition) error {
	log := logger.FromContext(ctx)

	if def.ID == "" || def.GuildID == "" {
		return fmt.Errorf("%w: item id and guild id are required", domain.ErrInvalidAmount)
	}
	if !def.Rarity.Valid() {
		return fmt.Errorf("%w: unknown rarity %q", domain.ErrCorruptRecord, def.Rarity)
	}
	if def.MaxQuantity <= 0 {
		def.MaxQuantity = domain.DefaultMaxQuantity
	}

	if err := s.repo.UpsertItem(ctx, def); err != nil {
		log.Error("Failed to upsert catalog item", "error", err, "item", def.ID)
		return fmt.Errorf("failed to upsert item: %w", err)
	}

	s.cache.InvalidateGuild(def.GuildID)
	log.Info("Catalog item upserted", "guild_id", def.GuildID, "item", def.ID)
	return nil
}

func (s *service) DeleteItem(ctx context.Context, guildID, itemID string) error {
	if err := s.repo.DeleteItem(ctx, guildID, itemID); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	s.cache.InvalidateGuild(guildID)
	return nil
}

// validateDefinition rejects catalog rows that violate engine invariants.
// A malformed row is store corruption, fatal to the single operation.
func validateDefinition(def *domain.ItemDefinition) error {
	if !def.Rarity.Valid() {
		return fmt.Errorf("%w: item %s has unknown rarity %q", domain.ErrCorruptRecord, def.ID, def.Rarity)
	}
	if def.MaxQuantity <= 0 {
		return fmt.Errorf("%w: item %s has non-positive max quantity", domain.ErrCorruptRecord, def.ID)
	}
	if def.Price < 0 {
		return fmt.Errorf("%w: item %s has negative price", domain.ErrCorruptRecord, def.ID)
	}
	return nil
}
