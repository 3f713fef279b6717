package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/mossfall/grottobot/internal/domain"
	"github.com/mossfall/grottobot/internal/logger"
)

// Sentinel errors for the catalog loader
var (
	ErrDuplicateItemID = errors.New("duplicate item id")
	ErrInvalidConfig   = errors.New("invalid configuration")
)

// SeedConfig represents the JSON configuration for catalog seeding
type SeedConfig struct {
	Version     string    `json:"version" validate:"required"`
	Description string    `json:"description"`
	GuildID     string    `json:"guild_id" validate:"required"`
	Items       []SeedDef `json:"items" validate:"required,min=1,dive"`
}

// SeedDef represents a single item definition in the JSON
type SeedDef struct {
	ID            string               `json:"id" validate:"required"`
	Name          string               `json:"name" validate:"required"`
	Description   string               `json:"description"`
	Type          string               `json:"type" validate:"required,oneof=consumable mystery equipment material fish bait scratch collectible"`
	Rarity        string               `json:"rarity" validate:"required,oneof=common uncommon rare epic legendary mythic"`
	Price         int                  `json:"price" validate:"gte=0"`
	MaxQuantity   int                  `json:"max_quantity" validate:"gte=0"`
	DurationHours int                  `json:"duration_hours" validate:"gte=0"`
	EffectType    string               `json:"effect_type,omitempty"`
	EffectValue   float64              `json:"effect_value,omitempty" validate:"gte=0"`
	Variants      []domain.ItemVariant `json:"variants,omitempty"`
}

// SyncResult contains the result of syncing seed items to the store
type SyncResult struct {
	ItemsUpserted int
	ItemsSkipped  int
}

// Loader handles loading and validating catalog seed configuration
type Loader interface {
	Load(path string) (*SeedConfig, error)
	Sync(ctx context.Context, cfg *SeedConfig, svc Service) (*SyncResult, error)
}

type seedLoader struct {
	validate *validator.Validate
}

// NewLoader creates a new Loader instance
func NewLoader() Loader {
	return &seedLoader{validate: validator.New()}
}

// Load reads, parses and validates a catalog seed file.
func (l *seedLoader) Load(path string) (*SeedConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var cfg SeedConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	if err := l.validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, err)
	}

	seen := make(map[string]bool, len(cfg.Items))
	for _, item := range cfg.Items {
		if seen[item.ID] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateItemID, item.ID)
		}
		seen[item.ID] = true
	}

	return &cfg, nil
}

// Sync upserts every seed definition through the catalog service.
func (l *seedLoader) Sync(ctx context.Context, cfg *SeedConfig, svc Service) (*SyncResult, error) {
	log := logger.FromContext(ctx)
	result := &SyncResult{}

	for _, item := range cfg.Items {
		def := domain.ItemDefinition{
			ID:            item.ID,
			GuildID:       cfg.GuildID,
			Name:          item.Name,
			Description:   item.Description,
			Type:          domain.ItemType(item.Type),
			Rarity:        domain.Rarity(item.Rarity),
			Price:         item.Price,
			MaxQuantity:   item.MaxQuantity,
			DurationHours: item.DurationHours,
			EffectType:    domain.EffectType(item.EffectType),
			EffectValue:   item.EffectValue,
			Variants:      item.Variants,
		}

		if err := svc.UpsertItem(ctx, def); err != nil {
			log.Warn("Skipping seed item", "item", item.ID, "error", err)
			result.ItemsSkipped++
			continue
		}
		result.ItemsUpserted++
	}

	log.Info("Catalog seed synced",
		"guild_id", cfg.GuildID,
		"upserted", result.ItemsUpserted,
		"skipped", result.ItemsSkipped)
	return result, nil
}
