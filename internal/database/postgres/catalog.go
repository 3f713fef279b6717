package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mossfall/grottobot/internal/domain"
)

// CatalogRepository implements the catalog repository for PostgreSQL
type CatalogRepository struct {
	db *pgxpool.Pool
}

// NewCatalogRepository creates a new CatalogRepository
func NewCatalogRepository(db *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{db: db}
}

const catalogColumns = `item_id, guild_id, name, description, item_type, rarity, price, max_quantity, duration_hours, effect_type, effect_value, variants, created_at`

func scanItemDefinition(row pgx.Row) (*domain.ItemDefinition, error) {
	var d domain.ItemDefinition
	var itemType, rarity, effectType string
	var variants []byte
	err := row.Scan(&d.ID, &d.GuildID, &d.Name, &d.Description, &itemType, &rarity,
		&d.Price, &d.MaxQuantity, &d.DurationHours, &effectType, &d.EffectValue,
		&variants, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	d.Type = domain.ItemType(itemType)
	d.Rarity = domain.Rarity(rarity)
	d.EffectType = domain.EffectType(effectType)
	if len(variants) > 0 {
		if err := json.Unmarshal(variants, &d.Variants); err != nil {
			return nil, fmt.Errorf("failed to decode item variants: %w", err)
		}
	}
	return &d, nil
}

// GetItem returns one item definition, or nil when the guild has none by that ID
func (r *CatalogRepository) GetItem(ctx context.Context, guildID, itemID string) (*domain.ItemDefinition, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+catalogColumns+`
		FROM catalog_items
		WHERE guild_id = $1 AND item_id = $2`, guildID, itemID)
	def, err := scanItemDefinition(row)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get catalog item: %w", err)
	}
	return def, nil
}

func (r *CatalogRepository) queryItems(ctx context.Context, sql string, args ...any) ([]domain.ItemDefinition, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog items: %w", err)
	}
	defer rows.Close()

	var defs []domain.ItemDefinition
	for rows.Next() {
		def, err := scanItemDefinition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan catalog item: %w", err)
		}
		defs = append(defs, *def)
	}
	return defs, rows.Err()
}

// GetAllItems returns every item definition for a guild
func (r *CatalogRepository) GetAllItems(ctx context.Context, guildID string) ([]domain.ItemDefinition, error) {
	return r.queryItems(ctx, `
		SELECT `+catalogColumns+`
		FROM catalog_items
		WHERE guild_id = $1
		ORDER BY item_id`, guildID)
}

// GetItemsByType returns a guild's item definitions of one type
func (r *CatalogRepository) GetItemsByType(ctx context.Context, guildID string, itemType domain.ItemType) ([]domain.ItemDefinition, error) {
	return r.queryItems(ctx, `
		SELECT `+catalogColumns+`
		FROM catalog_items
		WHERE guild_id = $1 AND item_type = $2
		ORDER BY item_id`, guildID, string(itemType))
}

// UpsertItem inserts or replaces an item definition
func (r *CatalogRepository) UpsertItem(ctx context.Context, def domain.ItemDefinition) error {
	variants, err := json.Marshal(def.Variants)
	if err != nil {
		return fmt.Errorf("failed to encode item variants: %w", err)
	}
	if def.Variants == nil {
		variants = []byte("[]")
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO catalog_items (item_id, guild_id, name, description, item_type, rarity, price, max_quantity, duration_hours, effect_type, effect_value, variants)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (guild_id, item_id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			item_type = EXCLUDED.item_type,
			rarity = EXCLUDED.rarity,
			price = EXCLUDED.price,
			max_quantity = EXCLUDED.max_quantity,
			duration_hours = EXCLUDED.duration_hours,
			effect_type = EXCLUDED.effect_type,
			effect_value = EXCLUDED.effect_value,
			variants = EXCLUDED.variants`,
		def.ID, def.GuildID, def.Name, def.Description, string(def.Type),
		string(def.Rarity), def.Price, def.MaxQuantity, def.DurationHours,
		string(def.EffectType), def.EffectValue, variants)
	if err != nil {
		return fmt.Errorf("failed to upsert catalog item: %w", err)
	}
	return nil
}

// DeleteItem removes an item definition. Existing inventory stacks keep their
// rows; resolution against the missing definition fails at the service layer.
func (r *CatalogRepository) DeleteItem(ctx context.Context, guildID, itemID string) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM catalog_items
		WHERE guild_id = $1 AND item_id = $2`, guildID, itemID)
	if err != nil {
		return fmt.Errorf("failed to delete catalog item: %w", err)
	}
	return nil
}
