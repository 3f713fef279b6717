package inventory

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/mossfall/grottobot/internal/catalog"
	"github.com/mossfall/grottobot/internal/domain"
	"github.com/mossfall/grottobot/internal/event"
	"github.com/mossfall/grottobot/internal/logger"
	"github.com/mossfall/grottobot/internal/metrics"
	"github.com/mossfall/grottobot/internal/repository"
)

// UseResult describes what a single item use produced. At most one of
// Effect, Currency and Granted is set, matching the outcome kind.
type UseResult struct {
	ItemID   string                `json:"item_id"`
	Outcome  string                `json:"outcome"`
	Consumed bool                  `json:"consumed"`
	Effect   *domain.ActiveEffect  `json:"effect,omitempty"`
	Currency int                   `json:"currency,omitempty"`
	Granted  *domain.AddItemResult `json:"granted,omitempty"`
}

// SellResult contains the result of a sell operation
type SellResult struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
	Payout   int    `json:"payout"`
}

// Use outcome names surfaced on UseResult.
const (
	OutcomeEffect   = "effect_activated"
	OutcomeCurrency = "currency"
	OutcomeItem     = "item_granted"
	OutcomeNothing  = "nothing"
)

// CurrencyCrediter credits instant currency produced by item use (scratch
// tickets, random-effect draws) and sell payouts. Implemented by the ledger
// service; wired after construction because the ledger is built second.
type CurrencyCrediter interface {
	Credit(ctx context.Context, userID, guildID string, amount int, kind domain.TransactionKind, description string) error
}

// Service defines the interface for inventory operations
type Service interface {
	GetInventory(ctx context.Context, userID, guildID string) ([]domain.InventoryEntry, error)
	AddItem(ctx context.Context, userID, guildID, itemID, variant string, quantity int) (*domain.AddItemResult, error)
	RemoveItem(ctx context.Context, userID, guildID, itemID, variant string, quantity int) error
	UseItem(ctx context.Context, userID, guildID, itemID, variant string) (*UseResult, error)
	SellItem(ctx context.Context, userID, guildID, itemID, variant string, quantity int) (*SellResult, error)
	GetActiveEffects(ctx context.Context, userID, guildID string) ([]domain.ActiveEffect, error)
	GetMultiplier(ctx context.Context, userID, guildID string, effectType domain.EffectType) (float64, error)
	SetCrediter(c CurrencyCrediter)
}

type service struct {
	repo     repository.Inventory
	catalog  catalog.Service
	bus      event.Bus
	crediter CurrencyCrediter
	registry *handlerRegistry
	rnd      func() float64
	now      func() time.Time
}

// NewService creates a new inventory service. The currency crediter is set
// separately via SetCrediter once the ledger service exists.
func NewService(repo repository.Inventory, catalogSvc catalog.Service, bus event.Bus, rnd func() float64) Service {
	return &service{
		repo:     repo,
		catalog:  catalogSvc,
		bus:      bus,
		registry: newHandlerRegistry(),
		rnd:      rnd,
		now:      time.Now,
	}
}

func (s *service) SetCrediter(c CurrencyCrediter) {
	s.crediter = c
}

// purgeExpired drops expired stacks and effects for the user before a read
// or mutation. Expiry is enforced lazily on access, not by a sweeper.
func (s *service) purgeExpired(ctx context.Context, userID, guildID string) {
	log := logger.FromContext(ctx)
	now := s.now()
	if err := s.repo.DeleteExpiredStacks(ctx, userID, guildID, now); err != nil {
		log.Error("Failed to purge expired stacks", "error", err, "userID", userID)
	}
	if err := s.repo.DeleteExpiredEffects(ctx, userID, guildID, now); err != nil {
		log.Error("Failed to purge expired effects", "error", err, "userID", userID)
	}
}

func (s *service) GetInventory(ctx context.Context, userID, guildID string) ([]domain.InventoryEntry, error) {
	s.purgeExpired(ctx, userID, guildID)

	entries, err := s.repo.GetStacks(ctx, userID, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory: %w", err)
	}
	return entries, nil
}

func (s *service) GetActiveEffects(ctx context.Context, userID, guildID string) ([]domain.ActiveEffect, error) {
	s.purgeExpired(ctx, userID, guildID)

	effects, err := s.repo.GetActiveEffects(ctx, userID, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get active effects: %w", err)
	}
	return effects, nil
}

// GetMultiplier returns the live multiplier of the given type, or the
// identity 1.0 when no effect is active. Absence is not an error.
func (s *service) GetMultiplier(ctx context.Context, userID, guildID string, effectType domain.EffectType) (float64, error) {
	effect, err := s.repo.GetActiveEffect(ctx, userID, guildID, effectType)
	if err != nil {
		return 1.0, fmt.Errorf("failed to get active effect: %w", err)
	}
	if effect == nil {
		return 1.0, nil
	}
	if effect.Expired(s.now()) {
		if err := s.repo.DeleteActiveEffect(ctx, userID, guildID, effectType); err != nil {
			logger.FromContext(ctx).Error("Failed to delete expired effect", "error", err, "effectType", effectType)
		}
		return 1.0, nil
	}
	return effect.Value, nil
}

// resolveDefinition loads the catalog entry and validates the variant name.
func (s *service) resolveDefinition(ctx context.Context, guildID, itemID, variant string) (*domain.ItemDefinition, error) {
	def, err := s.catalog.GetItem(ctx, guildID, itemID)
	if err != nil {
		return nil, err
	}
	if variant != "" {
		found := false
		for _, v := range def.Variants {
			if v.Name == variant {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: unknown variant %q for item %s", domain.ErrItemNotFound, variant, itemID)
		}
	}
	return def, nil
}

func validateQuantity(quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity %d", domain.ErrInvalidAmount, quantity)
	}
	if quantity > domain.MaxTransactionQuantity {
		return fmt.Errorf("%w: quantity %d exceeds maximum %d", domain.ErrInvalidAmount, quantity, domain.MaxTransactionQuantity)
	}
	return nil
}

// addStackTx adds quantity of an item to its stack inside an open
// transaction, truncating at the catalog cap. Truncation is reported through
// the result, never as an error.
func (s *service) addStackTx(ctx context.Context, tx repository.InventoryTx, def *domain.ItemDefinition, userID, variant string, quantity int) (*domain.AddItemResult, error) {
	now := s.now()

	stack, err := tx.GetStack(ctx, userID, def.GuildID, def.ID, variant)
	if err != nil {
		return nil, fmt.Errorf("failed to get stack: %w", err)
	}

	current := 0
	acquiredAt := now
	if stack != nil {
		if stack.Expired(now) {
			if err := tx.DeleteStack(ctx, userID, def.GuildID, def.ID, variant); err != nil {
				return nil, fmt.Errorf("failed to delete expired stack: %w", err)
			}
			stack = nil
		} else {
			current = stack.Quantity
			acquiredAt = stack.AcquiredAt
		}
	}

	limit := def.MaxQuantity
	if limit <= 0 {
		limit = domain.DefaultMaxQuantity
	}

	space := limit - current
	if space < 0 {
		space = 0
	}
	added := quantity
	if added > space {
		added = space
	}

	result := &domain.AddItemResult{
		ItemID:  def.ID,
		Variant: variant,
		Added:   added,
		Capped:  added < quantity,
		Total:   current + added,
	}
	if added == 0 {
		return result, nil
	}

	entry := domain.InventoryEntry{
		UserID:     userID,
		GuildID:    def.GuildID,
		ItemID:     def.ID,
		Variant:    variant,
		Quantity:   current + added,
		AcquiredAt: acquiredAt,
	}
	// Perishable items restart their clock with each new batch. An untimed
	// batch landing on a surviving timed stack keeps the original expiry.
	if def.Timed() && def.Type != domain.ItemTypeConsumable {
		expiresAt := now.Add(def.EffectDuration())
		entry.ExpiresAt = &expiresAt
	} else if stack != nil {
		entry.ExpiresAt = stack.ExpiresAt
	}

	if err := tx.UpsertStack(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to upsert stack: %w", err)
	}
	return result, nil
}

// removeStackTx removes quantity from a stack inside an open transaction,
// deleting the row when it reaches zero.
func (s *service) removeStackTx(ctx context.Context, tx repository.InventoryTx, userID, guildID, itemID, variant string, quantity int) error {
	now := s.now()

	stack, err := tx.GetStack(ctx, userID, guildID, itemID, variant)
	if err != nil {
		return fmt.Errorf("failed to get stack: %w", err)
	}
	if stack == nil {
		return fmt.Errorf("%w: %s", domain.ErrItemNotOwned, itemID)
	}
	if stack.Expired(now) {
		if err := tx.DeleteStack(ctx, userID, guildID, itemID, variant); err != nil {
			return fmt.Errorf("failed to delete expired stack: %w", err)
		}
		return fmt.Errorf("%w: %s", domain.ErrItemExpired, itemID)
	}
	if stack.Quantity < quantity {
		return fmt.Errorf("%w: have %d, need %d", domain.ErrInsufficientQuantity, stack.Quantity, quantity)
	}

	if stack.Quantity == quantity {
		if err := tx.DeleteStack(ctx, userID, guildID, itemID, variant); err != nil {
			return fmt.Errorf("failed to delete stack: %w", err)
		}
		return nil
	}

	stack.Quantity -= quantity
	if err := tx.UpsertStack(ctx, *stack); err != nil {
		return fmt.Errorf("failed to update stack: %w", err)
	}
	return nil
}

func (s *service) AddItem(ctx context.Context, userID, guildID, itemID, variant string, quantity int) (*domain.AddItemResult, error) {
	log := logger.FromContext(ctx)
	log.Info("AddItem called", "userID", userID, "guildID", guildID, "itemID", itemID, "variant", variant, "quantity", quantity)

	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}

	def, err := s.resolveDefinition(ctx, guildID, itemID, variant)
	if err != nil {
		return nil, err
	}

	s.purgeExpired(ctx, userID, guildID)

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	result, err := s.addStackTx(ctx, tx, def, userID, variant, quantity)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if result.Capped {
		log.Info("Add truncated by stack cap", "itemID", itemID, "requested", quantity, "added", result.Added)
	}
	s.announceAcquisition(ctx, userID, guildID, def, result)

	return result, nil
}

// announceAcquisition publishes the legendary-drop event when an add landed
// at least one copy of a legendary-or-better item.
func (s *service) announceAcquisition(ctx context.Context, userID, guildID string, def *domain.ItemDefinition, result *domain.AddItemResult) {
	if result.Added == 0 || !def.Rarity.AtLeast(domain.RarityLegendary) {
		return
	}
	if err := s.bus.Publish(ctx, event.NewLegendaryAcquiredEvent(userID, guildID, *def)); err != nil {
		logger.FromContext(ctx).Error("Failed to publish legendary acquisition", "error", err, "itemID", def.ID)
	}
}

func (s *service) RemoveItem(ctx context.Context, userID, guildID, itemID, variant string, quantity int) error {
	log := logger.FromContext(ctx)
	log.Info("RemoveItem called", "userID", userID, "guildID", guildID, "itemID", itemID, "quantity", quantity)

	if err := validateQuantity(quantity); err != nil {
		return err
	}

	if _, err := s.resolveDefinition(ctx, guildID, itemID, variant); err != nil {
		return err
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	if err := s.removeStackTx(ctx, tx, userID, guildID, itemID, variant, quantity); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *service) SellItem(ctx context.Context, userID, guildID, itemID, variant string, quantity int) (*SellResult, error) {
	log := logger.FromContext(ctx)
	log.Info("SellItem called", "userID", userID, "guildID", guildID, "itemID", itemID, "quantity", quantity)

	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}

	def, err := s.resolveDefinition(ctx, guildID, itemID, variant)
	if err != nil {
		return nil, err
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	if err := s.removeStackTx(ctx, tx, userID, guildID, itemID, variant, quantity); err != nil {
		return nil, err
	}

	payout := sellPayout(def, quantity)

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if s.crediter != nil && payout > 0 {
		desc := fmt.Sprintf("Sold %dx %s", quantity, def.Name)
		if err := s.crediter.Credit(ctx, userID, guildID, payout, domain.TxItemSale, desc); err != nil {
			log.Error("Failed to credit sale payout", "error", err, "userID", userID, "payout", payout)
			return nil, fmt.Errorf("failed to credit payout: %w", err)
		}
	}

	metrics.ItemsSold.WithLabelValues(def.ID).Inc()
	log.Info("Item sold", "userID", userID, "itemID", itemID, "quantity", quantity, "payout", payout)

	return &SellResult{ItemID: itemID, Quantity: quantity, Payout: payout}, nil
}

// sellPayout prices a sale. Fish always fetch full catalog price; everything
// else pays a rarity-scaled fraction, floored per unit.
func sellPayout(def *domain.ItemDefinition, quantity int) int {
	if def.Type == domain.ItemTypeFish {
		return def.Price * quantity
	}
	unit := int(math.Floor(float64(def.Price) * domain.SellPercentage(def.Rarity)))
	return unit * quantity
}

func (s *service) UseItem(ctx context.Context, userID, guildID, itemID, variant string) (*UseResult, error) {
	log := logger.FromContext(ctx)
	log.Info("UseItem called", "userID", userID, "guildID", guildID, "itemID", itemID, "variant", variant)

	def, err := s.resolveDefinition(ctx, guildID, itemID, variant)
	if err != nil {
		return nil, err
	}

	handler := s.registry.get(def)
	if handler == nil {
		return nil, fmt.Errorf("%w: %s items have no use action", domain.ErrItemNotUsable, def.Type)
	}

	s.purgeExpired(ctx, userID, guildID)

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	now := s.now()
	stack, err := tx.GetStack(ctx, userID, guildID, itemID, variant)
	if err != nil {
		return nil, fmt.Errorf("failed to get stack: %w", err)
	}
	if stack == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrItemNotOwned, itemID)
	}
	if stack.Expired(now) {
		if err := tx.DeleteStack(ctx, userID, guildID, itemID, variant); err != nil {
			return nil, fmt.Errorf("failed to delete expired stack: %w", err)
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrItemExpired, itemID)
	}

	result := &UseResult{ItemID: itemID}
	post, err := handler.handle(ctx, s, tx, def, userID, result)
	if err != nil {
		return nil, err
	}

	if consumesOnUse(def) {
		if err := s.removeStackTx(ctx, tx, userID, guildID, itemID, variant, 1); err != nil {
			return nil, err
		}
		result.Consumed = true
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	// Post-commit side effects: event publication and currency credits run
	// outside the inventory transaction.
	if post != nil {
		post(ctx)
	}

	metrics.ItemsUsed.WithLabelValues(def.ID).Inc()
	log.Info("Item used", "userID", userID, "itemID", itemID, "outcome", result.Outcome)

	return result, nil
}

// activateEffectTx enforces the one-live-effect rule and writes the new
// effect row. An unexpired effect of the same type rejects the activation; an
// expired leftover is replaced.
func (s *service) activateEffectTx(ctx context.Context, tx repository.InventoryTx, userID, guildID string, effectType domain.EffectType, value float64, duration time.Duration) (*domain.ActiveEffect, error) {
	now := s.now()

	existing, err := tx.GetActiveEffect(ctx, userID, guildID, effectType)
	if err != nil {
		return nil, fmt.Errorf("failed to get active effect: %w", err)
	}
	if existing != nil {
		if !existing.Expired(now) {
			return nil, fmt.Errorf("%w: %s", domain.ErrEffectAlreadyActive, effectType)
		}
		if err := tx.DeleteActiveEffect(ctx, userID, guildID, effectType); err != nil {
			return nil, fmt.Errorf("failed to delete expired effect: %w", err)
		}
	}

	effect := domain.ActiveEffect{
		UserID:  userID,
		GuildID: guildID,
		Type:    effectType,
		Value:   value,
	}
	if duration > 0 {
		effect.ExpiresAt = now.Add(duration)
	}

	if err := tx.PutActiveEffect(ctx, effect); err != nil {
		return nil, fmt.Errorf("failed to put active effect: %w", err)
	}
	return &effect, nil
}

// creditCurrency hands instant currency to the ledger. Runs post-commit; a
// failure here is logged, not rolled back.
func (s *service) creditCurrency(ctx context.Context, userID, guildID string, amount int, kind domain.TransactionKind, description string) {
	if s.crediter == nil || amount <= 0 {
		return
	}
	if err := s.crediter.Credit(ctx, userID, guildID, amount, kind, description); err != nil {
		logger.FromContext(ctx).Error("Failed to credit currency", "error", err, "userID", userID, "amount", amount, "kind", kind)
	}
}
