package inventory

import (
	"context"
	"fmt"

	"github.com/mossfall/grottobot/internal/domain"
	"github.com/mossfall/grottobot/internal/event"
	"github.com/mossfall/grottobot/internal/repository"
	"github.com/mossfall/grottobot/internal/reward"
)

// postAction runs after the inventory transaction commits. Event publication
// and currency credits live here so a rollback never has external effects.
type postAction func(ctx context.Context)

// itemHandler resolves the use action for one family of catalog items.
type itemHandler interface {
	// canHandle returns true if this handler can process the given item
	canHandle(def *domain.ItemDefinition) bool

	// handle applies the item effect inside the open transaction and fills
	// in the result. The returned postAction, if any, runs after commit.
	handle(ctx context.Context, s *service, tx repository.InventoryTx, def *domain.ItemDefinition, userID string, result *UseResult) (postAction, error)
}

// handlerRegistry manages item use handlers
type handlerRegistry struct {
	handlers []itemHandler
}

// newHandlerRegistry creates a registry with the default handlers. Order
// matters: the mystery and scratch handlers claim their types before the
// effect handler sees them.
func newHandlerRegistry() *handlerRegistry {
	return &handlerRegistry{
		handlers: []itemHandler{
			&mysteryHandler{},
			&scratchHandler{},
			&effectHandler{},
			&randomEffectHandler{},
		},
	}
}

// get finds the appropriate handler for the given item, or nil when the item
// has no use action.
func (r *handlerRegistry) get(def *domain.ItemDefinition) itemHandler {
	for _, h := range r.handlers {
		if h.canHandle(def) {
			return h
		}
	}
	return nil
}

// consumesOnUse reports whether a successful use decrements the stack.
// Equipment and bait keep their copy; their effect is the consumable part.
func consumesOnUse(def *domain.ItemDefinition) bool {
	switch def.Type {
	case domain.ItemTypeConsumable, domain.ItemTypeMystery, domain.ItemTypeScratch:
		return true
	}
	return false
}

// effectHandler activates the multiplier effect named on the definition
type effectHandler struct{}

func (h *effectHandler) canHandle(def *domain.ItemDefinition) bool {
	return def.EffectType != "" && def.EffectType.IsMultiplier()
}

func (h *effectHandler) handle(ctx context.Context, s *service, tx repository.InventoryTx, def *domain.ItemDefinition, userID string, result *UseResult) (postAction, error) {
	effect, err := s.activateEffectTx(ctx, tx, userID, def.GuildID, def.EffectType, def.EffectValue, def.EffectDuration())
	if err != nil {
		return nil, err
	}

	result.Outcome = OutcomeEffect
	result.Effect = effect

	evt := event.NewEffectActivatedEvent(userID, def.GuildID, *effect)
	return func(ctx context.Context) {
		_ = s.bus.Publish(ctx, evt)
	}, nil
}

// mysteryHandler opens mystery boxes via a weighted rarity draw
type mysteryHandler struct{}

func (h *mysteryHandler) canHandle(def *domain.ItemDefinition) bool {
	return def.Type == domain.ItemTypeMystery
}

func (h *mysteryHandler) handle(ctx context.Context, s *service, tx repository.InventoryTx, def *domain.ItemDefinition, userID string, result *UseResult) (postAction, error) {
	items, err := s.catalog.GetAllItems(ctx, def.GuildID)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog for draw: %w", err)
	}

	// Rare-or-better boxes draw from the premium pool.
	var drawn *domain.ItemDefinition
	if def.Rarity.AtLeast(domain.RarityRare) {
		drawn = reward.PremiumDraw(items, s.rnd)
	} else {
		drawn = reward.MysteryDraw(items, s.rnd)
	}
	if drawn == nil {
		result.Outcome = OutcomeNothing
		return nil, nil
	}

	granted, err := s.addStackTx(ctx, tx, drawn, userID, "", 1)
	if err != nil {
		return nil, err
	}

	result.Outcome = OutcomeItem
	result.Granted = granted

	item := *drawn
	return func(ctx context.Context) {
		s.announceAcquisition(ctx, userID, def.GuildID, &item, granted)
	}, nil
}

// scratchHandler resolves scratch tickets through the fixed probability bands
type scratchHandler struct{}

func (h *scratchHandler) canHandle(def *domain.ItemDefinition) bool {
	return def.Type == domain.ItemTypeScratch
}

func (h *scratchHandler) handle(ctx context.Context, s *service, tx repository.InventoryTx, def *domain.ItemDefinition, userID string, result *UseResult) (postAction, error) {
	items, err := s.catalog.GetAllItems(ctx, def.GuildID)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog for draw: %w", err)
	}

	outcome := reward.ResolveScratch(items, s.rnd)
	switch outcome.Kind {
	case reward.ScratchCurrency:
		result.Outcome = OutcomeCurrency
		result.Currency = outcome.Currency
		amount := outcome.Currency
		return func(ctx context.Context) {
			s.creditCurrency(ctx, userID, def.GuildID, amount, domain.TxScratch, "Scratch ticket win")
		}, nil

	case reward.ScratchItem:
		granted, err := s.addStackTx(ctx, tx, outcome.Item, userID, "", 1)
		if err != nil {
			return nil, err
		}
		result.Outcome = OutcomeItem
		result.Granted = granted
		item := *outcome.Item
		return func(ctx context.Context) {
			s.announceAcquisition(ctx, userID, def.GuildID, &item, granted)
		}, nil

	default:
		result.Outcome = OutcomeNothing
		return nil, nil
	}
}

// randomEffectHandler covers plain consumables with no declared effect: each
// use rolls the weighted effect table.
type randomEffectHandler struct{}

func (h *randomEffectHandler) canHandle(def *domain.ItemDefinition) bool {
	return def.Type == domain.ItemTypeConsumable && def.EffectType == ""
}

func (h *randomEffectHandler) handle(ctx context.Context, s *service, tx repository.InventoryTx, def *domain.ItemDefinition, userID string, result *UseResult) (postAction, error) {
	items, err := s.catalog.GetAllItems(ctx, def.GuildID)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog for draw: %w", err)
	}

	drawn := reward.RandomEffect(reward.EffectParams{Catalog: items}, s.rnd)
	switch drawn.Kind {
	case reward.KindXPBoost, reward.KindWorkBoost, reward.KindCoinBoost:
		effect, err := s.activateEffectTx(ctx, tx, userID, def.GuildID, drawn.EffectType, drawn.Value, drawn.Duration)
		if err != nil {
			return nil, err
		}
		result.Outcome = OutcomeEffect
		result.Effect = effect
		evt := event.NewEffectActivatedEvent(userID, def.GuildID, *effect)
		return func(ctx context.Context) {
			_ = s.bus.Publish(ctx, evt)
		}, nil

	case reward.KindCurrency:
		result.Outcome = OutcomeCurrency
		result.Currency = drawn.Currency
		amount := drawn.Currency
		return func(ctx context.Context) {
			s.creditCurrency(ctx, userID, def.GuildID, amount, domain.TxRandomEffect, "Random effect windfall")
		}, nil

	case reward.KindItemGrant:
		granted, err := s.addStackTx(ctx, tx, drawn.Item, userID, "", drawn.Quantity)
		if err != nil {
			return nil, err
		}
		result.Outcome = OutcomeItem
		result.Granted = granted
		item := *drawn.Item
		return func(ctx context.Context) {
			s.announceAcquisition(ctx, userID, def.GuildID, &item, granted)
		}, nil

	default:
		result.Outcome = OutcomeNothing
		return nil, nil
	}
}
