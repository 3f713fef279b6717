package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mossfall/grottobot/internal/domain"
)

// Type represents the type of an event
type Type string

// Event represents a generic event in the system
type Event struct {
	Version  string                 `json:"version"` // Event schema version (e.g., "1.0")
	Type     Type                   `json:"type"`
	Payload  interface{}            `json:"payload"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Common event types
const (
	ItemLegendaryAcquired Type = "item.legendary_acquired"
	MilestoneReached      Type = "milestone.reached"
	EffectActivated       Type = "effect.activated"
	XPAwarded             Type = "xp.awarded"
)

// Typed event payloads for type safety

// LegendaryAcquiredPayloadV1 is the typed payload for legendary acquisition events
type LegendaryAcquiredPayloadV1 struct {
	UserID    string `json:"user_id"`
	GuildID   string `json:"guild_id"`
	ItemID    string `json:"item_id"`
	ItemName  string `json:"item_name"`
	Rarity    string `json:"rarity"`
	Timestamp int64  `json:"timestamp"`
}

// MilestoneReachedPayloadV1 is the typed payload for milestone events
type MilestoneReachedPayloadV1 struct {
	UserID    string `json:"user_id"`
	GuildID   string `json:"guild_id"`
	Threshold int64  `json:"threshold"`
	XPBonus   int64  `json:"xp_bonus"`
	Timestamp int64  `json:"timestamp"`
}

// EffectActivatedPayloadV1 is the typed payload for effect activation events
type EffectActivatedPayloadV1 struct {
	UserID     string  `json:"user_id"`
	GuildID    string  `json:"guild_id"`
	EffectType string  `json:"effect_type"`
	Multiplier float64 `json:"multiplier"`
	ExpiresAt  int64   `json:"expires_at"`
	Timestamp  int64   `json:"timestamp"`
}

// XPAwardedPayloadV1 is the typed payload for XP grant events consumed by the
// external progression surface.
type XPAwardedPayloadV1 struct {
	UserID    string `json:"user_id"`
	GuildID   string `json:"guild_id"`
	Amount    int64  `json:"amount"`
	Source    string `json:"source"`
	Timestamp int64  `json:"timestamp"`
}

// Type-safe event constructors

// NewLegendaryAcquiredEvent creates a new legendary acquisition event
func NewLegendaryAcquiredEvent(userID, guildID string, item domain.ItemDefinition) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    ItemLegendaryAcquired,
		Payload: LegendaryAcquiredPayloadV1{
			UserID:    userID,
			GuildID:   guildID,
			ItemID:    item.ID,
			ItemName:  item.Name,
			Rarity:    string(item.Rarity),
			Timestamp: time.Now().Unix(),
		},
	}
}

// NewMilestoneReachedEvent creates a new milestone reached event
func NewMilestoneReachedEvent(userID, guildID string, threshold, xpBonus int64) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    MilestoneReached,
		Payload: MilestoneReachedPayloadV1{
			UserID:    userID,
			GuildID:   guildID,
			Threshold: threshold,
			XPBonus:   xpBonus,
			Timestamp: time.Now().Unix(),
		},
	}
}

// NewEffectActivatedEvent creates a new effect activation event
func NewEffectActivatedEvent(userID, guildID string, effect domain.ActiveEffect) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    EffectActivated,
		Payload: EffectActivatedPayloadV1{
			UserID:     userID,
			GuildID:    guildID,
			EffectType: string(effect.Type),
			Multiplier: effect.Value,
			ExpiresAt:  effect.ExpiresAt.Unix(),
			Timestamp:  time.Now().Unix(),
		},
	}
}

// NewXPAwardedEvent creates a new XP award event
func NewXPAwardedEvent(userID, guildID string, amount int64, source string) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    XPAwarded,
		Payload: XPAwardedPayloadV1{
			UserID:    userID,
			GuildID:   guildID,
			Amount:    amount,
			Source:    source,
			Timestamp: time.Now().Unix(),
		},
	}
}

// Handler is a function that handles an event
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for an event bus
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType Type, handler Handler)
}

// MemoryBus is an in-memory implementation of the Event Bus
type MemoryBus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewMemoryBus creates a new MemoryBus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[Type][]Handler),
	}
}

// Publish publishes an event to all subscribers
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers, ok := b.handlers[event.Type]
	b.mu.RUnlock()

	if !ok {
		return nil
	}

	// Handlers run synchronously. With configuration this could dispatch to a
	// worker pool instead.
	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf(LogMsgHandlerErrorFormat, len(errs), event.Type, errs)
	}

	return nil
}

// Subscribe subscribes a handler to an event type
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}
