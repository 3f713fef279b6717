package metrics

import (
	"context"

	"github.com/mossfall/grottobot/internal/event"
	"github.com/mossfall/grottobot/internal/logger"
)

// EventMetricsCollector subscribes to events and records metrics
type EventMetricsCollector struct{}

// NewEventMetricsCollector creates a new event metrics collector
func NewEventMetricsCollector() *EventMetricsCollector {
	return &EventMetricsCollector{}
}

// Register subscribes to all events
func (e *EventMetricsCollector) Register(bus event.Bus) error {
	eventTypes := []event.Type{
		event.ItemLegendaryAcquired,
		event.MilestoneReached,
		event.EffectActivated,
		event.XPAwarded,
	}

	for _, eventType := range eventTypes {
		bus.Subscribe(eventType, e.HandleEvent)
	}

	return nil
}

// HandleEvent processes events and updates metrics
func (e *EventMetricsCollector) HandleEvent(ctx context.Context, evt event.Event) error {
	log := logger.FromContext(ctx)

	EventsPublished.WithLabelValues(string(evt.Type)).Inc()

	switch evt.Type {
	case event.ItemLegendaryAcquired:
		payload, err := event.DecodePayload[event.LegendaryAcquiredPayloadV1](evt.Payload)
		if err != nil {
			log.Debug(LogMsgPayloadDecodeFailed, "type", evt.Type, "error", err)
			return nil
		}
		LegendaryDrops.WithLabelValues(payload.Rarity).Inc()

	case event.MilestoneReached:
		MilestonesReached.Inc()

	case event.EffectActivated:
		payload, err := event.DecodePayload[event.EffectActivatedPayloadV1](evt.Payload)
		if err != nil {
			log.Debug(LogMsgPayloadDecodeFailed, "type", evt.Type, "error", err)
			return nil
		}
		EffectsActivated.WithLabelValues(payload.EffectType).Inc()

	case event.XPAwarded:
		// Counted by EventsPublished only; XP totals live with the
		// progression surface that consumes these events.
	}

	log.Debug(LogMsgMetricsRecorded, "type", evt.Type)
	return nil
}
