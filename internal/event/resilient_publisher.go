package event

import (
	"context"
	"time"

	"github.com/mossfall/grottobot/internal/logger"
)

// ResilientConfig configures the ResilientPublisher
type ResilientConfig struct {
	MaxRetries     int
	RetryDelay     time.Duration
	DeadLetterPath string
}

// DefaultResilientConfig returns the standard retry configuration
func DefaultResilientConfig(deadLetterPath string) ResilientConfig {
	return ResilientConfig{
		MaxRetries:     RetryMaxAttempts,
		RetryDelay:     RetryInitialDelay,
		DeadLetterPath: deadLetterPath,
	}
}

// ResilientPublisher wraps an event Bus to add retry logic and dead letter queuing
type ResilientPublisher struct {
	inner      Bus
	config     ResilientConfig
	deadLetter *DeadLetterWriter
}

// NewResilientPublisher creates a new ResilientPublisher
func NewResilientPublisher(inner Bus, config ResilientConfig) (*ResilientPublisher, error) {
	dlw, err := NewDeadLetterWriter(config.DeadLetterPath)
	if err != nil {
		return nil, err
	}
	return &ResilientPublisher{
		inner:      inner,
		config:     config,
		deadLetter: dlw,
	}, nil
}

// Publish attempts to publish an event. If it fails, it initiates a background
// retry loop and returns nil immediately, decoupling the caller from the retry
// mechanism.
func (p *ResilientPublisher) Publish(ctx context.Context, event Event) error {
	err := p.inner.Publish(ctx, event)
	if err == nil {
		return nil
	}

	log := logger.FromContext(ctx)
	log.Warn(LogMsgEventPublishFailed,
		"event_type", event.Type,
		"error", err,
		"retries", p.config.MaxRetries)

	go p.retryLoop(event)

	return nil
}

func (p *ResilientPublisher) retryLoop(event Event) {
	// Detached context: the original request context may already be cancelled
	ctx := context.Background()
	log := logger.FromContext(ctx)

	var lastErr error
	for attempt := 1; attempt <= p.config.MaxRetries; attempt++ {
		time.Sleep(CalculateRetryDelay(p.config.RetryDelay, attempt))

		lastErr = p.inner.Publish(ctx, event)
		if lastErr == nil {
			log.Info(LogMsgEventRetrySucceeded,
				"event_type", event.Type,
				"attempt", attempt)
			return
		}

		log.Warn(LogMsgEventRetryFailed,
			"event_type", event.Type,
			"attempt", attempt,
			"error", lastErr)
	}

	if err := p.deadLetter.Write(event, p.config.MaxRetries, lastErr); err != nil {
		log.Error("Failed to write to dead letter", "error", err)
	}
}

// Subscribe delegates to the inner bus
func (p *ResilientPublisher) Subscribe(eventType Type, handler Handler) {
	p.inner.Subscribe(eventType, handler)
}

// Close releases the dead-letter file handle
func (p *ResilientPublisher) Close() error {
	return p.deadLetter.Close()
}
