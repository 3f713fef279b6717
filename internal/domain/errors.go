package domain

import (
	"errors"
	"fmt"
	"time"
)

// Error message string constants - single source of truth for error messages
const (
	ErrMsgInsufficientFunds    = "insufficient funds"
	ErrMsgInvalidAmount        = "invalid amount"
	ErrMsgItemNotFound         = "item not found"
	ErrMsgItemNotOwned         = "item not owned"
	ErrMsgItemExpired          = "item expired"
	ErrMsgInsufficientQuantity = "insufficient quantity"
	ErrMsgEffectAlreadyActive  = "effect already active"
	ErrMsgItemNotUsable        = "item not usable"
	ErrMsgCorruptRecord        = "corrupt record"
)

// Domain-rejection errors. These are expected, recoverable outcomes: the
// caller surfaces a message and stops. Wrap with
// fmt.Errorf("%w: %s", domain.ErrXxx, details) for context.
var (
	ErrInsufficientFunds    = errors.New(ErrMsgInsufficientFunds)
	ErrInvalidAmount        = errors.New(ErrMsgInvalidAmount)
	ErrItemNotFound         = errors.New(ErrMsgItemNotFound)
	ErrItemNotOwned         = errors.New(ErrMsgItemNotOwned)
	ErrItemExpired          = errors.New(ErrMsgItemExpired)
	ErrInsufficientQuantity = errors.New(ErrMsgInsufficientQuantity)
	ErrEffectAlreadyActive  = errors.New(ErrMsgEffectAlreadyActive)
	ErrItemNotUsable        = errors.New(ErrMsgItemNotUsable)

	// ErrCorruptRecord marks an invariant violation found in the store
	// (negative quantities, malformed catalog rows). Fatal to the single
	// operation; no partial recovery is attempted.
	ErrCorruptRecord = errors.New(ErrMsgCorruptRecord)
)

// CooldownError is returned when a cooldown-gated action is attempted too
// soon. It carries the remaining wait as domain data.
type CooldownError struct {
	Action    string
	Remaining time.Duration
}

func (e CooldownError) Error() string {
	minutes := int(e.Remaining.Minutes())
	seconds := int(e.Remaining.Seconds()) % 60

	if minutes > 0 {
		return fmt.Sprintf("action '%s' on cooldown: %dm %ds remaining", e.Action, minutes, seconds)
	}
	return fmt.Sprintf("action '%s' on cooldown: %ds remaining", e.Action, seconds)
}

// Is allows errors.Is() to work with CooldownError
func (e CooldownError) Is(target error) bool {
	_, ok := target.(CooldownError)
	return ok
}
