package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"

	"github.com/mossfall/grottobot/internal/domain"
	"github.com/mossfall/grottobot/internal/logger"
)

// Standard response types for consistent API responses

// SuccessResponse represents a simple successful operation message
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// DataResponse represents a response with a data payload
type DataResponse struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
}

// CooldownResponse is returned when a cooldown-gated action is rejected.
// RetrySeconds is rounded up so clients never retry early.
type CooldownResponse struct {
	Error        string `json:"error"`
	Action       string `json:"action"`
	RetrySeconds int    `json:"retry_seconds"`
}

// respondJSON sends a JSON response with the given status code and payload
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	buf := getBuffer()
	defer putBuffer(buf)

	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		// Headers are already sent; nothing left to do but log.
		slog.Error("Failed to encode JSON response", "error", err)
		return
	}

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Failed to write response buffer", "error", err)
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// User-facing error messages for service errors
const (
	ErrMsgGenericServerError   = "Something went wrong"
	ErrMsgNotEnoughMoneyError  = "Not enough coins"
	ErrMsgInvalidAmountError   = "Invalid amount"
	ErrMsgItemNotFoundError    = "Item not found"
	ErrMsgItemNotOwnedError    = "You don't have that item"
	ErrMsgItemExpiredError     = "That item has expired"
	ErrMsgInsufficientItemsErr = "Not enough items"
	ErrMsgEffectActiveError    = "An effect of that kind is already active"
	ErrMsgItemNotUsableError   = "That item cannot be used"
	ErrMsgOnCooldownError      = "Action is on cooldown. Try again later"
)

// mapServiceErrorToUserMessage maps domain errors to HTTP status codes and
// messages the caller can act on. Store corruption and unknown failures
// collapse to a generic 500.
func mapServiceErrorToUserMessage(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusBadRequest, ErrMsgNotEnoughMoneyError
	case errors.Is(err, domain.ErrInvalidAmount):
		return http.StatusBadRequest, ErrMsgInvalidAmountError
	case errors.Is(err, domain.ErrItemNotFound):
		return http.StatusBadRequest, ErrMsgItemNotFoundError
	case errors.Is(err, domain.ErrItemNotOwned):
		return http.StatusBadRequest, ErrMsgItemNotOwnedError
	case errors.Is(err, domain.ErrItemExpired):
		return http.StatusBadRequest, ErrMsgItemExpiredError
	case errors.Is(err, domain.ErrInsufficientQuantity):
		return http.StatusBadRequest, ErrMsgInsufficientItemsErr
	case errors.Is(err, domain.ErrEffectAlreadyActive):
		return http.StatusConflict, ErrMsgEffectActiveError
	case errors.Is(err, domain.ErrItemNotUsable):
		return http.StatusBadRequest, ErrMsgItemNotUsableError
	}
	return http.StatusInternalServerError, ErrMsgGenericServerError
}

// respondServiceError writes the response for a failed service call. Domain
// rejections are logged at warn and mapped to 4xx; everything else is an
// internal failure.
func respondServiceError(w http.ResponseWriter, r *http.Request, opName string, err error) {
	log := logger.FromContext(r.Context())

	var cooldownErr domain.CooldownError
	if errors.As(err, &cooldownErr) {
		log.Warn(fmt.Sprintf("%s rejected: on cooldown", opName),
			"action", cooldownErr.Action, "remaining", cooldownErr.Remaining)
		respondJSON(w, http.StatusTooManyRequests, CooldownResponse{
			Error:        ErrMsgOnCooldownError,
			Action:       cooldownErr.Action,
			RetrySeconds: int(math.Ceil(cooldownErr.Remaining.Seconds())),
		})
		return
	}

	status, message := mapServiceErrorToUserMessage(err)
	if status >= http.StatusInternalServerError {
		log.Error(fmt.Sprintf("%s failed", opName), "error", err)
	} else {
		log.Warn(fmt.Sprintf("%s rejected", opName), "error", err)
	}
	respondError(w, status, message)
}
