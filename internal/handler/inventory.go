package handler

import (
	"net/http"

	"github.com/mossfall/grottobot/internal/inventory"
	"github.com/mossfall/grottobot/internal/logger"
)

// HandleGetInventory returns every stack a user owns in a guild
func HandleGetInventory(svc inventory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetQueryParam(r, w, "user_id")
		if !ok {
			return
		}
		guildID, ok := GetQueryParam(r, w, "guild_id")
		if !ok {
			return
		}

		entries, err := svc.GetInventory(r.Context(), userID, guildID)
		if err != nil {
			respondServiceError(w, r, "Get inventory", err)
			return
		}

		respondJSON(w, http.StatusOK, DataResponse{Data: entries})
	}
}

// HandleGetActiveEffects returns a user's live effects
func HandleGetActiveEffects(svc inventory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetQueryParam(r, w, "user_id")
		if !ok {
			return
		}
		guildID, ok := GetQueryParam(r, w, "guild_id")
		if !ok {
			return
		}

		effects, err := svc.GetActiveEffects(r.Context(), userID, guildID)
		if err != nil {
			respondServiceError(w, r, "Get active effects", err)
			return
		}

		respondJSON(w, http.StatusOK, DataResponse{Data: effects})
	}
}

type AddItemRequest struct {
	UserID   string `json:"user_id" validate:"required,max=64,excludesall=\x00\n\r\t"`
	GuildID  string `json:"guild_id" validate:"required,max=64,excludesall=\x00\n\r\t"`
	ItemID   string `json:"item_id" validate:"required,max=100"`
	Variant  string `json:"variant" validate:"max=100"`
	Quantity int    `json:"quantity" validate:"min=1,max=10000"`
}

// HandleAddItem grants items to a user's inventory (admin/system action)
func HandleAddItem(svc inventory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AddItemRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Add item"); err != nil {
			return
		}

		result, err := svc.AddItem(r.Context(), req.UserID, req.GuildID, req.ItemID, req.Variant, req.Quantity)
		if err != nil {
			respondServiceError(w, r, "Add item", err)
			return
		}

		logger.FromContext(r.Context()).Info("Item added",
			"user", req.UserID, "item", req.ItemID, "added", result.Added, "capped", result.Capped)
		respondJSON(w, http.StatusOK, result)
	}
}

type RemoveItemRequest struct {
	UserID   string `json:"user_id" validate:"required,max=64,excludesall=\x00\n\r\t"`
	GuildID  string `json:"guild_id" validate:"required,max=64,excludesall=\x00\n\r\t"`
	ItemID   string `json:"item_id" validate:"required,max=100"`
	Variant  string `json:"variant" validate:"max=100"`
	Quantity int    `json:"quantity" validate:"min=1,max=10000"`
}

// HandleRemoveItem removes items from a user's inventory
func HandleRemoveItem(svc inventory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RemoveItemRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Remove item"); err != nil {
			return
		}

		if err := svc.RemoveItem(r.Context(), req.UserID, req.GuildID, req.ItemID, req.Variant, req.Quantity); err != nil {
			respondServiceError(w, r, "Remove item", err)
			return
		}

		respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgItemRemovedSuccess})
	}
}

type UseItemRequest struct {
	UserID  string `json:"user_id" validate:"required,max=64,excludesall=\x00\n\r\t"`
	GuildID string `json:"guild_id" validate:"required,max=64,excludesall=\x00\n\r\t"`
	ItemID  string `json:"item_id" validate:"required,max=100"`
	Variant string `json:"variant" validate:"max=100"`
}

// HandleUseItem consumes or activates an item
func HandleUseItem(svc inventory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UseItemRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Use item"); err != nil {
			return
		}

		result, err := svc.UseItem(r.Context(), req.UserID, req.GuildID, req.ItemID, req.Variant)
		if err != nil {
			respondServiceError(w, r, "Use item", err)
			return
		}

		logger.FromContext(r.Context()).Info("Item used",
			"user", req.UserID, "item", req.ItemID, "outcome", result.Outcome)
		respondJSON(w, http.StatusOK, result)
	}
}

type SellItemRequest struct {
	UserID   string `json:"user_id" validate:"required,max=64,excludesall=\x00\n\r\t"`
	GuildID  string `json:"guild_id" validate:"required,max=64,excludesall=\x00\n\r\t"`
	ItemID   string `json:"item_id" validate:"required,max=100"`
	Variant  string `json:"variant" validate:"max=100"`
	Quantity int    `json:"quantity" validate:"min=1,max=10000"`
}

// HandleSellItem sells items back to the shop at the rarity rate
func HandleSellItem(svc inventory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SellItemRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Sell item"); err != nil {
			return
		}

		result, err := svc.SellItem(r.Context(), req.UserID, req.GuildID, req.ItemID, req.Variant, req.Quantity)
		if err != nil {
			respondServiceError(w, r, "Sell item", err)
			return
		}

		logger.FromContext(r.Context()).Info("Item sold",
			"user", req.UserID, "item", req.ItemID, "quantity", result.Quantity, "payout", result.Payout)
		respondJSON(w, http.StatusOK, result)
	}
}
