package handler

import (
	"net/http"

	"github.com/mossfall/grottobot/internal/catalog"
	"github.com/mossfall/grottobot/internal/domain"
	"github.com/mossfall/grottobot/internal/logger"
)

// HandleGetCatalog returns a guild's item definitions, optionally filtered by type
func HandleGetCatalog(svc catalog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID, ok := GetQueryParam(r, w, "guild_id")
		if !ok {
			return
		}

		var (
			defs []domain.ItemDefinition
			err  error
		)
		if itemType := r.URL.Query().Get("type"); itemType != "" {
			defs, err = svc.GetItemsByType(r.Context(), guildID, domain.ItemType(itemType))
		} else {
			defs, err = svc.GetAllItems(r.Context(), guildID)
		}
		if err != nil {
			respondServiceError(w, r, "Get catalog", err)
			return
		}

		respondJSON(w, http.StatusOK, DataResponse{Data: defs})
	}
}

// HandleGetCatalogItem returns one item definition
func HandleGetCatalogItem(svc catalog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID, ok := GetQueryParam(r, w, "guild_id")
		if !ok {
			return
		}
		itemID, ok := GetQueryParam(r, w, "item_id")
		if !ok {
			return
		}

		def, err := svc.GetItem(r.Context(), guildID, itemID)
		if err != nil {
			respondServiceError(w, r, "Get catalog item", err)
			return
		}

		respondJSON(w, http.StatusOK, def)
	}
}

type UpsertItemRequest struct {
	GuildID       string               `json:"guild_id" validate:"required,max=64,excludesall=\x00\n\r\t"`
	ItemID        string               `json:"item_id" validate:"required,max=100"`
	Name          string               `json:"name" validate:"required,max=100"`
	Description   string               `json:"description" validate:"max=500"`
	Type          string               `json:"type" validate:"required,oneof=consumable mystery equipment material fish bait scratch collectible"`
	Rarity        string               `json:"rarity" validate:"required,oneof=common uncommon rare epic legendary mythic"`
	Price         int                  `json:"price" validate:"min=0"`
	MaxQuantity   int                  `json:"max_quantity" validate:"min=0,max=100000"`
	DurationHours int                  `json:"duration_hours" validate:"min=0,max=10000"`
	EffectType    string               `json:"effect_type" validate:"max=50"`
	EffectValue   float64              `json:"effect_value"`
	Variants      []domain.ItemVariant `json:"variants" validate:"max=50"`
}

// HandleUpsertItem creates or updates an item definition (admin action)
func HandleUpsertItem(svc catalog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UpsertItemRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Upsert catalog item"); err != nil {
			return
		}

		def := domain.ItemDefinition{
			ID:            req.ItemID,
			GuildID:       req.GuildID,
			Name:          req.Name,
			Description:   req.Description,
			Type:          domain.ItemType(req.Type),
			Rarity:        domain.Rarity(req.Rarity),
			Price:         req.Price,
			MaxQuantity:   req.MaxQuantity,
			DurationHours: req.DurationHours,
			EffectType:    domain.EffectType(req.EffectType),
			EffectValue:   req.EffectValue,
			Variants:      req.Variants,
		}
		if err := svc.UpsertItem(r.Context(), def); err != nil {
			respondServiceError(w, r, "Upsert catalog item", err)
			return
		}

		logger.FromContext(r.Context()).Info("Catalog item saved",
			"guild", req.GuildID, "item", req.ItemID, "type", req.Type, "rarity", req.Rarity)
		respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgItemSavedSuccess})
	}
}

type DeleteItemRequest struct {
	GuildID string `json:"guild_id" validate:"required,max=64,excludesall=\x00\n\r\t"`
	ItemID  string `json:"item_id" validate:"required,max=100"`
}

// HandleDeleteItem removes an item definition (admin action)
func HandleDeleteItem(svc catalog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req DeleteItemRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Delete catalog item"); err != nil {
			return
		}

		if err := svc.DeleteItem(r.Context(), req.GuildID, req.ItemID); err != nil {
			respondServiceError(w, r, "Delete catalog item", err)
			return
		}

		respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgItemDeletedSuccess})
	}
}
