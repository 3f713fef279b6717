package handler

import (
	"net/http"

	"github.com/mossfall/grottobot/internal/ledger"
	"github.com/mossfall/grottobot/internal/logger"
)

// HandleGetAccount returns an account snapshot with its active effects
func HandleGetAccount(svc ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetQueryParam(r, w, "user_id")
		if !ok {
			return
		}
		guildID, ok := GetQueryParam(r, w, "guild_id")
		if !ok {
			return
		}

		snapshot, err := svc.GetAccount(r.Context(), userID, guildID)
		if err != nil {
			respondServiceError(w, r, "Get account", err)
			return
		}

		respondJSON(w, http.StatusOK, snapshot)
	}
}

type EarnRequest struct {
	UserID  string `json:"user_id" validate:"required,max=64,excludesall=\x00\n\r\t"`
	GuildID string `json:"guild_id" validate:"required,max=64,excludesall=\x00\n\r\t"`
	Base    int    `json:"base" validate:"min=0,max=1000000"`
}

// HandleClaimDaily handles the 24h daily reward claim
func HandleClaimDaily(svc ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req EarnRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Claim daily"); err != nil {
			return
		}

		result, err := svc.ClaimDaily(r.Context(), req.UserID, req.GuildID, req.Base)
		if err != nil {
			respondServiceError(w, r, "Claim daily", err)
			return
		}

		logger.FromContext(r.Context()).Info("Daily claimed",
			"user", req.UserID, "guild", req.GuildID, "amount", result.Amount)
		respondJSON(w, http.StatusOK, result)
	}
}

// HandleWork handles the hourly work action
func HandleWork(svc ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req EarnRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Work"); err != nil {
			return
		}

		result, err := svc.Work(r.Context(), req.UserID, req.GuildID, req.Base)
		if err != nil {
			respondServiceError(w, r, "Work", err)
			return
		}

		respondJSON(w, http.StatusOK, result)
	}
}

type FishRequest struct {
	UserID  string `json:"user_id" validate:"required,max=64,excludesall=\x00\n\r\t"`
	GuildID string `json:"guild_id" validate:"required,max=64,excludesall=\x00\n\r\t"`
}

// HandleFish handles the fishing action
func HandleFish(svc ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req FishRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Fish"); err != nil {
			return
		}

		result, err := svc.Fish(r.Context(), req.UserID, req.GuildID)
		if err != nil {
			respondServiceError(w, r, "Fish", err)
			return
		}

		respondJSON(w, http.StatusOK, result)
	}
}

type TransferRequest struct {
	FromUserID string `json:"from_user_id" validate:"required,max=64,excludesall=\x00\n\r\t"`
	ToUserID   string `json:"to_user_id" validate:"required,max=64,excludesall=\x00\n\r\t"`
	GuildID    string `json:"guild_id" validate:"required,max=64,excludesall=\x00\n\r\t"`
	Amount     int    `json:"amount" validate:"min=1"`
}

// HandleTransfer moves coins between two users' on-hand balances
func HandleTransfer(svc ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TransferRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Transfer"); err != nil {
			return
		}

		if err := svc.Transfer(r.Context(), req.FromUserID, req.ToUserID, req.GuildID, req.Amount); err != nil {
			respondServiceError(w, r, "Transfer", err)
			return
		}

		logger.FromContext(r.Context()).Info("Transfer completed",
			"from", req.FromUserID, "to", req.ToUserID, "guild", req.GuildID, "amount", req.Amount)
		respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgTransferSuccess})
	}
}

type BankRequest struct {
	UserID  string `json:"user_id" validate:"required,max=64,excludesall=\x00\n\r\t"`
	GuildID string `json:"guild_id" validate:"required,max=64,excludesall=\x00\n\r\t"`
	Amount  int    `json:"amount" validate:"min=1"`
}

// HandleDeposit moves coins from the on-hand balance into the bank
func HandleDeposit(svc ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BankRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Deposit"); err != nil {
			return
		}

		account, err := svc.Deposit(r.Context(), req.UserID, req.GuildID, req.Amount)
		if err != nil {
			respondServiceError(w, r, "Deposit", err)
			return
		}

		respondJSON(w, http.StatusOK, account)
	}
}

// HandleWithdraw moves coins from the bank back into the on-hand balance
func HandleWithdraw(svc ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BankRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Withdraw"); err != nil {
			return
		}

		account, err := svc.Withdraw(r.Context(), req.UserID, req.GuildID, req.Amount)
		if err != nil {
			respondServiceError(w, r, "Withdraw", err)
			return
		}

		respondJSON(w, http.StatusOK, account)
	}
}

type PurchaseRequest struct {
	UserID   string `json:"user_id" validate:"required,max=64,excludesall=\x00\n\r\t"`
	GuildID  string `json:"guild_id" validate:"required,max=64,excludesall=\x00\n\r\t"`
	ItemID   string `json:"item_id" validate:"required,max=100"`
	Variant  string `json:"variant" validate:"max=100"`
	Quantity int    `json:"quantity" validate:"min=1,max=10000"`
}

// HandlePurchase buys catalog items into the inventory
func HandlePurchase(svc ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PurchaseRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Purchase"); err != nil {
			return
		}

		result, err := svc.Purchase(r.Context(), req.UserID, req.GuildID, req.ItemID, req.Variant, req.Quantity)
		if err != nil {
			respondServiceError(w, r, "Purchase", err)
			return
		}

		logger.FromContext(r.Context()).Info("Purchase completed",
			"user", req.UserID, "item", req.ItemID, "quantity", result.Quantity, "cost", result.Cost)
		respondJSON(w, http.StatusOK, result)
	}
}

// HandleLeaderboard returns the guild leaderboard ranked by net worth
func HandleLeaderboard(svc ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID, ok := GetQueryParam(r, w, "guild_id")
		if !ok {
			return
		}
		limit, ok := GetLimitParam(r, w)
		if !ok {
			return
		}

		entries, err := svc.Leaderboard(r.Context(), guildID, limit)
		if err != nil {
			respondServiceError(w, r, "Get leaderboard", err)
			return
		}

		respondJSON(w, http.StatusOK, DataResponse{Data: entries})
	}
}

// HandleHistory returns a user's recent transactions, newest first
func HandleHistory(svc ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetQueryParam(r, w, "user_id")
		if !ok {
			return
		}
		guildID, ok := GetQueryParam(r, w, "guild_id")
		if !ok {
			return
		}
		limit, ok := GetLimitParam(r, w)
		if !ok {
			return
		}

		transactions, err := svc.History(r.Context(), userID, guildID, limit)
		if err != nil {
			respondServiceError(w, r, "Get history", err)
			return
		}

		respondJSON(w, http.StatusOK, DataResponse{Data: transactions})
	}
}

type AdminAdjustRequest struct {
	UserID  string `json:"user_id" validate:"required,max=64,excludesall=\x00\n\r\t"`
	GuildID string `json:"guild_id" validate:"required,max=64,excludesall=\x00\n\r\t"`
	Op      string `json:"op" validate:"required,oneof=add remove set"`
	Amount  int    `json:"amount" validate:"min=0"`
	Reason  string `json:"reason" validate:"max=200"`
}

// HandleAdminAdjust applies an administrative balance adjustment
func HandleAdminAdjust(svc ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminAdjustRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Admin adjust"); err != nil {
			return
		}

		account, err := svc.AdminAdjust(r.Context(), req.UserID, req.GuildID, ledger.AdminOp(req.Op), req.Amount, req.Reason)
		if err != nil {
			respondServiceError(w, r, "Admin adjust", err)
			return
		}

		logger.FromContext(r.Context()).Info("Admin balance adjustment",
			"user", req.UserID, "guild", req.GuildID, "op", req.Op, "amount", req.Amount)
		respondJSON(w, http.StatusOK, account)
	}
}
