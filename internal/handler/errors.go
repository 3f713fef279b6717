package handler

// Generic HTTP error messages for client responses.
// These messages intentionally do not expose internal error details.
// Both handlers and tests should reference these constants to maintain consistency.
const (
	ErrMsgInvalidRequest        = "Invalid request body"
	ErrMsgInvalidRequestSummary = "Invalid request"

	// Query parameter error messages
	ErrMsgMissingQueryParam = "Missing %s query parameter"
	ErrMsgInvalidLimit      = "Invalid limit parameter"

	// Account operation error messages
	ErrMsgGetAccountFailed     = "Failed to get account"
	ErrMsgTransferFailed       = "Failed to transfer coins"
	ErrMsgDepositFailed        = "Failed to deposit coins"
	ErrMsgWithdrawFailed       = "Failed to withdraw coins"
	ErrMsgClaimDailyFailed     = "Failed to claim daily reward"
	ErrMsgWorkFailed           = "Failed to work"
	ErrMsgFishFailed           = "Failed to fish"
	ErrMsgGetLeaderboardFailed = "Failed to retrieve leaderboard"
	ErrMsgGetHistoryFailed     = "Failed to retrieve transaction history"
	ErrMsgAdminAdjustFailed    = "Failed to adjust balance"

	// Inventory operation error messages
	ErrMsgGetInventoryFailed = "Failed to get inventory"
	ErrMsgAddItemFailed      = "Failed to add item"
	ErrMsgRemoveItemFailed   = "Failed to remove item"
	ErrMsgUseItemFailed      = "Failed to use item"
	ErrMsgSellItemFailed     = "Failed to sell item"
	ErrMsgBuyItemFailed      = "Failed to buy item"

	// Catalog operation error messages
	ErrMsgGetCatalogFailed = "Failed to get catalog"
	ErrMsgUpsertItemFailed = "Failed to save item definition"
	ErrMsgDeleteItemFailed = "Failed to delete item definition"
)

// Success messages for API responses
const (
	MsgItemAddedSuccess   = "Item added successfully"
	MsgItemRemovedSuccess = "Item removed successfully"
	MsgTransferSuccess    = "Transfer completed"
	MsgItemSavedSuccess   = "Item definition saved"
	MsgItemDeletedSuccess = "Item definition deleted"
)
