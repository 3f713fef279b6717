package domain

import "time"

// TransactionKind identifies what produced a ledger mutation.
type TransactionKind string

const (
	TxDaily         TransactionKind = "daily"
	TxWork          TransactionKind = "work"
	TxFishing       TransactionKind = "fishing"
	TxTransferIn    TransactionKind = "transfer_in"
	TxTransferOut   TransactionKind = "transfer_out"
	TxDeposit       TransactionKind = "deposit"
	TxWithdraw      TransactionKind = "withdraw"
	TxShopPurchase  TransactionKind = "shop_purchase"
	TxShopRefund    TransactionKind = "shop_refund"
	TxItemSale      TransactionKind = "item_sale"
	TxAdminAdd      TransactionKind = "admin_add"
	TxAdminRemove   TransactionKind = "admin_remove"
	TxAdminSet      TransactionKind = "admin_set"
	TxNetWorthBonus TransactionKind = "net_worth_bonus"
	TxRandomEffect  TransactionKind = "random_effect"
	TxScratch       TransactionKind = "scratch"
)

// Transaction is one append-only audit record. Rows are immutable once
// written; the transaction history view is just a newest-first read of them.
type Transaction struct {
	ID           string          `json:"id" db:"transaction_id"`
	UserID       string          `json:"user_id" db:"user_id"`
	GuildID      string          `json:"guild_id" db:"guild_id"`
	Kind         TransactionKind `json:"kind" db:"kind"`
	Amount       int             `json:"amount" db:"amount"` // signed
	Description  string          `json:"description" db:"description"`
	Counterparty string          `json:"counterparty,omitempty" db:"counterparty"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}
