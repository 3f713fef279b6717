package domain

import "time"

// Account holds one user's currency within a single guild. Accounts are
// created lazily on first read and never deleted.
type Account struct {
	UserID      string     `json:"user_id" db:"user_id"`
	GuildID     string     `json:"guild_id" db:"guild_id"`
	Balance     int        `json:"balance" db:"balance"`
	Bank        int        `json:"bank" db:"bank"`
	LastDaily   *time.Time `json:"last_daily,omitempty" db:"last_daily"`
	LastWork    *time.Time `json:"last_work,omitempty" db:"last_work"`
	LastFish    *time.Time `json:"last_fish,omitempty" db:"last_fish"`
	TotalEarned int        `json:"total_earned" db:"total_earned"`
	TotalSpent  int        `json:"total_spent" db:"total_spent"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// NetWorth is the figure used for leaderboards and milestone thresholds.
func (a *Account) NetWorth() int {
	return a.Balance + a.Bank
}

// BalanceKind selects which sub-balance of an account an operation targets.
type BalanceKind string

const (
	BalanceOnHand BalanceKind = "balance"
	BalanceBank   BalanceKind = "bank"
)

// Valid reports whether the kind names a real sub-balance.
func (b BalanceKind) Valid() bool {
	return b == BalanceOnHand || b == BalanceBank
}

// LeaderboardEntry is one row of the guild leaderboard, ranked by net worth.
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	UserID   string `json:"user_id"`
	Balance  int    `json:"balance"`
	Bank     int    `json:"bank"`
	NetWorth int    `json:"net_worth"`
}
