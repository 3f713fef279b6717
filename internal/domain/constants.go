package domain

import "time"

// Cooldown-gated action names. Stored on the account row as last-action
// timestamps, not in a separate cooldown table.
const (
	ActionDaily = "daily"
	ActionWork  = "work"
	ActionFish  = "fish"
)

// Cooldown durations. The fishing cooldown is a base value scaled at call
// time by the user's equipment-derived fishing_speed multiplier.
const (
	DailyCooldown    = 24 * time.Hour
	WorkCooldown     = time.Hour
	FishBaseCooldown = 30 * time.Minute
)

// FishNoCatchChance is the fixed probability that a fishing attempt comes up
// empty before any pool is built. The cooldown is stamped regardless.
const FishNoCatchChance = 0.05

// BaitSuccessChance is the probability that active bait boosts the weight of
// any single rare-or-better fish during catch selection.
const BaitSuccessChance = 0.5

// Default base payouts for the cooldown-gated earn actions. Callers may
// override per request.
const (
	DefaultDailyAmount = 500
	DefaultWorkAmount  = 150
)

// RarityWeight returns the number of copies an item of the given rarity
// contributes to a flattened draw pool. Common items dominate the pool.
var rarityWeights = map[Rarity]int{
	RarityCommon:    30,
	RarityUncommon:  25,
	RarityRare:      20,
	RarityEpic:      15,
	RarityLegendary: 10,
	RarityMythic:    5,
}

// RarityWeight returns the draw weight for a rarity tier.
func RarityWeight(r Rarity) int {
	return rarityWeights[r]
}

// Sell-price percentages by rarity. Fish ignore these and always sell at
// full catalog price.
var sellPercentages = map[Rarity]float64{
	RarityCommon:    0.40,
	RarityUncommon:  0.50,
	RarityRare:      0.60,
	RarityEpic:      0.70,
	RarityLegendary: 0.80,
	RarityMythic:    0.90,
}

// SellPercentage returns the fraction of catalog price paid when selling.
func SellPercentage(r Rarity) float64 {
	return sellPercentages[r]
}

// Milestone is one net-worth threshold with its one-time XP reward.
type Milestone struct {
	Threshold int
	RewardXP  int
}

// Milestones is the fixed ascending list of net-worth thresholds checked
// after every balance update. Each fires at most once per user per guild.
var Milestones = []Milestone{
	{Threshold: 1_000, RewardXP: 100},
	{Threshold: 10_000, RewardXP: 250},
	{Threshold: 50_000, RewardXP: 500},
	{Threshold: 100_000, RewardXP: 1_000},
	{Threshold: 500_000, RewardXP: 2_500},
	{Threshold: 1_000_000, RewardXP: 5_000},
}

// DefaultMaxQuantity applies when a catalog entry does not set a cap.
const DefaultMaxQuantity = 99

// MaxTransactionQuantity caps a single add/remove/sell request.
const MaxTransactionQuantity = 1000

// Default query sizes for the read-only views exposed to the command layer.
const (
	DefaultLeaderboardSize = 10
	DefaultHistorySize     = 10
	MaxLeaderboardSize     = 25
	MaxHistorySize         = 50
)
