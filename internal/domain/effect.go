package domain

import "time"

// EffectType identifies what an active effect modifies. Uniqueness of live
// effects is enforced at (user, guild, effect type), so two different items
// granting the same type can never stack.
type EffectType string

const (
	EffectCoinMultiplier  EffectType = "coin_multiplier"
	EffectWorkMultiplier  EffectType = "work_multiplier"
	EffectDailyMultiplier EffectType = "daily_multiplier"
	EffectXPMultiplier    EffectType = "xp_multiplier"
	EffectFishingSpeed    EffectType = "fishing_speed"
	EffectBaitBoost       EffectType = "bait_boost"
)

// MultiplierEffectTypes are the effect types subject to the one-live-effect
// rule. Using an item whose type is already active is rejected, not refreshed.
var MultiplierEffectTypes = []EffectType{
	EffectCoinMultiplier,
	EffectWorkMultiplier,
	EffectDailyMultiplier,
	EffectXPMultiplier,
	EffectFishingSpeed,
	EffectBaitBoost,
}

// IsMultiplier reports whether the type participates in the active-effect
// registry.
func (e EffectType) IsMultiplier() bool {
	for _, t := range MultiplierEffectTypes {
		if e == t {
			return true
		}
	}
	return false
}

// ActiveEffect is one live multiplier for a user within a guild. At most one
// row exists per (user, guild, effect type).
type ActiveEffect struct {
	UserID    string     `json:"user_id" db:"user_id"`
	GuildID   string     `json:"guild_id" db:"guild_id"`
	Type      EffectType `json:"type" db:"effect_type"`
	Value     float64    `json:"value" db:"effect_value"`
	ExpiresAt time.Time  `json:"expires_at" db:"expires_at"`
}

// Expired reports whether the effect has passed its expiry at the given time.
func (e *ActiveEffect) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}
