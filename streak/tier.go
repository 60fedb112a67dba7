package streak

import "encoding/json"

// Tier is a day's or week's completion level.
type Tier int

const (
	TierNone Tier = iota
	TierBronze
	TierSilver
	TierGold
)

var tierNames = map[Tier]string{
	TierNone:   "none",
	TierBronze: "bronze",
	TierSilver: "silver",
	TierGold:   "gold",
}

// String returns the tier name.
func (t Tier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return "unknown"
}

// MarshalJSON encodes the tier by name.
func (t Tier) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// Thresholds maps completion counts to tiers.
type Thresholds struct {
	// SilverRatio is the completed/applicable ratio at which a day is silver.
	SilverRatio float64

	// GoldRatio is the completed/applicable ratio at which a day is gold.
	GoldRatio float64

	// WeekBronze, WeekSilver and WeekGold are the active-day counts a
	// week needs for each badge.
	WeekBronze int
	WeekSilver int
	WeekGold   int
}

// DefaultThresholds returns the thresholds used by the presence grid.
func DefaultThresholds() Thresholds {
	return Thresholds{
		SilverRatio: 0.5,
		GoldRatio:   1.0,
		WeekBronze:  3,
		WeekSilver:  5,
		WeekGold:    7,
	}
}

// DayTier returns the tier for completed out of applicable tasks.
func (th Thresholds) DayTier(completed, applicable int) Tier {
	if completed <= 0 || applicable <= 0 {
		return TierNone
	}
	ratio := float64(completed) / float64(applicable)
	switch {
	case ratio >= th.GoldRatio:
		return TierGold
	case ratio >= th.SilverRatio:
		return TierSilver
	default:
		return TierBronze
	}
}

// WeekBadge returns the badge for a week with the given active days.
func (th Thresholds) WeekBadge(activeDays int) Tier {
	switch {
	case activeDays >= th.WeekGold:
		return TierGold
	case activeDays >= th.WeekSilver:
		return TierSilver
	case activeDays >= th.WeekBronze:
		return TierBronze
	default:
		return TierNone
	}
}
