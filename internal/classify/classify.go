package classify

import "time"

// Tier is the urgency bucket an item falls into based on remaining shelf life
type Tier string

// Urgency tiers, most severe first
const (
	TierCritical Tier = "critical"
	TierHigh     Tier = "high"
	TierMedium   Tier = "medium"
	TierLow      Tier = "low"
)

// AtRiskThresholdDays marks items eligible for redistribution
const AtRiskThresholdDays = 3

const day = 24 * time.Hour

// Result carries the derived fields for an inventory item. Urgency and
// SuggestedDiscount are always produced together from DaysUntilExpiry.
type Result struct {
	DaysUntilExpiry   int  `json:"daysUntilExpiry"`
	Urgency           Tier `json:"urgency"`
	SuggestedDiscount int  `json:"suggestedDiscount"`
}

// DaysUntilExpiry returns the number of calendar days until expiry, rounding
// partial days up. An item expiring in 12 hours reports 1. Exact multiples of
// 24h are not rounded further: exactly 24h remaining reports 1, exactly now
// reports 0. Already-expired items report negative values.
func DaysUntilExpiry(expiry, now time.Time) int {
	diff := expiry.Sub(now)
	days := diff / day
	if diff%day > 0 {
		days++
	}
	return int(days)
}

// TierFor maps remaining days to an urgency tier. First match wins; the
// thresholds partition the integer line with no gaps.
func TierFor(daysUntilExpiry int) Tier {
	switch {
	case daysUntilExpiry <= 1:
		return TierCritical
	case daysUntilExpiry <= 3:
		return TierHigh
	case daysUntilExpiry <= 7:
		return TierMedium
	default:
		return TierLow
	}
}

// DiscountFor returns the suggested discount percentage for a tier
func DiscountFor(tier Tier) int {
	switch tier {
	case TierCritical:
		return 50
	case TierHigh:
		return 30
	case TierMedium:
		return 15
	default:
		return 0
	}
}

// Classify computes all derived fields for an expiry date. It is pure and
// deterministic, so re-running it over stored records is idempotent.
func Classify(expiry, now time.Time) Result {
	days := DaysUntilExpiry(expiry, now)
	tier := TierFor(days)
	return Result{
		DaysUntilExpiry:   days,
		Urgency:           tier,
		SuggestedDiscount: DiscountFor(tier),
	}
}
