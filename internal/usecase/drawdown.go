package usecase

import (
	"github.com/shopspring/decimal"

	"propfirm_server/internal/domain"
)

// EvaluateDrawdown computes the remaining headroom against the phase's daily
// and maximum drawdown limits. It is a pure function: the ratcheted high-water
// mark is returned in HighestEquity and the caller decides whether to persist
// it. Recomputing with identical inputs yields identical output.
func EvaluateDrawdown(in domain.DrawdownInput) domain.DrawdownResult {
	// Monotonic ratchet: the stored mark never decreases, and feeding the same
	// equity twice leaves it unchanged.
	highest := in.HighWaterMark
	if in.CurrentEquity.GreaterThan(highest) {
		highest = in.CurrentEquity
	}

	dailyUsed := in.AnchorBalance.Sub(in.CurrentEquity)
	if dailyUsed.IsNegative() {
		dailyUsed = decimal.Zero
	}
	dailyRemaining := in.DailyLimit.Sub(dailyUsed)

	baseline := in.StartingBalance
	if in.Trailing {
		baseline = highest
	}
	maxUsed := baseline.Sub(in.CurrentEquity)
	if maxUsed.IsNegative() {
		maxUsed = decimal.Zero
	}
	maxRemaining := in.MaxLimit.Sub(maxUsed)

	result := domain.DrawdownResult{
		DailyDrawdownRemaining: dailyRemaining,
		MaxDrawdownRemaining:   maxRemaining,
		HighestEquity:          highest,
	}

	// Daily is checked first: it is the tighter, earlier-triggered constraint,
	// so it wins when both limits are simultaneously breached.
	switch {
	case dailyRemaining.IsNegative():
		result.IsBreached = true
		result.BreachType = domain.BreachTypeDailyDrawdown
	case maxRemaining.IsNegative():
		result.IsBreached = true
		result.BreachType = domain.BreachTypeMaxDrawdown
	}

	return result
}
