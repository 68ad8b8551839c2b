package usecase

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"propfirm_server/internal/domain"
)

// PayoutInput carries the observed state the payout evaluator works from.
type PayoutInput struct {
	FundedAt                 time.Time
	LastPayoutAt             *time.Time
	NetProfitSinceLastPayout decimal.Decimal
	HasBreach                bool
	Now                      time.Time
}

// EvaluatePayoutEligibility runs every applicable precondition for a funded
// phase and accumulates one blocker per failure. It never short-circuits, so
// the blocker list is complete and user-explainable.
func EvaluatePayoutEligibility(phase domain.Phase, policy domain.PayoutPolicy, in PayoutInput) domain.PayoutEligibility {
	daysFunded := daysBetween(in.FundedAt, in.Now)

	daysSincePayout := daysFunded
	if in.LastPayoutAt != nil {
		daysSincePayout = daysBetween(*in.LastPayoutAt, in.Now)
	}

	split := decimal.Zero
	if in.NetProfitSinceLastPayout.IsPositive() {
		split = in.NetProfitSinceLastPayout.Mul(policy.ProfitSplitPercent).Div(percentBase)
	}

	var blockers []string

	if phase.Type != domain.PhaseTypeFunded {
		blockers = append(blockers, "account is not in the funded phase")
	}
	if daysFunded < policy.MinDaysSinceFunding {
		blockers = append(blockers, fmt.Sprintf("only %d of %d required days since funding", daysFunded, policy.MinDaysSinceFunding))
	}
	if in.LastPayoutAt != nil && daysSincePayout < policy.MinDaysBetweenPayouts {
		blockers = append(blockers, fmt.Sprintf("only %d of %d required days since last payout", daysSincePayout, policy.MinDaysBetweenPayouts))
	}
	if policy.MinProfit.IsPositive() && in.NetProfitSinceLastPayout.LessThan(policy.MinProfit) {
		blockers = append(blockers, fmt.Sprintf("net profit %s below the %s minimum", in.NetProfitSinceLastPayout.StringFixed(2), policy.MinProfit.StringFixed(2)))
	}
	if in.HasBreach {
		blockers = append(blockers, "phase has a recorded drawdown breach")
	}

	return domain.PayoutEligibility{
		IsEligible:               len(blockers) == 0,
		DaysSinceFunded:          daysFunded,
		DaysSinceLastPayout:      daysSincePayout,
		NetProfitSinceLastPayout: in.NetProfitSinceLastPayout,
		ProfitSplitAmount:        split,
		Blockers:                 blockers,
	}
}

var percentBase = decimal.NewFromInt(100)

func daysBetween(from, to time.Time) int {
	if to.Before(from) {
		return 0
	}
	return int(to.Sub(from).Hours() / 24)
}
