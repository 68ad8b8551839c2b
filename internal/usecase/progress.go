package usecase

import (
	"github.com/shopspring/decimal"

	"propfirm_server/internal/domain"
)

var fullProgress = decimal.NewFromInt(100)

// EvaluateProgress compares a phase's net profit against its profit target and
// trading-day constraints. Funded phases carry a zero target and are never
// ready to advance; the only exits from funded are failure or payout.
func EvaluateProgress(phase domain.Phase, daysTraded int, breached bool) domain.ProgressResult {
	net := phase.NetProfit()
	target := phase.ProfitTarget

	progress := decimal.Zero
	if target.IsPositive() {
		progress = net.Div(target).Mul(fullProgress)
		// Clamped for display; readiness below uses the raw amounts.
		if progress.GreaterThan(fullProgress) {
			progress = fullProgress
		}
	}

	ready := target.IsPositive() &&
		net.GreaterThanOrEqual(target) &&
		daysTraded >= phase.MinTradingDays &&
		!breached

	next, _ := phase.Type.Successor()

	return domain.ProgressResult{
		ProfitTarget:   target,
		NetProfit:      net,
		ProfitProgress: progress,
		DaysTraded:     daysTraded,
		ReadyToAdvance: ready,
		NextPhaseType:  next,
	}
}
