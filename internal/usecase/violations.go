package usecase

import (
	"sort"

	"github.com/shopspring/decimal"

	"propfirm_server/internal/domain"
)

// ScanViolations replays a phase's closed-trade history against its limits:
// trades are grouped by UTC close day and each day's aggregate loss is checked
// against the daily limit, then the balance curve is walked trade by trade to
// find the deepest trough for the maximum-drawdown check. Read-only compliance
// view; live breach detection happens at trade-record time.
func ScanViolations(phase domain.Phase, trades []domain.Trade) domain.ViolationReport {
	byDay := make(map[string][]domain.Trade)
	for _, t := range trades {
		day := t.CloseDay()
		byDay[day] = append(byDay[day], t)
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	var violations []domain.DailyViolation
	for _, day := range days {
		dayPnL := decimal.Zero
		for _, t := range byDay[day] {
			dayPnL = dayPnL.Add(t.NetPnL())
		}

		dayLoss := decimal.Zero
		if dayPnL.IsNegative() {
			dayLoss = dayPnL.Abs()
		}

		if dayLoss.GreaterThan(phase.DailyDrawdown) {
			violations = append(violations, domain.DailyViolation{
				Day:        day,
				NetPnL:     dayPnL,
				DayLoss:    dayLoss,
				Limit:      phase.DailyDrawdown,
				ExceededBy: dayLoss.Sub(phase.DailyDrawdown),
				TradeCount: len(byDay[day]),
			})
		}
	}

	sorted := make([]domain.Trade, len(trades))
	copy(sorted, trades)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ExitTime.Before(sorted[j].ExitTime)
	})

	balance := phase.StartingBalance
	lowest := phase.StartingBalance
	for _, t := range sorted {
		balance = balance.Add(t.NetPnL())
		if balance.LessThan(lowest) {
			lowest = balance
		}
	}

	maxUsed := phase.StartingBalance.Sub(lowest)
	maxHit := maxUsed.GreaterThan(phase.MaxDrawdown)

	return domain.ViolationReport{
		DailyViolations:  violations,
		LowestBalance:    lowest,
		MaxDrawdownUsed:  maxUsed,
		MaxDrawdownLimit: phase.MaxDrawdown,
		MaxDrawdownHit:   maxHit,
		Clean:            len(violations) == 0 && !maxHit,
	}
}
