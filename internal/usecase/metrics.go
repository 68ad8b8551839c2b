package usecase

import (
	"sort"

	"github.com/shopspring/decimal"

	"propfirm_server/internal/domain"
)

// profitFactorCap is reported when a phase has winning trades and no losing
// trades; the true ratio is unbounded and a capped sentinel keeps the value
// representable downstream.
var profitFactorCap = decimal.NewFromInt(9999)

type logicalTrade struct {
	executionID string
	netPnL      decimal.Decimal
	entryTime   int64
}

// EvaluateRiskMetrics folds a phase's trade history into ledger statistics.
// Trades sharing an execution id collapse into one logical trade first, so
// partial closes count once for win-rate purposes. Order of the input is
// irrelevant except for the loss streak, which is derived after sorting
// logical trades by entry time.
func EvaluateRiskMetrics(trades []domain.Trade) domain.RiskMetrics {
	if len(trades) == 0 {
		return domain.RiskMetrics{
			WinRate:      decimal.Zero,
			ProfitFactor: decimal.Zero,
			GrossProfit:  decimal.Zero,
			GrossLoss:    decimal.Zero,
			NetProfit:    decimal.Zero,
			AverageWin:   decimal.Zero,
			AverageLoss:  decimal.Zero,
		}
	}

	logical := groupByExecution(trades)
	sort.Slice(logical, func(i, j int) bool {
		return logical[i].entryTime < logical[j].entryTime
	})

	var wins, losses, breakEven int
	grossProfit := decimal.Zero
	grossLoss := decimal.Zero
	net := decimal.Zero

	for _, lt := range logical {
		net = net.Add(lt.netPnL)
		switch lt.netPnL.Sign() {
		case 1:
			wins++
			grossProfit = grossProfit.Add(lt.netPnL)
		case -1:
			losses++
			grossLoss = grossLoss.Add(lt.netPnL.Abs())
		default:
			breakEven++
		}
	}

	winRate := decimal.Zero
	if wins+losses > 0 {
		winRate = decimal.NewFromInt(int64(wins)).Div(decimal.NewFromInt(int64(wins + losses)))
	}

	profitFactor := decimal.Zero
	switch {
	case grossLoss.IsPositive():
		profitFactor = grossProfit.Div(grossLoss)
	case wins > 0:
		profitFactor = profitFactorCap
	}

	avgWin := decimal.Zero
	if wins > 0 {
		avgWin = grossProfit.Div(decimal.NewFromInt(int64(wins)))
	}
	avgLoss := decimal.Zero
	if losses > 0 {
		avgLoss = grossLoss.Div(decimal.NewFromInt(int64(losses)))
	}

	streak := 0
	for i := len(logical) - 1; i >= 0; i-- {
		if logical[i].netPnL.Sign() >= 0 {
			break
		}
		streak++
	}

	return domain.RiskMetrics{
		TotalTrades:       len(logical),
		WinningTrades:     wins,
		LosingTrades:      losses,
		BreakEvenTrades:   breakEven,
		WinRate:           winRate,
		ProfitFactor:      profitFactor,
		GrossProfit:       grossProfit,
		GrossLoss:         grossLoss,
		NetProfit:         net,
		AverageWin:        avgWin,
		AverageLoss:       avgLoss,
		CurrentLossStreak: streak,
	}
}

func groupByExecution(trades []domain.Trade) []logicalTrade {
	byExec := make(map[string]int, len(trades))
	out := make([]logicalTrade, 0, len(trades))

	for _, t := range trades {
		entry := t.EntryTime.UnixNano()

		// Trades without an execution id stand alone.
		if t.ExecutionID == "" {
			out = append(out, logicalTrade{netPnL: t.NetPnL(), entryTime: entry})
			continue
		}

		if idx, ok := byExec[t.ExecutionID]; ok {
			out[idx].netPnL = out[idx].netPnL.Add(t.NetPnL())
			if entry < out[idx].entryTime {
				out[idx].entryTime = entry
			}
			continue
		}

		byExec[t.ExecutionID] = len(out)
		out = append(out, logicalTrade{executionID: t.ExecutionID, netPnL: t.NetPnL(), entryTime: entry})
	}

	return out
}
