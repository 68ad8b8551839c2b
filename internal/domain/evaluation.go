package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RiskMetrics is the ledger aggregation over a phase's trade history. Trades
// sharing an execution id are folded into one logical trade before counting.
type RiskMetrics struct {
	TotalTrades       int
	WinningTrades     int
	LosingTrades      int
	BreakEvenTrades   int
	WinRate           decimal.Decimal
	ProfitFactor      decimal.Decimal
	GrossProfit       decimal.Decimal
	GrossLoss         decimal.Decimal
	NetProfit         decimal.Decimal
	AverageWin        decimal.Decimal
	AverageLoss       decimal.Decimal
	CurrentLossStreak int
}

// DrawdownInput carries the phase limit snapshot plus the live figures the
// drawdown calculator works from. Limit amounts are absolute currency,
// pre-computed at phase creation time.
type DrawdownInput struct {
	DailyLimit      decimal.Decimal
	MaxLimit        decimal.Decimal
	StartingBalance decimal.Decimal
	Trailing        bool
	CurrentEquity   decimal.Decimal
	AnchorBalance   decimal.Decimal
	HighWaterMark   decimal.Decimal
}

// DrawdownResult reports remaining headroom against both limits. BreachType is
// empty when IsBreached is false; when both limits are simultaneously breached
// the daily breach is reported, as it is the tighter constraint.
type DrawdownResult struct {
	DailyDrawdownRemaining decimal.Decimal
	MaxDrawdownRemaining   decimal.Decimal
	IsBreached             bool
	BreachType             BreachType
	HighestEquity          decimal.Decimal
}

// ProgressResult is the profit-target readiness verdict for a phase.
type ProgressResult struct {
	ProfitTarget   decimal.Decimal
	NetProfit      decimal.Decimal
	ProfitProgress decimal.Decimal
	DaysTraded     int
	ReadyToAdvance bool
	NextPhaseType  PhaseType
}

// DailyViolation is one flagged day from the historical daily-drawdown scan.
type DailyViolation struct {
	Day        string
	NetPnL     decimal.Decimal
	DayLoss    decimal.Decimal
	Limit      decimal.Decimal
	ExceededBy decimal.Decimal
	TradeCount int
}

// ViolationReport is the outcome of replaying a phase's closed-trade history
// against its daily and maximum drawdown limits.
type ViolationReport struct {
	DailyViolations  []DailyViolation
	LowestBalance    decimal.Decimal
	MaxDrawdownUsed  decimal.Decimal
	MaxDrawdownLimit decimal.Decimal
	MaxDrawdownHit   bool
	Clean            bool
}

// TradeEvaluation reports the outcome of recording one trade: the updated
// phase, the drawdown verdict it produced, and whether the trade tripped a
// limit and failed the phase.
type TradeEvaluation struct {
	Phase       Phase
	Drawdown    DrawdownResult
	Breach      *BreachRecord
	PhaseFailed bool
}

type TransitionAction string

const (
	TransitionAdvance TransitionAction = "advance"
	TransitionFail    TransitionAction = "fail"
	TransitionReset   TransitionAction = "reset"
	TransitionCreate  TransitionAction = "create"
)

// Valid reports whether a is one of the closed set of transition actions.
func (a TransitionAction) Valid() bool {
	switch a {
	case TransitionAdvance, TransitionFail, TransitionReset, TransitionCreate:
		return true
	}
	return false
}

// TransitionRequest describes one orchestrator invocation. PhaseType is
// required for create; CarryEquity makes advance seed the successor with the
// passed phase's equity instead of the account starting balance.
type TransitionRequest struct {
	Action      TransitionAction
	PhaseType   PhaseType
	CarryEquity bool
	Note        string
}

// TransitionResult reports a committed transition.
type TransitionResult struct {
	Action        TransitionAction
	AccountID     string
	AccountStatus AccountStatus
	EndedPhase    *Phase
	ActivePhase   *Phase
	OccurredAt    time.Time
}
