package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PhaseType string

const (
	PhaseTypePhase1 PhaseType = "phase_1"
	PhaseTypePhase2 PhaseType = "phase_2"
	PhaseTypeFunded PhaseType = "funded"
)

// Valid reports whether t is one of the closed set of phase types.
func (t PhaseType) Valid() bool {
	switch t {
	case PhaseTypePhase1, PhaseTypePhase2, PhaseTypeFunded:
		return true
	}
	return false
}

// Successor returns the next phase type in the evaluation program, or false
// when the phase is terminal (funded has no successor).
func (t PhaseType) Successor() (PhaseType, bool) {
	switch t {
	case PhaseTypePhase1:
		return PhaseTypePhase2, true
	case PhaseTypePhase2:
		return PhaseTypeFunded, true
	default:
		return "", false
	}
}

type PhaseStatus string

const (
	PhaseStatusActive PhaseStatus = "active"
	PhaseStatusPassed PhaseStatus = "passed"
	PhaseStatusFailed PhaseStatus = "failed"
)

// Phase is one stage of an account's evaluation program. At most one phase per
// account may be active at any instant; the storage layer enforces this with a
// partial unique index and the orchestrator re-checks it inside its transaction.
type Phase struct {
	ID               uuid.UUID
	AccountID        uuid.UUID
	Type             PhaseType
	Status           PhaseStatus
	StartingBalance  decimal.Decimal
	CurrentBalance   decimal.Decimal
	CurrentEquity    decimal.Decimal
	HighWaterMark    decimal.Decimal
	ProfitTarget     decimal.Decimal
	DailyDrawdown    decimal.Decimal
	MaxDrawdown      decimal.Decimal
	MinTradingDays   int
	MaxTradingDays   int
	TrailingDrawdown bool
	StartedAt        time.Time
	EndedAt          *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

var percentBase = decimal.NewFromInt(100)

// NewPhase builds an active phase with its absolute limit amounts computed
// from the account configuration at creation time. The amounts are never
// recomputed afterwards, even if the configuration percentages change.
func NewPhase(account Account, t PhaseType, startingBalance decimal.Decimal, now time.Time) Phase {
	limits := account.LimitsFor(t)
	return Phase{
		ID:               uuid.New(),
		AccountID:        account.ID,
		Type:             t,
		Status:           PhaseStatusActive,
		StartingBalance:  startingBalance,
		CurrentBalance:   startingBalance,
		CurrentEquity:    startingBalance,
		HighWaterMark:    startingBalance,
		ProfitTarget:     startingBalance.Mul(limits.ProfitTargetPercent).Div(percentBase),
		DailyDrawdown:    startingBalance.Mul(limits.DailyDrawdownPercent).Div(percentBase),
		MaxDrawdown:      startingBalance.Mul(limits.MaxDrawdownPercent).Div(percentBase),
		MinTradingDays:   limits.MinTradingDays,
		MaxTradingDays:   limits.MaxTradingDays,
		TrailingDrawdown: account.TrailingDrawdown,
		StartedAt:        now,
	}
}

// NetProfit is the phase's realized profit since its start (or last reset).
func (p Phase) NetProfit() decimal.Decimal {
	return p.CurrentBalance.Sub(p.StartingBalance)
}
