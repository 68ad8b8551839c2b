package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AccountStatus string

const (
	AccountStatusActive AccountStatus = "active"
	AccountStatusFunded AccountStatus = "funded"
	AccountStatusFailed AccountStatus = "failed"
	AccountStatusPassed AccountStatus = "passed"
)

// PhaseLimits is the per-phase-type slice of an account's evaluation program
// configuration. Percentages are relative to the phase starting balance and are
// converted into absolute currency amounts once, when a phase is created.
type PhaseLimits struct {
	ProfitTargetPercent  decimal.Decimal
	DailyDrawdownPercent decimal.Decimal
	MaxDrawdownPercent   decimal.Decimal
	MinTradingDays       int
	MaxTradingDays       int
}

// Account is the parent of the phase graph. Immutable once created except for
// Status and Archived.
type Account struct {
	ID               uuid.UUID
	UserID           string
	Name             string
	StartingBalance  decimal.Decimal
	Limits           map[PhaseType]PhaseLimits
	TrailingDrawdown bool
	Status           AccountStatus
	Archived         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// LimitsFor returns the configured limits for a phase type. Funded phases fall
// back to zeroed limits (no profit target) when the account has no explicit
// funded configuration.
func (a Account) LimitsFor(t PhaseType) PhaseLimits {
	if limits, ok := a.Limits[t]; ok {
		return limits
	}
	return PhaseLimits{}
}
