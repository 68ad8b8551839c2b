package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PayoutStatus string

const (
	PayoutStatusPending  PayoutStatus = "pending"
	PayoutStatusApproved PayoutStatus = "approved"
	PayoutStatusPaid     PayoutStatus = "paid"
	PayoutStatusRejected PayoutStatus = "rejected"
)

// Payout is a withdrawal request against a funded phase. Deletable only while
// pending.
type Payout struct {
	ID          uuid.UUID
	AccountID   uuid.UUID
	PhaseID     uuid.UUID
	Amount      decimal.Decimal
	Status      PayoutStatus
	RequestedAt time.Time
	PaidAt      *time.Time
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PayoutPolicy holds the firm-level payout preconditions for funded accounts.
type PayoutPolicy struct {
	MinDaysSinceFunding   int
	MinDaysBetweenPayouts int
	ProfitSplitPercent    decimal.Decimal
	MinProfit             decimal.Decimal
}

// PayoutEligibility is the complete verdict for a funded phase. Blockers
// accumulate one entry per failed precondition so the result is fully
// user-explainable; eligibility holds iff the list is empty.
type PayoutEligibility struct {
	IsEligible               bool
	DaysSinceFunded          int
	DaysSinceLastPayout      int
	NetProfitSinceLastPayout decimal.Decimal
	ProfitSplitAmount        decimal.Decimal
	Blockers                 []string
}
