package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BreachType string

const (
	BreachTypeDailyDrawdown BreachType = "daily_drawdown"
	BreachTypeMaxDrawdown   BreachType = "max_drawdown"
)

// BreachRecord is an append-only audit entry for a drawdown limit violation.
// A breach is a business fact, not an error: it is recorded exactly once per
// breach event and never updated or deleted.
type BreachRecord struct {
	ID           int64
	PhaseID      uuid.UUID
	Type         BreachType
	BreachAmount decimal.Decimal
	EquityAtTime decimal.Decimal
	AccountSize  decimal.Decimal
	OccurredAt   time.Time
	Note         string
	CreatedAt    time.Time
}
