package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TradeSide string

const (
	TradeSideLong  TradeSide = "long"
	TradeSideShort TradeSide = "short"
)

// Trade is a closed execution belonging to a phase. Partial closes of the same
// logical position share an ExecutionID and are aggregated into one trade for
// win-rate purposes.
type Trade struct {
	ID          int64
	PhaseID     uuid.UUID
	ExecutionID string
	Symbol      string
	Side        TradeSide
	Quantity    decimal.Decimal
	EntryPrice  decimal.Decimal
	ExitPrice   decimal.Decimal
	EntryTime   time.Time
	ExitTime    time.Time
	PnL         decimal.Decimal
	Commission  decimal.Decimal
	Fees        decimal.Decimal
	RawPayload  []byte
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NetPnL is gross P&L plus commission and fees. Commissions and fees are
// negative amounts as exported by the trading platform.
func (t Trade) NetPnL() decimal.Decimal {
	return t.PnL.Add(t.Commission).Add(t.Fees)
}

// CloseDay is the UTC calendar day the trade closed on, used for daily-anchor
// grouping.
func (t Trade) CloseDay() string {
	return t.ExitTime.UTC().Format("2006-01-02")
}

// DailyAnchor captures a phase's opening balance for one trading day. Created
// lazily on the first trade of the day and never mutated afterwards; it is the
// reset baseline for daily-drawdown calculation.
type DailyAnchor struct {
	ID             int64
	PhaseID        uuid.UUID
	AnchorDate     string
	OpeningBalance decimal.Decimal
	CreatedAt      time.Time
}
