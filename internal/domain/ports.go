package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AccountRepository interface {
	CreateAccount(ctx context.Context, account Account) error
	GetAccount(ctx context.Context, id uuid.UUID) (Account, error)
	UpdateAccountStatus(ctx context.Context, id uuid.UUID, status AccountStatus) error
	ListAccounts(ctx context.Context, limit int) ([]Account, error)
}

type PhaseRepository interface {
	CreatePhase(ctx context.Context, phase Phase) error
	GetPhase(ctx context.Context, id uuid.UUID) (Phase, error)
	// GetActivePhase returns a NotFoundError when the account has no phase in
	// status active.
	GetActivePhase(ctx context.Context, accountID uuid.UUID) (Phase, error)
	UpdatePhase(ctx context.Context, phase Phase) error
	ListPhases(ctx context.Context, accountID uuid.UUID) ([]Phase, error)
	ListActivePhases(ctx context.Context, limit int) ([]Phase, error)
}

type TradeRepository interface {
	AddTrade(ctx context.Context, trade Trade) error
	ListTrades(ctx context.Context, phaseID uuid.UUID, limit int) ([]Trade, error)
	// CountTradingDays counts distinct close days with at least one trade.
	CountTradingDays(ctx context.Context, phaseID uuid.UUID) (int, error)
	NetProfitSince(ctx context.Context, phaseID uuid.UUID, since time.Time) (decimal.Decimal, error)
	PurgeTrades(ctx context.Context, phaseID uuid.UUID) error
}

type AnchorRepository interface {
	// EnsureDailyAnchor creates the anchor for (phase, day) if absent and
	// returns the stored row either way. Concurrent callers converge on a
	// single row (first-writer-wins).
	EnsureDailyAnchor(ctx context.Context, anchor DailyAnchor) (DailyAnchor, error)
	GetDailyAnchor(ctx context.Context, phaseID uuid.UUID, day string) (DailyAnchor, error)
	PurgeAnchors(ctx context.Context, phaseID uuid.UUID) error
}

type BreachRepository interface {
	RecordBreach(ctx context.Context, breach BreachRecord) error
	ListBreaches(ctx context.Context, phaseID uuid.UUID) ([]BreachRecord, error)
	HasBreach(ctx context.Context, phaseID uuid.UUID) (bool, error)
	HasBreachOfType(ctx context.Context, phaseID uuid.UUID, breachType BreachType) (bool, error)
}

type PayoutRepository interface {
	CreatePayout(ctx context.Context, payout Payout) error
	GetPayout(ctx context.Context, id uuid.UUID) (Payout, error)
	ListPayouts(ctx context.Context, accountID uuid.UUID) ([]Payout, error)
	// LastPaidAt returns the latest paid-at timestamp for the phase, or nil
	// when no payout has been paid yet.
	LastPaidAt(ctx context.Context, phaseID uuid.UUID) (*time.Time, error)
	DeletePendingPayout(ctx context.Context, id uuid.UUID) error
}

// Stores bundles the repositories participating in one transaction.
type Stores struct {
	Accounts AccountRepository
	Phases   PhaseRepository
	Trades   TradeRepository
	Anchors  AnchorRepository
	Breaches BreachRepository
	Payouts  PayoutRepository
}

// UnitOfWork runs fn against transaction-scoped stores. Either every write in
// fn commits or none does; a unique-index violation inside fn surfaces as
// ErrConcurrencyConflict.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(s Stores) error) error
}

// Clock abstracts wall time for day-boundary detection and day-count
// arithmetic.
type Clock interface {
	Now() time.Time
}

// Notifier is informed of transition outcomes and detected breaches so the
// alerting collaborator can enqueue user-facing messages. Best-effort: callers
// log failures and move on.
type Notifier interface {
	TransitionCompleted(ctx context.Context, result TransitionResult) error
	BreachDetected(ctx context.Context, breach BreachRecord) error
}
