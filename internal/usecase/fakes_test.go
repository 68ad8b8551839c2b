package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"propfirm_server/internal/domain"
)

// memStores is an in-memory stand-in for the persistence layer. It enforces
// the same one-active-phase rule the partial unique index enforces in the
// database, so the orchestrator's conflict paths are exercised.
type memStores struct {
	mu sync.Mutex

	accounts map[uuid.UUID]domain.Account
	phases   map[uuid.UUID]domain.Phase
	trades   map[uuid.UUID][]domain.Trade
	anchors  map[uuid.UUID]map[string]domain.DailyAnchor
	breaches map[uuid.UUID][]domain.BreachRecord
	payouts  map[uuid.UUID]domain.Payout

	nextTradeID int64
}

func newMemStores() *memStores {
	return &memStores{
		accounts: make(map[uuid.UUID]domain.Account),
		phases:   make(map[uuid.UUID]domain.Phase),
		trades:   make(map[uuid.UUID][]domain.Trade),
		anchors:  make(map[uuid.UUID]map[string]domain.DailyAnchor),
		breaches: make(map[uuid.UUID][]domain.BreachRecord),
		payouts:  make(map[uuid.UUID]domain.Payout),
	}
}

func (m *memStores) stores() domain.Stores {
	return domain.Stores{
		Accounts: (*memAccounts)(m),
		Phases:   (*memPhases)(m),
		Trades:   (*memTrades)(m),
		Anchors:  (*memAnchors)(m),
		Breaches: (*memBreaches)(m),
		Payouts:  (*memPayouts)(m),
	}
}

type memAccounts memStores

func (m *memAccounts) CreateAccount(_ context.Context, account domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
	return nil
}

func (m *memAccounts) GetAccount(_ context.Context, id uuid.UUID) (domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[id]
	if !ok {
		return domain.Account{}, domain.NewNotFoundError("account", id.String())
	}
	return account, nil
}

func (m *memAccounts) UpdateAccountStatus(_ context.Context, id uuid.UUID, status domain.AccountStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[id]
	if !ok {
		return domain.NewNotFoundError("account", id.String())
	}
	account.Status = status
	m.accounts[id] = account
	return nil
}

func (m *memAccounts) ListAccounts(_ context.Context, limit int) ([]domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		out = append(out, a)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memPhases memStores

func (m *memPhases) CreatePhase(_ context.Context, phase domain.Phase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if phase.Status == domain.PhaseStatusActive {
		for _, existing := range m.phases {
			if existing.AccountID == phase.AccountID && existing.Status == domain.PhaseStatusActive {
				return domain.ErrConcurrencyConflict
			}
		}
	}
	m.phases[phase.ID] = phase
	return nil
}

func (m *memPhases) GetPhase(_ context.Context, id uuid.UUID) (domain.Phase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	phase, ok := m.phases[id]
	if !ok {
		return domain.Phase{}, domain.NewNotFoundError("phase", id.String())
	}
	return phase, nil
}

func (m *memPhases) GetActivePhase(_ context.Context, accountID uuid.UUID) (domain.Phase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, phase := range m.phases {
		if phase.AccountID == accountID && phase.Status == domain.PhaseStatusActive {
			return phase, nil
		}
	}
	return domain.Phase{}, domain.NewNotFoundError("active phase for account", accountID.String())
}

func (m *memPhases) UpdatePhase(_ context.Context, phase domain.Phase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.phases[phase.ID]; !ok {
		return domain.NewNotFoundError("phase", phase.ID.String())
	}
	m.phases[phase.ID] = phase
	return nil
}

func (m *memPhases) ListPhases(_ context.Context, accountID uuid.UUID) ([]domain.Phase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Phase
	for _, phase := range m.phases {
		if phase.AccountID == accountID {
			out = append(out, phase)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	return out, nil
}

func (m *memPhases) ListActivePhases(_ context.Context, limit int) ([]domain.Phase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Phase
	for _, phase := range m.phases {
		if phase.Status == domain.PhaseStatusActive {
			out = append(out, phase)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memTrades memStores

func (m *memTrades) AddTrade(_ context.Context, trade domain.Trade) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextTradeID++
	trade.ID = m.nextTradeID
	m.trades[trade.PhaseID] = append(m.trades[trade.PhaseID], trade)
	return nil
}

func (m *memTrades) ListTrades(_ context.Context, phaseID uuid.UUID, limit int) ([]domain.Trade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	trades := append([]domain.Trade(nil), m.trades[phaseID]...)
	sort.Slice(trades, func(i, j int) bool { return trades[i].EntryTime.Before(trades[j].EntryTime) })
	if limit > 0 && len(trades) > limit {
		trades = trades[:limit]
	}
	return trades, nil
}

func (m *memTrades) CountTradingDays(_ context.Context, phaseID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	days := make(map[string]struct{})
	for _, t := range m.trades[phaseID] {
		days[t.CloseDay()] = struct{}{}
	}
	return len(days), nil
}

func (m *memTrades) NetProfitSince(_ context.Context, phaseID uuid.UUID, since time.Time) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	net := decimal.Zero
	for _, t := range m.trades[phaseID] {
		if !t.ExitTime.Before(since) {
			net = net.Add(t.NetPnL())
		}
	}
	return net, nil
}

func (m *memTrades) PurgeTrades(_ context.Context, phaseID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.trades, phaseID)
	return nil
}

type memAnchors memStores

func (m *memAnchors) EnsureDailyAnchor(_ context.Context, anchor domain.DailyAnchor) (domain.DailyAnchor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byDay, ok := m.anchors[anchor.PhaseID]
	if !ok {
		byDay = make(map[string]domain.DailyAnchor)
		m.anchors[anchor.PhaseID] = byDay
	}
	if existing, ok := byDay[anchor.AnchorDate]; ok {
		return existing, nil
	}
	byDay[anchor.AnchorDate] = anchor
	return anchor, nil
}

func (m *memAnchors) GetDailyAnchor(_ context.Context, phaseID uuid.UUID, day string) (domain.DailyAnchor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if anchor, ok := m.anchors[phaseID][day]; ok {
		return anchor, nil
	}
	return domain.DailyAnchor{}, domain.NewNotFoundError("daily anchor", day)
}

func (m *memAnchors) PurgeAnchors(_ context.Context, phaseID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.anchors, phaseID)
	return nil
}

type memBreaches memStores

func (m *memBreaches) RecordBreach(_ context.Context, breach domain.BreachRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.breaches[breach.PhaseID] = append(m.breaches[breach.PhaseID], breach)
	return nil
}

func (m *memBreaches) ListBreaches(_ context.Context, phaseID uuid.UUID) ([]domain.BreachRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.BreachRecord(nil), m.breaches[phaseID]...), nil
}

func (m *memBreaches) HasBreach(_ context.Context, phaseID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.breaches[phaseID]) > 0, nil
}

func (m *memBreaches) HasBreachOfType(_ context.Context, phaseID uuid.UUID, breachType domain.BreachType) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.breaches[phaseID] {
		if b.Type == breachType {
			return true, nil
		}
	}
	return false, nil
}

type memPayouts memStores

func (m *memPayouts) CreatePayout(_ context.Context, payout domain.Payout) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payouts[payout.ID] = payout
	return nil
}

func (m *memPayouts) GetPayout(_ context.Context, id uuid.UUID) (domain.Payout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	payout, ok := m.payouts[id]
	if !ok {
		return domain.Payout{}, domain.NewNotFoundError("payout", id.String())
	}
	return payout, nil
}

func (m *memPayouts) ListPayouts(_ context.Context, accountID uuid.UUID) ([]domain.Payout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Payout
	for _, p := range m.payouts {
		if p.AccountID == accountID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestedAt.After(out[j].RequestedAt) })
	return out, nil
}

func (m *memPayouts) LastPaidAt(_ context.Context, phaseID uuid.UUID) (*time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var last *time.Time
	for _, p := range m.payouts {
		if p.PhaseID != phaseID || p.Status != domain.PayoutStatusPaid || p.PaidAt == nil {
			continue
		}
		if last == nil || p.PaidAt.After(*last) {
			paidAt := *p.PaidAt
			last = &paidAt
		}
	}
	return last, nil
}

func (m *memPayouts) DeletePendingPayout(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	payout, ok := m.payouts[id]
	if !ok || payout.Status != domain.PayoutStatusPending {
		return domain.NewNotFoundError("pending payout", id.String())
	}
	delete(m.payouts, id)
	return nil
}

// memUnitOfWork runs the function directly against the shared stores. No
// rollback; tests assert on the success paths or on errors raised before any
// write.
type memUnitOfWork struct {
	mem *memStores
}

func (u *memUnitOfWork) Do(_ context.Context, fn func(s domain.Stores) error) error {
	return fn(u.mem.stores())
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

type recordingNotifier struct {
	mu          sync.Mutex
	transitions []domain.TransitionResult
	breaches    []domain.BreachRecord
}

func (n *recordingNotifier) TransitionCompleted(_ context.Context, result domain.TransitionResult) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.transitions = append(n.transitions, result)
	return nil
}

func (n *recordingNotifier) BreachDetected(_ context.Context, breach domain.BreachRecord) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.breaches = append(n.breaches, breach)
	return nil
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func testAccount() domain.Account {
	return domain.Account{
		ID:              uuid.New(),
		UserID:          "user-1",
		Name:            "10K Evaluation",
		StartingBalance: dec("10000"),
		Status:          domain.AccountStatusActive,
		Limits: map[domain.PhaseType]domain.PhaseLimits{
			domain.PhaseTypePhase1: {
				ProfitTargetPercent:  dec("8"),
				DailyDrawdownPercent: dec("5"),
				MaxDrawdownPercent:   dec("10"),
				MinTradingDays:       4,
			},
			domain.PhaseTypePhase2: {
				ProfitTargetPercent:  dec("5"),
				DailyDrawdownPercent: dec("5"),
				MaxDrawdownPercent:   dec("10"),
				MinTradingDays:       4,
			},
			domain.PhaseTypeFunded: {
				DailyDrawdownPercent: dec("5"),
				MaxDrawdownPercent:   dec("10"),
			},
		},
	}
}
