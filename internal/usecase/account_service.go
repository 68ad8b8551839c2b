package usecase

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"propfirm_server/internal/domain"
)

// AccountService is the thin account-management surface the engine consumes:
// account creation seeds the first evaluation phase atomically, reads hand the
// phase graph to the transport layer.
type AccountService struct {
	uow    domain.UnitOfWork
	stores domain.Stores
	clock  domain.Clock
}

func NewAccountService(uow domain.UnitOfWork, stores domain.Stores, clock domain.Clock) (*AccountService, error) {
	if uow == nil {
		return nil, errors.New("unit of work required")
	}
	if stores.Accounts == nil || stores.Phases == nil {
		return nil, errors.New("stores required")
	}
	if clock == nil {
		return nil, errors.New("clock required")
	}
	return &AccountService{uow: uow, stores: stores, clock: clock}, nil
}

// validateLimits rejects configurations that would seed a later phase with
// zeroed limits: every phase type the account can reach must carry positive
// drawdown percentages, and the evaluation phases a positive profit target.
// Funded is the one phase type with no target.
func validateLimits(limits map[domain.PhaseType]domain.PhaseLimits) error {
	for _, t := range []domain.PhaseType{domain.PhaseTypePhase1, domain.PhaseTypePhase2, domain.PhaseTypeFunded} {
		l, ok := limits[t]
		if !ok {
			return domain.NewValidationError("%s limit configuration required", t)
		}
		if !l.DailyDrawdownPercent.IsPositive() || !l.MaxDrawdownPercent.IsPositive() {
			return domain.NewValidationError("%s drawdown percentages must be positive", t)
		}
		if t != domain.PhaseTypeFunded && !l.ProfitTargetPercent.IsPositive() {
			return domain.NewValidationError("%s profit target percent must be positive", t)
		}
	}
	return nil
}

type CreateAccountInput struct {
	UserID           string
	Name             string
	StartingBalance  decimal.Decimal
	Limits           map[domain.PhaseType]domain.PhaseLimits
	TrailingDrawdown bool
}

func (s *AccountService) CreateAccount(ctx context.Context, in CreateAccountInput) (domain.Account, domain.Phase, error) {
	if in.UserID == "" {
		return domain.Account{}, domain.Phase{}, domain.NewValidationError("user id required")
	}
	if !in.StartingBalance.IsPositive() {
		return domain.Account{}, domain.Phase{}, domain.NewValidationError("starting balance must be positive")
	}
	if err := validateLimits(in.Limits); err != nil {
		return domain.Account{}, domain.Phase{}, err
	}

	now := s.clock.Now().UTC()
	account := domain.Account{
		ID:               uuid.New(),
		UserID:           in.UserID,
		Name:             in.Name,
		StartingBalance:  in.StartingBalance,
		Limits:           in.Limits,
		TrailingDrawdown: in.TrailingDrawdown,
		Status:           domain.AccountStatusActive,
	}
	phase := domain.NewPhase(account, domain.PhaseTypePhase1, in.StartingBalance, now)

	err := s.uow.Do(ctx, func(st domain.Stores) error {
		if err := st.Accounts.CreateAccount(ctx, account); err != nil {
			return err
		}
		return st.Phases.CreatePhase(ctx, phase)
	})
	if err != nil {
		return domain.Account{}, domain.Phase{}, err
	}

	return account, phase, nil
}

func (s *AccountService) GetAccount(ctx context.Context, id uuid.UUID) (domain.Account, []domain.Phase, error) {
	account, err := s.stores.Accounts.GetAccount(ctx, id)
	if err != nil {
		return domain.Account{}, nil, err
	}

	phases, err := s.stores.Phases.ListPhases(ctx, id)
	if err != nil {
		return domain.Account{}, nil, err
	}

	return account, phases, nil
}

func (s *AccountService) ListAccounts(ctx context.Context, limit int) ([]domain.Account, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.stores.Accounts.ListAccounts(ctx, limit)
}

func (s *AccountService) ListBreaches(ctx context.Context, phaseID uuid.UUID) ([]domain.BreachRecord, error) {
	if _, err := s.stores.Phases.GetPhase(ctx, phaseID); err != nil {
		return nil, err
	}
	return s.stores.Breaches.ListBreaches(ctx, phaseID)
}
