package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"propfirm_server/internal/domain"
)

// PayoutService turns eligibility verdicts into payout ledger entries. The
// request path re-runs the eligibility evaluator inside the transaction so a
// breach landing between check and insert cannot slip a payout through.
type PayoutService struct {
	uow    domain.UnitOfWork
	stores domain.Stores
	clock  domain.Clock
	policy domain.PayoutPolicy
}

func NewPayoutService(uow domain.UnitOfWork, stores domain.Stores, clock domain.Clock, policy domain.PayoutPolicy) (*PayoutService, error) {
	if uow == nil {
		return nil, errors.New("unit of work required")
	}
	if stores.Payouts == nil || stores.Phases == nil {
		return nil, errors.New("stores required")
	}
	if clock == nil {
		return nil, errors.New("clock required")
	}
	return &PayoutService{uow: uow, stores: stores, clock: clock, policy: policy}, nil
}

func (s *PayoutService) RequestPayout(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, notes string) (domain.Payout, error) {
	if !amount.IsPositive() {
		return domain.Payout{}, domain.NewValidationError("payout amount must be positive")
	}

	var payout domain.Payout

	err := s.uow.Do(ctx, func(st domain.Stores) error {
		if _, err := st.Accounts.GetAccount(ctx, accountID); err != nil {
			return err
		}

		phase, err := activePhase(ctx, st, accountID)
		if err != nil {
			return err
		}
		if phase.Type != domain.PhaseTypeFunded {
			return &domain.PreconditionError{Msg: "payouts require a funded phase"}
		}

		now := s.clock.Now().UTC()
		eligibility, err := payoutEligibilityFor(ctx, st, phase, s.policy, now)
		if err != nil {
			return err
		}
		if !eligibility.IsEligible {
			return &domain.PreconditionError{Msg: "not eligible for payout: " + strings.Join(eligibility.Blockers, "; ")}
		}
		if amount.GreaterThan(eligibility.ProfitSplitAmount) {
			return domain.NewValidationError("amount %s exceeds profit split %s",
				amount.StringFixed(2), eligibility.ProfitSplitAmount.StringFixed(2))
		}

		payout = domain.Payout{
			ID:          uuid.New(),
			AccountID:   accountID,
			PhaseID:     phase.ID,
			Amount:      amount,
			Status:      domain.PayoutStatusPending,
			RequestedAt: now,
			Notes:       notes,
		}
		return st.Payouts.CreatePayout(ctx, payout)
	})
	if err != nil {
		return domain.Payout{}, err
	}

	return payout, nil
}

// CancelPayout deletes a payout while it is still pending.
func (s *PayoutService) CancelPayout(ctx context.Context, payoutID uuid.UUID) error {
	return s.uow.Do(ctx, func(st domain.Stores) error {
		payout, err := st.Payouts.GetPayout(ctx, payoutID)
		if err != nil {
			return err
		}
		if payout.Status != domain.PayoutStatusPending {
			return &domain.PreconditionError{Msg: fmt.Sprintf("payout is %s, only pending payouts can be deleted", payout.Status)}
		}
		return st.Payouts.DeletePendingPayout(ctx, payoutID)
	})
}

func (s *PayoutService) ListPayouts(ctx context.Context, accountID uuid.UUID) ([]domain.Payout, error) {
	if _, err := s.stores.Accounts.GetAccount(ctx, accountID); err != nil {
		return nil, err
	}
	return s.stores.Payouts.ListPayouts(ctx, accountID)
}
