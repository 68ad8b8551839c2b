package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"propfirm_server/internal/domain"
	applogger "propfirm_server/internal/infra/logger"
)

// TransitionService is the phase transition orchestrator. Every action runs as
// one unit of work against the account's phase graph; the one-active-phase
// invariant is re-checked inside the transaction and backed by a partial
// unique index, so a losing concurrent transition surfaces as
// ErrConcurrencyConflict instead of a second active phase.
type TransitionService struct {
	uow      domain.UnitOfWork
	clock    domain.Clock
	notifier domain.Notifier
}

func NewTransitionService(uow domain.UnitOfWork, clock domain.Clock, notifier domain.Notifier) (*TransitionService, error) {
	if uow == nil {
		return nil, errors.New("unit of work required")
	}
	if clock == nil {
		return nil, errors.New("clock required")
	}
	return &TransitionService{
		uow:      uow,
		clock:    clock,
		notifier: notifier,
	}, nil
}

func (s *TransitionService) Transition(ctx context.Context, accountID uuid.UUID, req domain.TransitionRequest) (domain.TransitionResult, error) {
	if !req.Action.Valid() {
		return domain.TransitionResult{}, domain.NewValidationError("unknown transition action %q", req.Action)
	}
	if req.Action == domain.TransitionCreate && !req.PhaseType.Valid() {
		return domain.TransitionResult{}, domain.NewValidationError("phase type required for create")
	}

	var result domain.TransitionResult

	err := s.uow.Do(ctx, func(st domain.Stores) error {
		account, err := st.Accounts.GetAccount(ctx, accountID)
		if err != nil {
			return err
		}

		now := s.clock.Now().UTC()

		switch req.Action {
		case domain.TransitionAdvance:
			result, err = s.advance(ctx, st, account, req, now)
		case domain.TransitionFail:
			result, err = s.fail(ctx, st, account, now)
		case domain.TransitionReset:
			result, err = s.reset(ctx, st, account, now)
		case domain.TransitionCreate:
			result, err = s.create(ctx, st, account, req, now)
		}
		return err
	})
	if err != nil {
		return domain.TransitionResult{}, err
	}

	if s.notifier != nil {
		if err := s.notifier.TransitionCompleted(ctx, result); err != nil {
			applogger.Logger.Warn().Err(err).
				Str("account_id", result.AccountID).
				Str("action", string(result.Action)).
				Msg("transition notification failed")
		}
	}

	return result, nil
}

func (s *TransitionService) advance(ctx context.Context, st domain.Stores, account domain.Account, req domain.TransitionRequest, now time.Time) (domain.TransitionResult, error) {
	phase, err := activePhase(ctx, st, account.ID)
	if err != nil {
		return domain.TransitionResult{}, err
	}

	successorType, ok := phase.Type.Successor()
	if !ok {
		return domain.TransitionResult{}, domain.ErrNoSuccessorPhase
	}

	ended := now
	phase.Status = domain.PhaseStatusPassed
	phase.EndedAt = &ended
	if err := st.Phases.UpdatePhase(ctx, phase); err != nil {
		return domain.TransitionResult{}, err
	}

	if err := assertNoActivePhase(ctx, st, account.ID); err != nil {
		return domain.TransitionResult{}, err
	}

	// The successor starts from the account's configured size; carried-forward
	// equity is opt-in.
	startingBalance := account.StartingBalance
	if req.CarryEquity {
		startingBalance = phase.CurrentEquity
	}

	successor := domain.NewPhase(account, successorType, startingBalance, now)
	if err := st.Phases.CreatePhase(ctx, successor); err != nil {
		return domain.TransitionResult{}, err
	}

	status := account.Status
	if successorType == domain.PhaseTypeFunded {
		status = domain.AccountStatusFunded
		if err := st.Accounts.UpdateAccountStatus(ctx, account.ID, status); err != nil {
			return domain.TransitionResult{}, err
		}
	}

	return domain.TransitionResult{
		Action:        domain.TransitionAdvance,
		AccountID:     account.ID.String(),
		AccountStatus: status,
		EndedPhase:    &phase,
		ActivePhase:   &successor,
		OccurredAt:    now,
	}, nil
}

func (s *TransitionService) fail(ctx context.Context, st domain.Stores, account domain.Account, now time.Time) (domain.TransitionResult, error) {
	phase, err := activePhase(ctx, st, account.ID)
	if err != nil {
		return domain.TransitionResult{}, err
	}

	if err := markPhaseFailed(ctx, st, account.ID, &phase, now); err != nil {
		return domain.TransitionResult{}, err
	}

	return domain.TransitionResult{
		Action:        domain.TransitionFail,
		AccountID:     account.ID.String(),
		AccountStatus: domain.AccountStatusFailed,
		EndedPhase:    &phase,
		OccurredAt:    now,
	}, nil
}

func (s *TransitionService) reset(ctx context.Context, st domain.Stores, account domain.Account, now time.Time) (domain.TransitionResult, error) {
	phase, err := activePhase(ctx, st, account.ID)
	if err != nil {
		return domain.TransitionResult{}, err
	}

	phase.CurrentBalance = phase.StartingBalance
	phase.CurrentEquity = phase.StartingBalance
	phase.HighWaterMark = phase.StartingBalance
	phase.EndedAt = nil
	if err := st.Phases.UpdatePhase(ctx, phase); err != nil {
		return domain.TransitionResult{}, err
	}

	// Purge scope is the phase, not the whole account: a reset of one
	// evaluation cycle must not touch history of earlier phases.
	if err := st.Trades.PurgeTrades(ctx, phase.ID); err != nil {
		return domain.TransitionResult{}, err
	}
	if err := st.Anchors.PurgeAnchors(ctx, phase.ID); err != nil {
		return domain.TransitionResult{}, err
	}

	return domain.TransitionResult{
		Action:        domain.TransitionReset,
		AccountID:     account.ID.String(),
		AccountStatus: account.Status,
		ActivePhase:   &phase,
		OccurredAt:    now,
	}, nil
}

func (s *TransitionService) create(ctx context.Context, st domain.Stores, account domain.Account, req domain.TransitionRequest, now time.Time) (domain.TransitionResult, error) {
	if err := assertNoActivePhase(ctx, st, account.ID); err != nil {
		if errors.Is(err, domain.ErrConcurrencyConflict) {
			return domain.TransitionResult{}, domain.ErrActivePhaseExists
		}
		return domain.TransitionResult{}, err
	}

	phase := domain.NewPhase(account, req.PhaseType, account.StartingBalance, now)
	if err := st.Phases.CreatePhase(ctx, phase); err != nil {
		return domain.TransitionResult{}, err
	}

	// A fresh cycle reactivates the account; creating directly into funded
	// keeps the funded status.
	status := domain.AccountStatusActive
	if req.PhaseType == domain.PhaseTypeFunded {
		status = domain.AccountStatusFunded
	}
	if status != account.Status {
		if err := st.Accounts.UpdateAccountStatus(ctx, account.ID, status); err != nil {
			return domain.TransitionResult{}, err
		}
	}

	return domain.TransitionResult{
		Action:        domain.TransitionCreate,
		AccountID:     account.ID.String(),
		AccountStatus: status,
		ActivePhase:   &phase,
		OccurredAt:    now,
	}, nil
}

// activePhase maps a missing active row to the precondition error the caller
// expects.
func activePhase(ctx context.Context, st domain.Stores, accountID uuid.UUID) (domain.Phase, error) {
	phase, err := st.Phases.GetActivePhase(ctx, accountID)
	if err != nil {
		if domain.IsNotFound(err) {
			return domain.Phase{}, domain.ErrNoActivePhase
		}
		return domain.Phase{}, err
	}
	return phase, nil
}

// assertNoActivePhase is the in-transaction invariant re-check that runs
// before inserting a new active row.
func assertNoActivePhase(ctx context.Context, st domain.Stores, accountID uuid.UUID) error {
	_, err := st.Phases.GetActivePhase(ctx, accountID)
	if err == nil {
		return domain.ErrConcurrencyConflict
	}
	if domain.IsNotFound(err) {
		return nil
	}
	return err
}

// markPhaseFailed terminates the active phase and mirrors the failure onto the
// parent account. Shared between the explicit fail action and breach-triggered
// automatic failure.
func markPhaseFailed(ctx context.Context, st domain.Stores, accountID uuid.UUID, phase *domain.Phase, now time.Time) error {
	ended := now
	phase.Status = domain.PhaseStatusFailed
	phase.EndedAt = &ended
	if err := st.Phases.UpdatePhase(ctx, *phase); err != nil {
		return err
	}
	return st.Accounts.UpdateAccountStatus(ctx, accountID, domain.AccountStatusFailed)
}
