package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"propfirm_server/internal/domain"
	applogger "propfirm_server/internal/infra/logger"
)

// EvaluationService feeds trades into the engine and exposes the read-only
// evaluators. Reads go against the plain stores; the trade write path and the
// breach sweep run through the unit of work so phase mutation, anchor
// creation, breach audit, and automatic failure commit together.
type EvaluationService struct {
	uow      domain.UnitOfWork
	stores   domain.Stores
	clock    domain.Clock
	notifier domain.Notifier
	policy   domain.PayoutPolicy
}

func NewEvaluationService(uow domain.UnitOfWork, stores domain.Stores, clock domain.Clock, notifier domain.Notifier, policy domain.PayoutPolicy) (*EvaluationService, error) {
	if uow == nil {
		return nil, errors.New("unit of work required")
	}
	if stores.Phases == nil || stores.Trades == nil {
		return nil, errors.New("stores required")
	}
	if clock == nil {
		return nil, errors.New("clock required")
	}
	return &EvaluationService{
		uow:      uow,
		stores:   stores,
		clock:    clock,
		notifier: notifier,
		policy:   policy,
	}, nil
}

// RecordTrade persists a closed trade against an active phase and runs the
// evaluation pipeline: lazy daily anchor, balance/equity update, high-water
// ratchet, drawdown check, and — on breach — a single audit record plus
// automatic phase failure, all in one transaction.
func (s *EvaluationService) RecordTrade(ctx context.Context, phaseID uuid.UUID, trade domain.Trade) (domain.TradeEvaluation, error) {
	if trade.ExitTime.IsZero() {
		return domain.TradeEvaluation{}, domain.NewValidationError("trade exit time required")
	}
	if trade.Symbol == "" {
		return domain.TradeEvaluation{}, domain.NewValidationError("trade symbol required")
	}

	var eval domain.TradeEvaluation

	err := s.uow.Do(ctx, func(st domain.Stores) error {
		phase, err := st.Phases.GetPhase(ctx, phaseID)
		if err != nil {
			return err
		}
		if phase.Status != domain.PhaseStatusActive {
			return &domain.PreconditionError{Msg: fmt.Sprintf("phase is %s, not active", phase.Status)}
		}

		trade.PhaseID = phase.ID
		if err := st.Trades.AddTrade(ctx, trade); err != nil {
			return err
		}

		// The anchor captures the balance as it stood before the day's first
		// trade; EnsureDailyAnchor keeps the first writer's row.
		anchor, err := st.Anchors.EnsureDailyAnchor(ctx, domain.DailyAnchor{
			PhaseID:        phase.ID,
			AnchorDate:     trade.CloseDay(),
			OpeningBalance: phase.CurrentBalance,
		})
		if err != nil {
			return err
		}

		net := trade.NetPnL()
		phase.CurrentBalance = phase.CurrentBalance.Add(net)
		phase.CurrentEquity = phase.CurrentBalance

		dd := EvaluateDrawdown(domain.DrawdownInput{
			DailyLimit:      phase.DailyDrawdown,
			MaxLimit:        phase.MaxDrawdown,
			StartingBalance: phase.StartingBalance,
			Trailing:        phase.TrailingDrawdown,
			CurrentEquity:   phase.CurrentEquity,
			AnchorBalance:   anchor.OpeningBalance,
			HighWaterMark:   phase.HighWaterMark,
		})
		phase.HighWaterMark = dd.HighestEquity

		if err := st.Phases.UpdatePhase(ctx, phase); err != nil {
			return err
		}

		eval = domain.TradeEvaluation{Phase: phase, Drawdown: dd}
		if !dd.IsBreached {
			return nil
		}

		breach, err := s.recordBreachOnce(ctx, st, phase, dd)
		if err != nil {
			return err
		}
		eval.Breach = breach

		now := s.clock.Now().UTC()
		if err := markPhaseFailed(ctx, st, phase.AccountID, &phase, now); err != nil {
			return err
		}
		eval.Phase = phase
		eval.PhaseFailed = true
		return nil
	})
	if err != nil {
		return domain.TradeEvaluation{}, err
	}

	s.notifyBreach(ctx, eval)
	s.notifyAutoFail(ctx, eval)
	return eval, nil
}

// recordBreachOnce appends the audit record unless one of the same type
// already exists for the phase; the compliance trail holds exactly one row per
// breach event.
func (s *EvaluationService) recordBreachOnce(ctx context.Context, st domain.Stores, phase domain.Phase, dd domain.DrawdownResult) (*domain.BreachRecord, error) {
	exists, err := st.Breaches.HasBreachOfType(ctx, phase.ID, dd.BreachType)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, nil
	}

	amount := dd.DailyDrawdownRemaining
	if dd.BreachType == domain.BreachTypeMaxDrawdown {
		amount = dd.MaxDrawdownRemaining
	}

	breach := domain.BreachRecord{
		PhaseID:      phase.ID,
		Type:         dd.BreachType,
		BreachAmount: amount.Abs(),
		EquityAtTime: phase.CurrentEquity,
		AccountSize:  phase.StartingBalance,
		OccurredAt:   s.clock.Now().UTC(),
		Note:         fmt.Sprintf("%s limit exceeded at equity %s", dd.BreachType, phase.CurrentEquity.StringFixed(2)),
	}
	if err := st.Breaches.RecordBreach(ctx, breach); err != nil {
		return nil, err
	}
	return &breach, nil
}

func (s *EvaluationService) notifyBreach(ctx context.Context, eval domain.TradeEvaluation) {
	if s.notifier == nil || eval.Breach == nil {
		return
	}
	if err := s.notifier.BreachDetected(ctx, *eval.Breach); err != nil {
		applogger.Logger.Warn().Err(err).
			Str("phase_id", eval.Phase.ID.String()).
			Str("breach_type", string(eval.Breach.Type)).
			Msg("breach notification failed")
	}
}

// notifyAutoFail reports a breach-triggered failure as a fail transition
// outcome, so automatic and explicit failures reach the emitter the same way.
func (s *EvaluationService) notifyAutoFail(ctx context.Context, eval domain.TradeEvaluation) {
	if s.notifier == nil || !eval.PhaseFailed {
		return
	}
	phase := eval.Phase
	result := domain.TransitionResult{
		Action:        domain.TransitionFail,
		AccountID:     phase.AccountID.String(),
		AccountStatus: domain.AccountStatusFailed,
		EndedPhase:    &phase,
		OccurredAt:    s.clock.Now().UTC(),
	}
	if err := s.notifier.TransitionCompleted(ctx, result); err != nil {
		applogger.Logger.Warn().Err(err).
			Str("phase_id", phase.ID.String()).
			Msg("automatic failure notification failed")
	}
}

// Drawdown evaluates the phase's current drawdown headroom without mutating
// anything. An equity override lets callers probe intraday marks that are not
// reflected in the stored balance yet.
func (s *EvaluationService) Drawdown(ctx context.Context, phaseID uuid.UUID, equityOverride *decimal.Decimal) (domain.DrawdownResult, error) {
	phase, err := s.stores.Phases.GetPhase(ctx, phaseID)
	if err != nil {
		return domain.DrawdownResult{}, err
	}

	equity := phase.CurrentEquity
	if equityOverride != nil {
		equity = *equityOverride
	}

	anchorBalance := phase.CurrentBalance
	day := s.clock.Now().UTC().Format("2006-01-02")
	anchor, err := s.stores.Anchors.GetDailyAnchor(ctx, phase.ID, day)
	switch {
	case err == nil:
		anchorBalance = anchor.OpeningBalance
	case !domain.IsNotFound(err):
		return domain.DrawdownResult{}, err
	}

	return EvaluateDrawdown(domain.DrawdownInput{
		DailyLimit:      phase.DailyDrawdown,
		MaxLimit:        phase.MaxDrawdown,
		StartingBalance: phase.StartingBalance,
		Trailing:        phase.TrailingDrawdown,
		CurrentEquity:   equity,
		AnchorBalance:   anchorBalance,
		HighWaterMark:   phase.HighWaterMark,
	}), nil
}

// Progress evaluates profit-target readiness for a phase.
func (s *EvaluationService) Progress(ctx context.Context, phaseID uuid.UUID) (domain.ProgressResult, error) {
	phase, err := s.stores.Phases.GetPhase(ctx, phaseID)
	if err != nil {
		return domain.ProgressResult{}, err
	}

	days, err := s.stores.Trades.CountTradingDays(ctx, phase.ID)
	if err != nil {
		return domain.ProgressResult{}, err
	}

	breached, err := s.stores.Breaches.HasBreach(ctx, phase.ID)
	if err != nil {
		return domain.ProgressResult{}, err
	}

	return EvaluateProgress(phase, days, breached), nil
}

// Metrics aggregates the phase's trade ledger.
func (s *EvaluationService) Metrics(ctx context.Context, phaseID uuid.UUID, limit int) (domain.RiskMetrics, error) {
	if _, err := s.stores.Phases.GetPhase(ctx, phaseID); err != nil {
		return domain.RiskMetrics{}, err
	}

	trades, err := s.stores.Trades.ListTrades(ctx, phaseID, limit)
	if err != nil {
		return domain.RiskMetrics{}, err
	}

	return EvaluateRiskMetrics(trades), nil
}

// PayoutEligibility evaluates the configured payout policy against a funded
// phase.
func (s *EvaluationService) PayoutEligibility(ctx context.Context, phaseID uuid.UUID) (domain.PayoutEligibility, error) {
	phase, err := s.stores.Phases.GetPhase(ctx, phaseID)
	if err != nil {
		return domain.PayoutEligibility{}, err
	}
	return payoutEligibilityFor(ctx, s.stores, phase, s.policy, s.clock.Now().UTC())
}

// Violations replays the phase's trade history for the compliance view.
func (s *EvaluationService) Violations(ctx context.Context, phaseID uuid.UUID) (domain.ViolationReport, error) {
	phase, err := s.stores.Phases.GetPhase(ctx, phaseID)
	if err != nil {
		return domain.ViolationReport{}, err
	}

	trades, err := s.stores.Trades.ListTrades(ctx, phaseID, 0)
	if err != nil {
		return domain.ViolationReport{}, err
	}

	return ScanViolations(phase, trades), nil
}

// Sweep re-evaluates every active phase against its stored equity and today's
// anchor, failing any phase found in breach. Run periodically by the
// scheduler; returns the number of phases failed.
func (s *EvaluationService) Sweep(ctx context.Context) (int, error) {
	phases, err := s.stores.Phases.ListActivePhases(ctx, 0)
	if err != nil {
		return 0, err
	}

	failed := 0
	for _, candidate := range phases {
		swept, err := s.sweepPhase(ctx, candidate.ID)
		if err != nil {
			applogger.Logger.Error().Err(err).
				Str("phase_id", candidate.ID.String()).
				Msg("breach sweep failed for phase")
			continue
		}
		if swept {
			failed++
		}
	}
	return failed, nil
}

func (s *EvaluationService) sweepPhase(ctx context.Context, phaseID uuid.UUID) (bool, error) {
	var eval domain.TradeEvaluation

	err := s.uow.Do(ctx, func(st domain.Stores) error {
		phase, err := st.Phases.GetPhase(ctx, phaseID)
		if err != nil {
			return err
		}
		if phase.Status != domain.PhaseStatusActive {
			return nil
		}

		anchorBalance := phase.CurrentBalance
		day := s.clock.Now().UTC().Format("2006-01-02")
		anchor, err := st.Anchors.GetDailyAnchor(ctx, phase.ID, day)
		switch {
		case err == nil:
			anchorBalance = anchor.OpeningBalance
		case !domain.IsNotFound(err):
			return err
		}

		dd := EvaluateDrawdown(domain.DrawdownInput{
			DailyLimit:      phase.DailyDrawdown,
			MaxLimit:        phase.MaxDrawdown,
			StartingBalance: phase.StartingBalance,
			Trailing:        phase.TrailingDrawdown,
			CurrentEquity:   phase.CurrentEquity,
			AnchorBalance:   anchorBalance,
			HighWaterMark:   phase.HighWaterMark,
		})
		if !dd.IsBreached {
			return nil
		}

		breach, err := s.recordBreachOnce(ctx, st, phase, dd)
		if err != nil {
			return err
		}

		if err := markPhaseFailed(ctx, st, phase.AccountID, &phase, s.clock.Now().UTC()); err != nil {
			return err
		}
		eval = domain.TradeEvaluation{Phase: phase, Drawdown: dd, Breach: breach, PhaseFailed: true}
		return nil
	})
	if err != nil {
		return false, err
	}

	s.notifyBreach(ctx, eval)
	s.notifyAutoFail(ctx, eval)
	return eval.PhaseFailed, nil
}

// payoutEligibilityFor assembles the evaluator input from persisted state.
func payoutEligibilityFor(ctx context.Context, st domain.Stores, phase domain.Phase, policy domain.PayoutPolicy, now time.Time) (domain.PayoutEligibility, error) {
	lastPaid, err := st.Payouts.LastPaidAt(ctx, phase.ID)
	if err != nil {
		return domain.PayoutEligibility{}, err
	}

	since := phase.StartedAt
	if lastPaid != nil {
		since = *lastPaid
	}

	net, err := st.Trades.NetProfitSince(ctx, phase.ID, since)
	if err != nil {
		return domain.PayoutEligibility{}, err
	}

	hasBreach, err := st.Breaches.HasBreach(ctx, phase.ID)
	if err != nil {
		return domain.PayoutEligibility{}, err
	}

	return EvaluatePayoutEligibility(phase, policy, PayoutInput{
		FundedAt:                 phase.StartedAt,
		LastPayoutAt:             lastPaid,
		NetProfitSinceLastPayout: net,
		HasBreach:                hasBreach,
		Now:                      now,
	}), nil
}
