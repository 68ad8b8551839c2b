package usecase

import (
	"testing"
	"time"

	"propfirm_server/internal/domain"
)

func phase1Fixture() domain.Phase {
	account := testAccount()
	return domain.NewPhase(account, domain.PhaseTypePhase1, account.StartingBalance, time.Now().UTC())
}

func TestEvaluateProgressPartial(t *testing.T) {
	phase := phase1Fixture()
	phase.CurrentBalance = dec("10400") // $400 of the $800 target

	result := EvaluateProgress(phase, 3, false)

	if !result.ProfitTarget.Equal(dec("800")) {
		t.Fatalf("unexpected target: %s", result.ProfitTarget)
	}
	if !result.ProfitProgress.Equal(dec("50")) {
		t.Fatalf("unexpected progress: %s", result.ProfitProgress)
	}
	if result.ReadyToAdvance {
		t.Fatalf("target not met, must not be ready")
	}
	if result.NextPhaseType != domain.PhaseTypePhase2 {
		t.Fatalf("unexpected successor: %s", result.NextPhaseType)
	}
}

func TestEvaluateProgressReadyToAdvance(t *testing.T) {
	phase := phase1Fixture()
	phase.CurrentBalance = dec("10800")

	result := EvaluateProgress(phase, 5, false)

	if !result.ReadyToAdvance {
		t.Fatalf("expected ready: %+v", result)
	}
	if !result.ProfitProgress.Equal(dec("100")) {
		t.Fatalf("unexpected progress: %s", result.ProfitProgress)
	}
}

func TestEvaluateProgressClampedAtHundred(t *testing.T) {
	phase := phase1Fixture()
	phase.CurrentBalance = dec("12000") // well past the target

	result := EvaluateProgress(phase, 5, false)

	if !result.ProfitProgress.Equal(dec("100")) {
		t.Fatalf("progress must clamp at 100, got %s", result.ProfitProgress)
	}
	if !result.NetProfit.Equal(dec("2000")) {
		t.Fatalf("net profit must stay unclamped, got %s", result.NetProfit)
	}
}

func TestEvaluateProgressBlockedByMinTradingDays(t *testing.T) {
	phase := phase1Fixture()
	phase.CurrentBalance = dec("10800")

	result := EvaluateProgress(phase, 2, false)

	if result.ReadyToAdvance {
		t.Fatalf("minimum trading days not met, must not be ready")
	}
}

func TestEvaluateProgressBlockedByBreach(t *testing.T) {
	phase := phase1Fixture()
	phase.CurrentBalance = dec("10800")

	result := EvaluateProgress(phase, 5, true)

	if result.ReadyToAdvance {
		t.Fatalf("breached phase must not be ready")
	}
}

func TestEvaluateProgressFundedNeverReady(t *testing.T) {
	account := testAccount()
	phase := domain.NewPhase(account, domain.PhaseTypeFunded, account.StartingBalance, time.Now().UTC())
	phase.CurrentBalance = dec("15000")

	result := EvaluateProgress(phase, 30, false)

	if result.ReadyToAdvance {
		t.Fatalf("funded phase has no successor and must never be ready")
	}
	if !result.ProfitTarget.IsZero() {
		t.Fatalf("funded phase carries no target, got %s", result.ProfitTarget)
	}
	if !result.ProfitProgress.IsZero() {
		t.Fatalf("progress undefined without a target, got %s", result.ProfitProgress)
	}
}
