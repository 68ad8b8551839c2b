package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"propfirm_server/internal/domain"
)

func newAccountFixture(t *testing.T) (*AccountService, *memStores) {
	t.Helper()

	mem := newMemStores()
	now := time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC)

	svc, err := NewAccountService(&memUnitOfWork{mem: mem}, mem.stores(), fixedClock{now: now})
	if err != nil {
		t.Fatalf("new account service: %v", err)
	}
	return svc, mem
}

func TestCreateAccountSeedsFirstPhase(t *testing.T) {
	svc, mem := newAccountFixture(t)
	ctx := context.Background()

	account, phase, err := svc.CreateAccount(ctx, CreateAccountInput{
		UserID:          "user-1",
		Name:            "10K Evaluation",
		StartingBalance: dec("10000"),
		Limits:          testAccount().Limits,
	})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}

	if account.Status != domain.AccountStatusActive {
		t.Fatalf("unexpected account status: %s", account.Status)
	}
	if phase.Type != domain.PhaseTypePhase1 || phase.Status != domain.PhaseStatusActive {
		t.Fatalf("unexpected first phase: %+v", phase)
	}
	if !phase.ProfitTarget.Equal(dec("800")) {
		t.Fatalf("unexpected profit target: %s", phase.ProfitTarget)
	}
	if !phase.DailyDrawdown.Equal(dec("500")) {
		t.Fatalf("unexpected daily limit: %s", phase.DailyDrawdown)
	}
	if !phase.MaxDrawdown.Equal(dec("1000")) {
		t.Fatalf("unexpected max limit: %s", phase.MaxDrawdown)
	}

	stored, phases, err := svc.GetAccount(ctx, account.ID)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if stored.ID != account.ID {
		t.Fatalf("unexpected account: %+v", stored)
	}
	if len(phases) != 1 || phases[0].ID != phase.ID {
		t.Fatalf("expected seeded phase in history, got %d", len(phases))
	}

	// The stores also saw the write.
	active, err := mem.stores().Phases.GetActivePhase(ctx, account.ID)
	if err != nil {
		t.Fatalf("get active phase: %v", err)
	}
	if active.ID != phase.ID {
		t.Fatalf("active phase mismatch")
	}
}

func TestCreateAccountValidation(t *testing.T) {
	svc, _ := newAccountFixture(t)
	ctx := context.Background()
	limits := testAccount().Limits

	limitsWithout := func(drop domain.PhaseType) map[domain.PhaseType]domain.PhaseLimits {
		out := make(map[domain.PhaseType]domain.PhaseLimits, len(limits))
		for t, l := range limits {
			if t != drop {
				out[t] = l
			}
		}
		return out
	}
	limitsWith := func(t domain.PhaseType, l domain.PhaseLimits) map[domain.PhaseType]domain.PhaseLimits {
		out := limitsWithout(t)
		out[t] = l
		return out
	}

	cases := []struct {
		name string
		in   CreateAccountInput
	}{
		{"missing user", CreateAccountInput{StartingBalance: dec("10000"), Limits: limits}},
		{"zero balance", CreateAccountInput{UserID: "u", StartingBalance: decimal.Zero, Limits: limits}},
		{"negative balance", CreateAccountInput{UserID: "u", StartingBalance: dec("-5"), Limits: limits}},
		{"no limits", CreateAccountInput{UserID: "u", StartingBalance: dec("10000")}},
		{"no phase_1 limits", CreateAccountInput{UserID: "u", StartingBalance: dec("10000"), Limits: limitsWithout(domain.PhaseTypePhase1)}},
		{"no phase_2 limits", CreateAccountInput{UserID: "u", StartingBalance: dec("10000"), Limits: limitsWithout(domain.PhaseTypePhase2)}},
		{"no funded limits", CreateAccountInput{UserID: "u", StartingBalance: dec("10000"), Limits: limitsWithout(domain.PhaseTypeFunded)}},
		{"zero phase_2 target", CreateAccountInput{UserID: "u", StartingBalance: dec("10000"), Limits: limitsWith(domain.PhaseTypePhase2, domain.PhaseLimits{
			DailyDrawdownPercent: dec("5"),
			MaxDrawdownPercent:   dec("10"),
		})}},
		{"zero funded drawdown", CreateAccountInput{UserID: "u", StartingBalance: dec("10000"), Limits: limitsWith(domain.PhaseTypeFunded, domain.PhaseLimits{
			DailyDrawdownPercent: dec("5"),
		})}},
	}

	for _, tc := range cases {
		if _, _, err := svc.CreateAccount(ctx, tc.in); !domain.IsValidation(err) {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

// Guards advance against seeding a successor whose limits were never
// configured: a phase_2 with zero limits would fail on the first losing trade
// of any size.
func TestCreateAccountRequiresEveryReachablePhaseConfig(t *testing.T) {
	svc, _ := newAccountFixture(t)
	ctx := context.Background()

	phase1Only := map[domain.PhaseType]domain.PhaseLimits{
		domain.PhaseTypePhase1: testAccount().Limits[domain.PhaseTypePhase1],
	}

	_, _, err := svc.CreateAccount(ctx, CreateAccountInput{
		UserID:          "user-1",
		StartingBalance: dec("10000"),
		Limits:          phase1Only,
	})
	if !domain.IsValidation(err) {
		t.Fatalf("phase_1-only configuration must be rejected, got %v", err)
	}
}

func TestGetAccountNotFound(t *testing.T) {
	svc, _ := newAccountFixture(t)

	_, _, err := svc.GetAccount(context.Background(), uuid.New())
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}
