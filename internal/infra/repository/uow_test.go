package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"propfirm_server/internal/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Discard,
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("underlying db: %v", err)
	}
	// One connection keeps every statement on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&AccountModel{},
		&AccountPhaseLimitModel{},
		&PhaseModel{},
		&TradeModel{},
		&DailyAnchorModel{},
		&BreachRecordModel{},
		&PayoutModel{},
	)
	if err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	err = db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_phases_one_active
		 ON phases (account_id) WHERE status = 'active'`).Error
	if err != nil {
		t.Fatalf("create active phase index: %v", err)
	}

	return db
}

func seededActivePhase(t *testing.T, stores domain.Stores) (domain.Account, domain.Phase) {
	t.Helper()
	ctx := context.Background()

	account := domain.Account{
		ID:              uuid.New(),
		UserID:          "user-1",
		StartingBalance: decimal.NewFromInt(10000),
		Status:          domain.AccountStatusActive,
	}
	if err := stores.Accounts.CreateAccount(ctx, account); err != nil {
		t.Fatalf("seed account: %v", err)
	}

	phase := domain.Phase{
		ID:              uuid.New(),
		AccountID:       account.ID,
		Type:            domain.PhaseTypePhase1,
		Status:          domain.PhaseStatusActive,
		StartingBalance: account.StartingBalance,
		CurrentBalance:  account.StartingBalance,
		CurrentEquity:   account.StartingBalance,
		HighWaterMark:   account.StartingBalance,
		ProfitTarget:    decimal.NewFromInt(800),
		DailyDrawdown:   decimal.NewFromInt(500),
		MaxDrawdown:     decimal.NewFromInt(1000),
		StartedAt:       time.Now().UTC(),
	}
	if err := stores.Phases.CreatePhase(ctx, phase); err != nil {
		t.Fatalf("seed phase: %v", err)
	}

	return account, phase
}

// A transition whose last write trips the one-active-phase index must leave no
// trace of its earlier writes.
func TestGormUnitOfWorkRollsBackOnConflict(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	stores, err := NewStores(db)
	if err != nil {
		t.Fatalf("new stores: %v", err)
	}
	uow, err := NewGormUnitOfWork(db)
	if err != nil {
		t.Fatalf("new unit of work: %v", err)
	}

	account, phase := seededActivePhase(t, stores)

	err = uow.Do(ctx, func(st domain.Stores) error {
		ended := time.Now().UTC()
		passed := phase
		passed.Status = domain.PhaseStatusPassed
		passed.EndedAt = &ended
		if err := st.Phases.UpdatePhase(ctx, passed); err != nil {
			return err
		}

		successor := phase
		successor.ID = uuid.New()
		successor.Type = domain.PhaseTypePhase2
		if err := st.Phases.CreatePhase(ctx, successor); err != nil {
			return err
		}

		// A second active row for the same account hits the partial index.
		duplicate := successor
		duplicate.ID = uuid.New()
		return st.Phases.CreatePhase(ctx, duplicate)
	})
	if !errors.Is(err, domain.ErrConcurrencyConflict) {
		t.Fatalf("expected ErrConcurrencyConflict, got %v", err)
	}

	// The pass mark and the first successor insert are both gone.
	active, err := stores.Phases.GetActivePhase(ctx, account.ID)
	if err != nil {
		t.Fatalf("get active phase: %v", err)
	}
	if active.ID != phase.ID {
		t.Fatalf("rollback must restore the original active phase, got %s", active.ID)
	}
	if active.Status != domain.PhaseStatusActive || active.EndedAt != nil {
		t.Fatalf("original phase mutated: %+v", active)
	}

	phases, err := stores.Phases.ListPhases(ctx, account.ID)
	if err != nil {
		t.Fatalf("list phases: %v", err)
	}
	if len(phases) != 1 {
		t.Fatalf("partial writes leaked: %d phases", len(phases))
	}
}

func TestGormUnitOfWorkCommits(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	stores, err := NewStores(db)
	if err != nil {
		t.Fatalf("new stores: %v", err)
	}
	uow, err := NewGormUnitOfWork(db)
	if err != nil {
		t.Fatalf("new unit of work: %v", err)
	}

	account, phase := seededActivePhase(t, stores)

	err = uow.Do(ctx, func(st domain.Stores) error {
		ended := time.Now().UTC()
		passed := phase
		passed.Status = domain.PhaseStatusPassed
		passed.EndedAt = &ended
		if err := st.Phases.UpdatePhase(ctx, passed); err != nil {
			return err
		}

		successor := phase
		successor.ID = uuid.New()
		successor.Type = domain.PhaseTypePhase2
		return st.Phases.CreatePhase(ctx, successor)
	})
	if err != nil {
		t.Fatalf("unit of work: %v", err)
	}

	active, err := stores.Phases.GetActivePhase(ctx, account.ID)
	if err != nil {
		t.Fatalf("get active phase: %v", err)
	}
	if active.Type != domain.PhaseTypePhase2 {
		t.Fatalf("successor not committed: %+v", active)
	}

	phases, err := stores.Phases.ListPhases(ctx, account.ID)
	if err != nil {
		t.Fatalf("list phases: %v", err)
	}
	if len(phases) != 2 {
		t.Fatalf("expected 2 phases after commit, got %d", len(phases))
	}
}
