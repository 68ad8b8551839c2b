package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"propfirm_server/internal/infra/repository"
)

func ApplyMigrations(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(
		&repository.AccountModel{},
		&repository.AccountPhaseLimitModel{},
		&repository.PhaseModel{},
		&repository.TradeModel{},
		&repository.DailyAnchorModel{},
		&repository.BreachRecordModel{},
		&repository.PayoutModel{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	// The one-active-phase invariant lives in the schema: a partial unique
	// index over active rows makes a second concurrent activation a duplicate
	// key at commit time. Supported by both sqlite and postgres.
	if err := db.WithContext(ctx).Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_phases_one_active
		 ON phases (account_id) WHERE status = 'active'`,
	).Error; err != nil {
		return fmt.Errorf("create active phase index: %w", err)
	}

	return nil
}
