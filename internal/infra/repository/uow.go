package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"propfirm_server/internal/domain"
)

// NewStores wires the full repository set over one gorm handle. Used both for
// the non-transactional read side and, inside the unit of work, for the
// transaction handle.
func NewStores(db *gorm.DB) (domain.Stores, error) {
	accounts, err := NewGormAccountRepository(db)
	if err != nil {
		return domain.Stores{}, err
	}
	phases, err := NewGormPhaseRepository(db)
	if err != nil {
		return domain.Stores{}, err
	}
	trades, err := NewGormTradeRepository(db)
	if err != nil {
		return domain.Stores{}, err
	}
	anchors, err := NewGormAnchorRepository(db)
	if err != nil {
		return domain.Stores{}, err
	}
	breaches, err := NewGormBreachRepository(db)
	if err != nil {
		return domain.Stores{}, err
	}
	payouts, err := NewGormPayoutRepository(db)
	if err != nil {
		return domain.Stores{}, err
	}

	return domain.Stores{
		Accounts: accounts,
		Phases:   phases,
		Trades:   trades,
		Anchors:  anchors,
		Breaches: breaches,
		Payouts:  payouts,
	}, nil
}

// GormUnitOfWork scopes a repository set to a single database transaction.
type GormUnitOfWork struct {
	db *gorm.DB
}

func NewGormUnitOfWork(db *gorm.DB) (*GormUnitOfWork, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	return &GormUnitOfWork{db: db}, nil
}

func (u *GormUnitOfWork) Do(ctx context.Context, fn func(s domain.Stores) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stores, err := NewStores(tx)
		if err != nil {
			return err
		}
		if err := fn(stores); err != nil {
			// Commit-time duplicate keys carry the same meaning as the
			// in-transaction re-check failing.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrConcurrencyConflict
			}
			return err
		}
		return nil
	})
}
