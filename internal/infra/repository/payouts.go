package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"propfirm_server/internal/domain"
)

type GormPayoutRepository struct {
	db *gorm.DB
}

func NewGormPayoutRepository(db *gorm.DB) (*GormPayoutRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	return &GormPayoutRepository{db: db}, nil
}

func (r *GormPayoutRepository) CreatePayout(ctx context.Context, payout domain.Payout) error {
	model := toPayoutModel(payout)
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *GormPayoutRepository) GetPayout(ctx context.Context, id uuid.UUID) (domain.Payout, error) {
	var model PayoutModel
	err := r.db.WithContext(ctx).
		Where("id = ?", id.String()).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Payout{}, domain.NewNotFoundError("payout", id.String())
		}
		return domain.Payout{}, err
	}
	return model.toDomain(), nil
}

func (r *GormPayoutRepository) ListPayouts(ctx context.Context, accountID uuid.UUID) ([]domain.Payout, error) {
	var models []PayoutModel
	if err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID.String()).
		Order("requested_at DESC").
		Find(&models).Error; err != nil {
		return nil, err
	}

	payouts := make([]domain.Payout, len(models))
	for i, model := range models {
		payouts[i] = model.toDomain()
	}
	return payouts, nil
}

func (r *GormPayoutRepository) LastPaidAt(ctx context.Context, phaseID uuid.UUID) (*time.Time, error) {
	var model PayoutModel
	err := r.db.WithContext(ctx).
		Where("phase_id = ? AND status = ?", phaseID.String(), string(domain.PayoutStatusPaid)).
		Order("paid_at DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.PaidAt, nil
}

func (r *GormPayoutRepository) DeletePendingPayout(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id.String(), string(domain.PayoutStatusPending)).
		Delete(&PayoutModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("pending payout", id.String())
	}
	return nil
}
