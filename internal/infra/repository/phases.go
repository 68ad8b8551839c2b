package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"propfirm_server/internal/domain"
)

type GormPhaseRepository struct {
	db *gorm.DB
}

func NewGormPhaseRepository(db *gorm.DB) (*GormPhaseRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	return &GormPhaseRepository{db: db}, nil
}

func (r *GormPhaseRepository) CreatePhase(ctx context.Context, phase domain.Phase) error {
	model := toPhaseModel(phase)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		// The partial unique index over active rows turns a second concurrent
		// activation into a duplicate key here.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrConcurrencyConflict
		}
		return err
	}
	return nil
}

func (r *GormPhaseRepository) GetPhase(ctx context.Context, id uuid.UUID) (domain.Phase, error) {
	var model PhaseModel
	err := r.db.WithContext(ctx).
		Where("id = ?", id.String()).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Phase{}, domain.NewNotFoundError("phase", id.String())
		}
		return domain.Phase{}, err
	}
	return model.toDomain(), nil
}

func (r *GormPhaseRepository) GetActivePhase(ctx context.Context, accountID uuid.UUID) (domain.Phase, error) {
	var model PhaseModel
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND status = ?", accountID.String(), string(domain.PhaseStatusActive)).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Phase{}, domain.NewNotFoundError("active phase for account", accountID.String())
		}
		return domain.Phase{}, err
	}
	return model.toDomain(), nil
}

func (r *GormPhaseRepository) UpdatePhase(ctx context.Context, phase domain.Phase) error {
	model := toPhaseModel(phase)
	result := r.db.WithContext(ctx).Model(&PhaseModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"status":          model.Status,
			"current_balance": model.CurrentBalance,
			"current_equity":  model.CurrentEquity,
			"high_water_mark": model.HighWaterMark,
			"ended_at":        model.EndedAt,
			"updated_at":      gorm.Expr("CURRENT_TIMESTAMP"),
		})
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return domain.ErrConcurrencyConflict
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("phase", model.ID)
	}
	return nil
}

func (r *GormPhaseRepository) ListPhases(ctx context.Context, accountID uuid.UUID) ([]domain.Phase, error) {
	var models []PhaseModel
	if err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID.String()).
		Order("started_at ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}

	phases := make([]domain.Phase, len(models))
	for i, model := range models {
		phases[i] = model.toDomain()
	}
	return phases, nil
}

func (r *GormPhaseRepository) ListActivePhases(ctx context.Context, limit int) ([]domain.Phase, error) {
	var models []PhaseModel
	query := r.db.WithContext(ctx).
		Where("status = ?", string(domain.PhaseStatusActive)).
		Order("started_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	phases := make([]domain.Phase, len(models))
	for i, model := range models {
		phases[i] = model.toDomain()
	}
	return phases, nil
}
