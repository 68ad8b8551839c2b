package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"propfirm_server/internal/domain"
)

type GormAnchorRepository struct {
	db *gorm.DB
}

func NewGormAnchorRepository(db *gorm.DB) (*GormAnchorRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	return &GormAnchorRepository{db: db}, nil
}

func (r *GormAnchorRepository) EnsureDailyAnchor(ctx context.Context, anchor domain.DailyAnchor) (domain.DailyAnchor, error) {
	model := toAnchorModel(anchor)

	// First writer wins; concurrent attempts for the same (phase, day)
	// converge on a single immutable row.
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "phase_id"}, {Name: "anchor_date"}},
			DoNothing: true,
		}).
		Create(&model).Error; err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.DailyAnchor{}, err
	}

	return r.GetDailyAnchor(ctx, anchor.PhaseID, anchor.AnchorDate)
}

func (r *GormAnchorRepository) GetDailyAnchor(ctx context.Context, phaseID uuid.UUID, day string) (domain.DailyAnchor, error) {
	var model DailyAnchorModel
	err := r.db.WithContext(ctx).
		Where("phase_id = ? AND anchor_date = ?", phaseID.String(), day).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.DailyAnchor{}, domain.NewNotFoundError("daily anchor", phaseID.String()+"/"+day)
		}
		return domain.DailyAnchor{}, err
	}
	return model.toDomain(), nil
}

func (r *GormAnchorRepository) PurgeAnchors(ctx context.Context, phaseID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("phase_id = ?", phaseID.String()).
		Delete(&DailyAnchorModel{}).Error
}
