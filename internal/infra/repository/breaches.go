package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"propfirm_server/internal/domain"
)

// GormBreachRepository is append-only: breach rows are never updated or
// deleted, they form the compliance trail.
type GormBreachRepository struct {
	db *gorm.DB
}

func NewGormBreachRepository(db *gorm.DB) (*GormBreachRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	return &GormBreachRepository{db: db}, nil
}

func (r *GormBreachRepository) RecordBreach(ctx context.Context, breach domain.BreachRecord) error {
	model := toBreachModel(breach)
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *GormBreachRepository) ListBreaches(ctx context.Context, phaseID uuid.UUID) ([]domain.BreachRecord, error) {
	var models []BreachRecordModel
	if err := r.db.WithContext(ctx).
		Where("phase_id = ?", phaseID.String()).
		Order("occurred_at ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}

	breaches := make([]domain.BreachRecord, len(models))
	for i, model := range models {
		breaches[i] = model.toDomain()
	}
	return breaches, nil
}

func (r *GormBreachRepository) HasBreach(ctx context.Context, phaseID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&BreachRecordModel{}).
		Where("phase_id = ?", phaseID.String()).
		Count(&count).Error
	return count > 0, err
}

func (r *GormBreachRepository) HasBreachOfType(ctx context.Context, phaseID uuid.UUID, breachType domain.BreachType) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&BreachRecordModel{}).
		Where("phase_id = ? AND breach_type = ?", phaseID.String(), string(breachType)).
		Count(&count).Error
	return count > 0, err
}
