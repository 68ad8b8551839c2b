package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"propfirm_server/internal/domain"
)

type GormTradeRepository struct {
	db *gorm.DB
}

func NewGormTradeRepository(db *gorm.DB) (*GormTradeRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	return &GormTradeRepository{db: db}, nil
}

func (r *GormTradeRepository) AddTrade(ctx context.Context, trade domain.Trade) error {
	model := toTradeModel(trade)
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *GormTradeRepository) ListTrades(ctx context.Context, phaseID uuid.UUID, limit int) ([]domain.Trade, error) {
	var models []TradeModel
	query := r.db.WithContext(ctx).
		Where("phase_id = ?", phaseID.String()).
		Order("entry_time ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	trades := make([]domain.Trade, len(models))
	for i, model := range models {
		trades[i] = model.toDomain()
	}
	return trades, nil
}

func (r *GormTradeRepository) CountTradingDays(ctx context.Context, phaseID uuid.UUID) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&TradeModel{}).
		Where("phase_id = ?", phaseID.String()).
		Distinct("close_day").
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *GormTradeRepository) NetProfitSince(ctx context.Context, phaseID uuid.UUID, since time.Time) (decimal.Decimal, error) {
	row := r.db.WithContext(ctx).Model(&TradeModel{}).
		Where("phase_id = ? AND exit_time >= ?", phaseID.String(), since).
		Select("COALESCE(SUM(pnl + commission + fees), 0)").
		Row()

	var net decimal.Decimal
	if err := row.Scan(&net); err != nil {
		return decimal.Zero, err
	}
	return net, nil
}

func (r *GormTradeRepository) PurgeTrades(ctx context.Context, phaseID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("phase_id = ?", phaseID.String()).
		Delete(&TradeModel{}).Error
}
