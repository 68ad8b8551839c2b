package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"propfirm_server/internal/domain"
)

type GormAccountRepository struct {
	db *gorm.DB
}

func NewGormAccountRepository(db *gorm.DB) (*GormAccountRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	return &GormAccountRepository{db: db}, nil
}

func (r *GormAccountRepository) CreateAccount(ctx context.Context, account domain.Account) error {
	model := toAccountModel(account)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}

	limits := toLimitModels(account)
	if len(limits) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&limits).Error
}

func (r *GormAccountRepository) GetAccount(ctx context.Context, id uuid.UUID) (domain.Account, error) {
	var model AccountModel
	err := r.db.WithContext(ctx).
		Where("id = ?", id.String()).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Account{}, domain.NewNotFoundError("account", id.String())
		}
		return domain.Account{}, err
	}

	var limits []AccountPhaseLimitModel
	if err := r.db.WithContext(ctx).
		Where("account_id = ?", id.String()).
		Find(&limits).Error; err != nil {
		return domain.Account{}, err
	}

	return model.toDomain(limits), nil
}

func (r *GormAccountRepository) UpdateAccountStatus(ctx context.Context, id uuid.UUID, status domain.AccountStatus) error {
	result := r.db.WithContext(ctx).Model(&AccountModel{}).
		Where("id = ?", id.String()).
		Updates(map[string]interface{}{
			"status":     string(status),
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("account", id.String())
	}
	return nil
}

func (r *GormAccountRepository) ListAccounts(ctx context.Context, limit int) ([]domain.Account, error) {
	var models []AccountModel
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}

	ids := make([]string, len(models))
	for i, m := range models {
		ids[i] = m.ID
	}

	var limits []AccountPhaseLimitModel
	if err := r.db.WithContext(ctx).
		Where("account_id IN ?", ids).
		Find(&limits).Error; err != nil {
		return nil, err
	}

	byAccount := make(map[string][]AccountPhaseLimitModel, len(models))
	for _, l := range limits {
		byAccount[l.AccountID] = append(byAccount[l.AccountID], l)
	}

	accounts := make([]domain.Account, len(models))
	for i, m := range models {
		accounts[i] = m.toDomain(byAccount[m.ID])
	}
	return accounts, nil
}
