package postgres

import (
	"context"
	"fmt"

	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/models"
	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/repositories"
	"gorm.io/gorm"
)

var resultSortColumns = map[string]bool{
	"created_at": true,
	"percentage": true,
	"score":      true,
}

type ResultPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewResultPostgreSQL(db *gorm.DB) repositories.ResultRepository {
	return &ResultPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (r *ResultPostgreSQL) Create(ctx context.Context, tx *gorm.DB, result *models.Result) error {
	if err := r.helpers.getDB(tx).WithContext(ctx).Create(result).Error; err != nil {
		return fmt.Errorf("failed to create result: %w", err)
	}
	return nil
}

func (r *ResultPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Result, error) {
	var result models.Result
	if err := r.helpers.getDB(tx).WithContext(ctx).First(&result, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get result %d: %w", id, err)
	}
	return &result, nil
}

func (r *ResultPostgreSQL) Supersede(ctx context.Context, tx *gorm.DB, oldID, newID uint) error {
	res := r.helpers.getDB(tx).WithContext(ctx).
		Model(&models.Result{}).
		Where("id = ? AND superseded_by IS NULL", oldID).
		Update("superseded_by", newID)
	if res.Error != nil {
		return fmt.Errorf("failed to supersede result %d: %w", oldID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("result %d: %w", oldID, repositories.ErrStaleWrite)
	}
	return nil
}

func (r *ResultPostgreSQL) ListByTest(ctx context.Context, tx *gorm.DB, testID uint, filters repositories.ResultFilters) ([]*models.Result, int64, error) {
	var results []*models.Result
	var total int64

	// apply filter first
	query := r.helpers.getDB(tx).WithContext(ctx).Model(&models.Result{}).Where("test_id = ?", testID)
	query = r.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count results of test %d: %w", testID, err)
	}

	// then apply pagination and sorting
	query = r.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, resultSortColumns, "created_at", filters.Limit, filters.Offset)

	if err := query.Find(&results).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list results of test %d: %w", testID, err)
	}

	return results, total, nil
}

func (r *ResultPostgreSQL) applyFilters(query *gorm.DB, filters repositories.ResultFilters) *gorm.DB {
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.ManualCheckRequired != nil {
		query = query.Where("manual_check_required = ?", *filters.ManualCheckRequired)
	}
	if !filters.IncludeSuperseded {
		query = query.Where("superseded_by IS NULL")
	}
	return query
}
