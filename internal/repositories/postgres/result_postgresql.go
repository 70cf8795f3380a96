package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/4brn/stddy-bddy/internal/models"
	"github.com/4brn/stddy-bddy/internal/repositories"
)

// ResultPostgreSQL stores graded submissions. Results are append-only, so
// there is no Update or Delete.
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

func (r *ResultPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *ResultPostgreSQL) Create(ctx context.Context, tx *gorm.DB, result *models.Result) error {
	if err := r.getDB(tx).WithContext(ctx).Create(result).Error; err != nil {
		return fmt.Errorf("failed to create result: %w", err)
	}
	return nil
}

func (r *ResultPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Result, error) {
	var result models.Result
	if err := r.getDB(tx).WithContext(ctx).First(&result, id).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *ResultPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.ResultFilters) ([]*models.Result, int64, error) {
	query := r.getDB(tx).WithContext(ctx).Model(&models.Result{})
	query = r.helpers.ApplyResultFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count results: %w", err)
	}

	query = r.helpers.ApplyPaginationAndSort(query, "taken_at", "desc", filters.Limit, filters.Offset)

	var results []*models.Result
	if err := query.Find(&results).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list results: %w", err)
	}

	return results, total, nil
}
