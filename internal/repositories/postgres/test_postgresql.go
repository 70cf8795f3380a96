package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/4brn/stddy-bddy/internal/cache"
	"github.com/4brn/stddy-bddy/internal/models"
	"github.com/4brn/stddy-bddy/internal/repositories"
)

type TestPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewTestPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.TestRepository {
	return &TestPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (t *TestPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return t.db
}

// Create creates a new test and invalidates list caches
func (t *TestPostgreSQL) Create(ctx context.Context, tx *gorm.DB, test *models.Test) error {
	if err := t.getDB(tx).WithContext(ctx).Create(test).Error; err != nil {
		return fmt.Errorf("failed to create test: %w", err)
	}
	cache.SafeInvalidatePattern(ctx, t.cacheManager.Test, fmt.Sprintf("author:%d:*", test.AuthorID))
	cache.SafeInvalidatePattern(ctx, t.cacheManager.Test, "list:*")

	return nil
}

// GetByID retrieves a test by ID with caching
func (t *TestPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error) {
	cacheKey := fmt.Sprintf("id:%d", id)
	var test models.Test

	err := t.cacheManager.Test.CacheOrExecute(ctx, cacheKey, &test, cache.TestCacheConfig.TTL, func() (interface{}, error) {
		var dbTest models.Test
		err := t.getDB(tx).WithContext(ctx).
			Preload("Author").
			Preload("Category").
			First(&dbTest, id).Error
		if err != nil {
			return nil, err
		}
		return &dbTest, nil
	})
	if err != nil {
		return nil, err
	}

	return &test, nil
}

// Update updates a test and invalidates its caches
func (t *TestPostgreSQL) Update(ctx context.Context, tx *gorm.DB, test *models.Test) error {
	result := t.getDB(tx).WithContext(ctx).
		Model(&models.Test{}).
		Where("id = ?", test.ID).
		Updates(map[string]interface{}{
			"title":       test.Title,
			"description": test.Description,
			"category_id": test.CategoryID,
			"is_private":  test.IsPrivate,
			"questions":   test.Questions,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update test: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	cache.InvalidateTestCache(ctx, t.cacheManager, test.ID, test.AuthorID)

	return nil
}

// Delete removes the test row outright and invalidates its caches
func (t *TestPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	var test models.Test
	if err := t.getDB(tx).WithContext(ctx).Select("id, author_id").First(&test, id).Error; err != nil {
		return err
	}

	if err := t.getDB(tx).WithContext(ctx).Delete(&models.Test{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete test: %w", err)
	}

	cache.InvalidateTestCache(ctx, t.cacheManager, id, test.AuthorID)
	cache.InvalidateLikesCache(ctx, t.cacheManager, id)

	return nil
}

// List retrieves tests with filters and pagination
func (t *TestPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.TestFilters) ([]*models.Test, int64, error) {
	query := t.getDB(tx).WithContext(ctx).Model(&models.Test{})
	query = t.helpers.ApplyTestFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count tests: %w", err)
	}

	query = t.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	var tests []*models.Test
	if err := query.
		Preload("Author").
		Preload("Category").
		Find(&tests).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list tests: %w", err)
	}

	return tests, total, nil
}

func (t *TestPostgreSQL) CountByAuthor(ctx context.Context, tx *gorm.DB, authorID uint) (int64, error) {
	var count int64
	err := t.getDB(tx).WithContext(ctx).
		Model(&models.Test{}).
		Where("author_id = ?", authorID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count tests by author: %w", err)
	}
	return count, nil
}
