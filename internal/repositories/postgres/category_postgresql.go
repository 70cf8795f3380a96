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

type CategoryPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewCategoryPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.CategoryRepository {
	return &CategoryPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (c *CategoryPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return c.db
}

func (c *CategoryPostgreSQL) Create(ctx context.Context, tx *gorm.DB, category *models.Category) error {
	if err := c.getDB(tx).WithContext(ctx).Create(category).Error; err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	cache.SafeInvalidatePattern(ctx, c.cacheManager.Category, "list*")

	return nil
}

// GetByID retrieves a category by ID with caching
func (c *CategoryPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Category, error) {
	cacheKey := fmt.Sprintf("id:%d", id)
	var category models.Category

	err := c.cacheManager.Category.CacheOrExecute(ctx, cacheKey, &category, cache.CategoryCacheConfig.TTL, func() (interface{}, error) {
		var dbCategory models.Category
		if err := c.getDB(tx).WithContext(ctx).First(&dbCategory, id).Error; err != nil {
			return nil, err
		}
		return &dbCategory, nil
	})
	if err != nil {
		return nil, err
	}

	return &category, nil
}

func (c *CategoryPostgreSQL) Update(ctx context.Context, tx *gorm.DB, category *models.Category) error {
	result := c.getDB(tx).WithContext(ctx).
		Model(&models.Category{}).
		Where("id = ?", category.ID).
		Update("name", category.Name)
	if result.Error != nil {
		return fmt.Errorf("failed to update category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	cache.InvalidateCategoryCache(ctx, c.cacheManager, category.ID)

	return nil
}

func (c *CategoryPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	result := c.getDB(tx).WithContext(ctx).Delete(&models.Category{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	cache.InvalidateCategoryCache(ctx, c.cacheManager, id)

	return nil
}

// List retrieves all categories with caching
func (c *CategoryPostgreSQL) List(ctx context.Context, tx *gorm.DB) ([]*models.Category, error) {
	var categories []*models.Category

	err := c.cacheManager.Category.CacheOrExecute(ctx, "list", &categories, cache.CategoryCacheConfig.TTL, func() (interface{}, error) {
		var dbCategories []*models.Category
		if err := c.getDB(tx).WithContext(ctx).Order("name ASC").Find(&dbCategories).Error; err != nil {
			return nil, fmt.Errorf("failed to list categories: %w", err)
		}
		return dbCategories, nil
	})
	if err != nil {
		return nil, err
	}

	return categories, nil
}
