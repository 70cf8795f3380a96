package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/4brn/stddy-bddy/internal/cache"
	"github.com/4brn/stddy-bddy/internal/models"
	"github.com/4brn/stddy-bddy/internal/repositories"
)

type LikePostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewLikePostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.LikeRepository {
	return &LikePostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (l *LikePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return l.db
}

// Create records a like. Conflicts on the (user, test) unique index are
// ignored so liking twice stays idempotent.
func (l *LikePostgreSQL) Create(ctx context.Context, tx *gorm.DB, like *models.Like) error {
	err := l.getDB(tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "test_id"}},
			DoNothing: true,
		}).
		Create(like).Error
	if err != nil {
		return fmt.Errorf("failed to create like: %w", err)
	}

	cache.InvalidateLikesCache(ctx, l.cacheManager, like.TestID)

	return nil
}

func (l *LikePostgreSQL) Delete(ctx context.Context, tx *gorm.DB, userID, testID uint) error {
	if err := l.getDB(tx).WithContext(ctx).
		Where("user_id = ? AND test_id = ?", userID, testID).
		Delete(&models.Like{}).Error; err != nil {
		return fmt.Errorf("failed to delete like: %w", err)
	}

	cache.InvalidateLikesCache(ctx, l.cacheManager, testID)

	return nil
}

// DeleteByTest removes every like of a test, for test deletion cascades
func (l *LikePostgreSQL) DeleteByTest(ctx context.Context, tx *gorm.DB, testID uint) error {
	if err := l.getDB(tx).WithContext(ctx).
		Where("test_id = ?", testID).
		Delete(&models.Like{}).Error; err != nil {
		return fmt.Errorf("failed to delete likes for test: %w", err)
	}

	cache.InvalidateLikesCache(ctx, l.cacheManager, testID)

	return nil
}

func (l *LikePostgreSQL) Exists(ctx context.Context, tx *gorm.DB, userID, testID uint) (bool, error) {
	var count int64
	err := l.getDB(tx).WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND test_id = ?", userID, testID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check like: %w", err)
	}
	return count > 0, nil
}

// CountByTest counts likes for a test with short-lived caching
func (l *LikePostgreSQL) CountByTest(ctx context.Context, tx *gorm.DB, testID uint) (int64, error) {
	cacheKey := fmt.Sprintf("count:%d", testID)
	var count int64

	err := l.cacheManager.Likes.CacheOrExecute(ctx, cacheKey, &count, cache.LikesCacheConfig.TTL, func() (interface{}, error) {
		var dbCount int64
		err := l.getDB(tx).WithContext(ctx).
			Model(&models.Like{}).
			Where("test_id = ?", testID).
			Count(&dbCount).Error
		if err != nil {
			return nil, fmt.Errorf("failed to count likes: %w", err)
		}
		return dbCount, nil
	})
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (l *LikePostgreSQL) ListTestIDsByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]uint, error) {
	var testIDs []uint
	err := l.getDB(tx).WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ?", userID).
		Pluck("test_id", &testIDs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list liked tests: %w", err)
	}
	return testIDs, nil
}
