package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateTestCache invalidates all caches touched by a test mutation
func InvalidateTestCache(ctx context.Context, cm *CacheManager, testID, authorID uint) {
	SafeDelete(ctx, cm.Test, fmt.Sprintf("id:%d", testID))
	SafeInvalidatePattern(ctx, cm.Test, fmt.Sprintf("author:%d:*", authorID))
	SafeInvalidatePattern(ctx, cm.Test, "list:*")
	SafeInvalidatePattern(ctx, cm.Stats, fmt.Sprintf("test:%d:*", testID))
}

// InvalidateLikesCache invalidates the like count of a test
func InvalidateLikesCache(ctx context.Context, cm *CacheManager, testID uint) {
	SafeDelete(ctx, cm.Likes, fmt.Sprintf("count:%d", testID))
}

// InvalidateCategoryCache invalidates category caches
func InvalidateCategoryCache(ctx context.Context, cm *CacheManager, categoryID uint) {
	SafeDelete(ctx, cm.Category, fmt.Sprintf("id:%d", categoryID))
	SafeInvalidatePattern(ctx, cm.Category, "list*")
}
