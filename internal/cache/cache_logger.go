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

// InvalidateDisciplineCache drops every cached view of one discipline plus
// the catalogue listings it appears in.
func InvalidateDisciplineCache(ctx context.Context, cm *CacheManager, disciplineID uint) {
	SafeDelete(ctx, cm.Catalog, fmt.Sprintf("discipline:%d", disciplineID))
	SafeInvalidatePattern(ctx, cm.Catalog, "discipline:list:*")
	SafeInvalidatePattern(ctx, cm.Catalog, "teacher:*")
}
