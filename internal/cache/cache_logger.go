package cache

import (
	"context"
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

func CourseKey(slug string) string     { return "slug:" + slug }
func DisciplineKey(slug string) string { return "slug:" + slug }

const DisciplineListKey = "disciplines:all"

// InvalidateCourseCache drops the cached detail of a course
func InvalidateCourseCache(ctx context.Context, cm *CacheManager, slugs ...string) {
	keys := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		if slug != "" {
			keys = append(keys, CourseKey(slug))
		}
	}
	SafeDelete(ctx, cm.Course, keys...)
}

// InvalidateDisciplineCache drops a discipline's detail and the discipline list
func InvalidateDisciplineCache(ctx context.Context, cm *CacheManager, slugs ...string) {
	keys := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		if slug != "" {
			keys = append(keys, DisciplineKey(slug))
		}
	}
	SafeDelete(ctx, cm.Discipline, keys...)
	SafeDelete(ctx, cm.Stats, DisciplineListKey)
}
