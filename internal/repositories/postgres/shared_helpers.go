package postgres

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-review-service/internal/query"
)

// handleDBError is a package-level helper for handling database errors
func handleDBError(err error, operation string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s failed: %w", operation, err)
}

func getDB(db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}

// applyKeywords matches any keyword against the padded token index column
func applyKeywords(q *gorm.DB, column string, keywords []string) *gorm.DB {
	if len(keywords) == 0 {
		return q
	}
	conditions := make([]string, len(keywords))
	args := make([]interface{}, len(keywords))
	for i, keyword := range keywords {
		conditions[i] = column + " LIKE ?"
		args[i] = "% " + keyword + " %"
	}
	return q.Where("("+strings.Join(conditions, " OR ")+")", args...)
}

func applyRangeFilters(q *gorm.DB, filters []query.RangeFilter) *gorm.DB {
	for _, filter := range filters {
		clause, args := filter.Clause()
		q = q.Where(clause, args...)
	}
	return q
}

func applyPagination(q *gorm.DB, limit, offset int) *gorm.DB {
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	return q
}

// existsBy checks a unique column, ignoring the record with excludeID
func existsBy(ctx context.Context, db *gorm.DB, model interface{}, column, value, excludeID string) (bool, error) {
	var count int64
	q := db.WithContext(ctx).Model(model).Where(column+" = ?", value)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// selectPublicUser limits preloaded authors to their public fields
func selectPublicUser(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "image_url", "created_at", "updated_at")
}
