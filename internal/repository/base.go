// Package repository implements the data access layer for the application.
package repository

import (
	"errors"
	"fmt"

	"vecinu/internal/models"

	"gorm.io/gorm"
)

const (
	// DefaultPageSize is used when a caller does not ask for a limit.
	DefaultPageSize = 20
	// MaxPageSize caps cursor pages.
	MaxPageSize = 50
)

// ClampLimit normalises a requested page size.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultPageSize
	}
	if limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}

// Page is one cursor page of results.
type Page[T any] struct {
	Items      []T
	NextCursor string
	HasMore    bool
}

// pageOf trims the extra look-ahead row and builds the next cursor from the last item kept.
func pageOf[T any](rows []T, limit int, cursorOf func(T) string) Page[T] {
	page := Page[T]{Items: rows}
	if len(rows) > limit {
		page.Items = rows[:limit]
		page.HasMore = true
	}
	if page.HasMore && len(page.Items) > 0 {
		page.NextCursor = cursorOf(page.Items[len(page.Items)-1])
	}
	if page.Items == nil {
		page.Items = []T{}
	}
	return page
}

// Offset converts a 1-based page number into an offset for admin listings.
func Offset(page, limit int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit
}

// notFound maps gorm.ErrRecordNotFound to the NotFound AppError and wraps
// anything else.
func notFound(err error, resource string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return fmt.Errorf("load %s: %w", resource, err)
}

// likePattern builds a case-insensitive substring pattern, escaping LIKE wildcards.
func likePattern(q string) string {
	escaped := make([]rune, 0, len(q)+2)
	escaped = append(escaped, '%')
	for _, r := range q {
		if r == '%' || r == '_' || r == '\\' {
			escaped = append(escaped, '\\')
		}
		escaped = append(escaped, r)
	}
	escaped = append(escaped, '%')
	return string(escaped)
}
