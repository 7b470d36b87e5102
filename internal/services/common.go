package services

import (
	"fmt"
	"runtime/debug"

	"github.com/go-playground/validator/v10"

	"site-admin-backend/internal/apperr"
	"site-admin-backend/internal/logger"
)

// The validator caches struct metadata and is safe for concurrent use.
var validate = validator.New(validator.WithRequiredStructEnabled())

// MaxPageSize bounds a single listing page.
const MaxPageSize = 100

// recoverInto turns a panic inside a public contract into an internal error
// so callers only ever see the (data, error) shape.
func recoverInto(op string, log *logger.Logger, errp *error) {
	if r := recover(); r != nil {
		logger.OrNop(log).Error("panic recovered", "op", op, "panic", r, "stack", string(debug.Stack()))
		*errp = apperr.Internal(op, fmt.Errorf("unexpected failure: %v", r))
	}
}

// PageRange converts a 1-based page into the inclusive zero-based row range
// [(page-1)*pageSize, page*pageSize-1].
func PageRange(page, pageSize int) (from, to int, err error) {
	if page < 1 {
		return 0, 0, fmt.Errorf("page must be >= 1, got %d", page)
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		return 0, 0, fmt.Errorf("page size must be between 1 and %d, got %d", MaxPageSize, pageSize)
	}
	return (page - 1) * pageSize, page*pageSize - 1, nil
}
