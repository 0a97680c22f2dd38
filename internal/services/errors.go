// Package services holds the catalog, customer, invoice and user operations
// behind the HTTP handlers.
package services

import (
	"errors"

	"github.com/diewo77/go-inventory/validation"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ValidationError carries a user-facing message and per-field codes.
type ValidationError struct {
	Message string
	Fields  validation.Violations
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(msg string, fields validation.Violations) error {
	if len(fields) == 0 {
		fields = nil
	}
	return &ValidationError{Message: msg, Fields: fields}
}

// NotFoundError names the missing entity.
type NotFoundError struct{ Entity string }

func (e *NotFoundError) Error() string { return e.Entity + " not found" }
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func notFound(entity string) error { return &NotFoundError{Entity: entity} }

// ConflictError describes a uniqueness violation.
type ConflictError struct{ Message string }

func (e *ConflictError) Error() string { return e.Message }
func (e *ConflictError) Unwrap() error { return ErrConflict }

// Viewer is the caller a listing is scoped to. Admins see every record.
type Viewer struct {
	UserID uint
	Admin  bool
}

// Page bounds. Limits above MaxLimit are clamped.
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

func totalPages(total int64, limit int) int {
	if total == 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
