package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/brfrauches/augmend-71119/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrAIUnavailable = errors.New("ai gateway unavailable")
	ErrAIResponse    = errors.New("invalid AI response format")
	ErrNotFood       = errors.New("image does not look like a meal")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// notFound turns gorm's record-not-found into ErrNotFound for what.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLSTATE 23505") || strings.Contains(msg, "duplicate key")
}

// FileStore persists decoded uploads and returns a public URL.
type FileStore interface {
	Upload(ctx context.Context, f *utils.DecodedFile, prefix string, owner uuid.UUID) (string, error)
}

func nonNegative(field string, v *float64) error {
	if v != nil && *v < 0 {
		return invalidf("%s must not be negative", field)
	}
	return nil
}

func percent(field string, v *float64) error {
	if v != nil && (*v < 0 || *v > 100) {
		return invalidf("%s must be between 0 and 100", field)
	}
	return nil
}
