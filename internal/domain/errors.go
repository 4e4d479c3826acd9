package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation совпадает (errors.Is) с любой *ValidationError.
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
)

// ValidationError обязательное поле не заполнено или не разбирается как число.
// Операция прерывается, состояние не меняется.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
