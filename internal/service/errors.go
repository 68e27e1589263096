package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAlreadyExists is returned when a toggle add finds (or races into)
	// an existing join row.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotFound is returned when a toggle remove has nothing to delete.
	ErrNotFound = errors.New("not found")
	// ErrSelfSubscription rejects actor == target before any lookup.
	ErrSelfSubscription = errors.New("cannot subscribe to self")
	// ErrPermissionDenied is returned for non-author mutation attempts.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrEmptyCart signals a shopping list download with nothing in the cart.
	ErrEmptyCart = errors.New("shopping cart is empty")
	// ErrInvalidCredentials covers both unknown email and wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError accumulates every violation grouped by field name so a
// client can fix all of them in one round trip.
type ValidationError struct {
	Fields map[string][]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// Add appends a message under the given field.
func (e *ValidationError) Add(field, message string) {
	e.Fields[field] = append(e.Fields[field], message)
}

// Empty reports whether any violation was recorded.
func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

// ErrOrNil returns the error only when violations were recorded, so call
// sites can `return v.ErrOrNil()` after validating.
func (e *ValidationError) ErrOrNil() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("validation failed:")
	for field, msgs := range e.Fields {
		fmt.Fprintf(&b, " %s: %s;", field, strings.Join(msgs, ", "))
	}
	return strings.TrimSuffix(b.String(), ";")
}

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
