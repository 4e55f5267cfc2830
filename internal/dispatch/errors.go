package dispatch

import (
	"errors"
	"fmt"

	"github.com/riverine/ripple/internal/event"
)

// DispatchError represents a failure detected by the driver itself, as
// opposed to an error propagated out of a callback.
type DispatchError struct {
	// Code identifies the error category.
	Code DispatchErrorCode

	// Message is a human-readable description.
	Message string

	// Token identifies the affected dispatch pass.
	Token string

	// Event is the event name being bubbled.
	Event string

	// Entity is the entity at which the failure was detected.
	Entity event.EntityID
}

// DispatchErrorCode categorizes driver errors.
type DispatchErrorCode string

const (
	// ErrCodeCycleDetected indicates the parent chain revisited an entity.
	ErrCodeCycleDetected DispatchErrorCode = "CYCLE_DETECTED"

	// ErrCodeMissingEntity indicates the event targeted an entity that is
	// not in the world.
	ErrCodeMissingEntity DispatchErrorCode = "MISSING_ENTITY"
)

// Error implements the error interface.
func (e *DispatchError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("%s: %s (token=%s, event=%s, entity=%d)", e.Code, e.Message, e.Token, e.Event, e.Entity)
	}
	return fmt.Sprintf("%s: %s (event=%s, entity=%d)", e.Code, e.Message, e.Event, e.Entity)
}

// IsCycleError returns true if the error is a cycle detection error.
// Uses errors.As to handle wrapped errors.
func IsCycleError(err error) bool {
	var de *DispatchError
	if errors.As(err, &de) {
		return de.Code == ErrCodeCycleDetected
	}
	return false
}

// IsMissingEntityError returns true if the error reports a missing target.
// Uses errors.As to handle wrapped errors.
func IsMissingEntityError(err error) bool {
	var de *DispatchError
	if errors.As(err, &de) {
		return de.Code == ErrCodeMissingEntity
	}
	return false
}

// NewCycleError creates a DispatchError for a parent-chain cycle.
func NewCycleError(token, name string, entity event.EntityID) *DispatchError {
	return &DispatchError{
		Code:    ErrCodeCycleDetected,
		Message: "parent chain revisited an entity during bubbling",
		Token:   token,
		Event:   name,
		Entity:  entity,
	}
}

// NewMissingEntityError creates a DispatchError for an absent target.
func NewMissingEntityError(token, name string, entity event.EntityID) *DispatchError {
	return &DispatchError{
		Code:    ErrCodeMissingEntity,
		Message: "event target is not in the world",
		Token:   token,
		Event:   name,
		Entity:  entity,
	}
}
