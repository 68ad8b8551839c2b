package domain

import (
	"errors"
	"fmt"
)

// ValidationError covers malformed or missing caller input. Surfaced
// immediately, never retried.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func NewValidationError(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// PreconditionError covers state that rules a transition out: no active phase,
// no successor phase type, a conflicting active phase.
type PreconditionError struct {
	Msg string
}

func (e *PreconditionError) Error() string { return e.Msg }

// NotFoundError covers references to accounts or phases that do not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func NewNotFoundError(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

var (
	ErrNoActivePhase     = &PreconditionError{Msg: "account has no active phase"}
	ErrNoSuccessorPhase  = &PreconditionError{Msg: "funded phase has no successor"}
	ErrActivePhaseExists = &PreconditionError{Msg: "account already has an active phase"}

	// ErrConcurrencyConflict means the one-active-phase invariant re-check
	// failed at commit time. Safe to retry with fresh state.
	ErrConcurrencyConflict = errors.New("concurrent phase transition conflict")
)

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}

func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}
