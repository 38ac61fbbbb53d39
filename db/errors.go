package db

import (
	"errors"
	"fmt"
)

// Error categories. Specific errors below wrap one of these, so callers can
// classify with errors.Is and map to HTTP statuses without string matching.
// Not-found is gorm.ErrRecordNotFound, propagated as-is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrInvalidState = errors.New("invalid state")
	ErrConflict     = errors.New("conflict")
)

// Validation errors.
var (
	ErrMissingInput     = fmt.Errorf("%w: missing required input", ErrValidation)
	ErrInvalidPeriod    = fmt.Errorf("%w: end date must not precede start date", ErrValidation)
	ErrOwnCopy          = fmt.Errorf("%w: cannot request your own copy", ErrValidation)
	ErrInstanceMismatch = fmt.Errorf("%w: game instance does not belong to the requested game", ErrValidation)
	ErrStartInPast      = fmt.Errorf("%w: start date is in the past", ErrValidation)
	ErrDamageSeverity   = fmt.Errorf("%w: damage severity must be between 0 and 3", ErrValidation)
	ErrBadStatus        = fmt.Errorf("%w: unsupported target status", ErrValidation)
)

// Conflict errors. Distinct from validation so UI callers can message
// "someone else has it" separately from "your input is wrong".
var ErrUnavailableForPeriod = fmt.Errorf("%w: game instance unavailable for the requested period", ErrConflict)

// Invalid-state errors.
var (
	ErrNotPending      = fmt.Errorf("%w: borrow request is not pending", ErrInvalidState)
	ErrNoOwner         = fmt.Errorf("%w: requested game has no owner", ErrInvalidState)
	ErrOwnerMismatch   = fmt.Errorf("%w: record owner must own the requested copy", ErrInvalidState)
	ErrAlreadyLent     = fmt.Errorf("%w: borrow request already has a lending record", ErrInvalidState)
	ErrCopyUnavailable = fmt.Errorf("%w: game copy is not available", ErrInvalidState)
	ErrRecordClosed    = fmt.Errorf("%w: lending record is closed", ErrInvalidState)
	ErrRecordActive    = fmt.Errorf("%w: lending record is still active", ErrInvalidState)
	ErrRequestLent     = fmt.Errorf("%w: borrow request has an open lending record", ErrInvalidState)
)
