package domain

import "errors"

var (
	ErrOrderingClosed    = errors.New("ordering is closed")
	ErrCutoffPassed      = errors.New("order cutoff has passed")
	ErrInvalidItem       = errors.New("invalid item")
	ErrDuplicateOrder    = errors.New("an active order already exists for this day")
	ErrNotCancellable    = errors.New("order cannot be cancelled")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")

	// ErrStore hides storage failures from callers; the detail is logged where
	// it happens.
	ErrStore = errors.New("store failure")
)
