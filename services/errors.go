package services

import "errors"

// Sentinel errors mapped onto the HTTP taxonomy by the controllers.
var (
	// ErrNotFound — referenced entity absent or inactive.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput — the request referenced something unusable, e.g. an
	// inactive product during order materialization.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidState — operation not permitted in the entity's current
	// state, e.g. cancelling a non-pending order or checking out an empty cart.
	ErrInvalidState = errors.New("invalid state")
	// ErrForbidden — authenticated but neither owner nor elevated.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict — duplicate unique key.
	ErrConflict = errors.New("conflict")
)
