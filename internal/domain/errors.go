package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// record does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, end date before start date).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned when a proposed reservation interval overlaps an
// existing reservation for the same car. Nothing is written when this is
// returned. Handlers should map this to HTTP 409 Conflict.
var ErrConflict = errors.New("booking conflict")
