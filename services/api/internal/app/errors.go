package app

import "errors"

var (
	// ErrInvalidInput marks a request missing required fields or carrying bad values.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned when the addressed record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned for a second history or profile on the same email.
	ErrAlreadyExists = errors.New("already exists")

	// ErrCreateSoundboard wraps any failure after validation in the create flow.
	ErrCreateSoundboard = errors.New("failed to create soundboard")
	ErrPersistence      = errors.New("database operation failed")
	ErrGeneration       = errors.New("text generation failed")

	// ErrFeatureDisabled is returned by Generate when no generator is configured.
	ErrFeatureDisabled = errors.New("feature disabled")
)
