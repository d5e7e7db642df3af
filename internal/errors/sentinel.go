package errors

import "errors"

// Sentinel errors for known conditions.
var (
	// ErrConfiguration indicates invalid component or environment configuration,
	// such as a missing namevar value or an unknown attribute.
	ErrConfiguration = errors.New("configuration error")

	// ErrValidation indicates a definition or environment file failed validation.
	ErrValidation = errors.New("validation error")

	// ErrNotFound indicates a component type, definition, host, or hook was not found.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyPrepared indicates a component was prepared a second time.
	ErrAlreadyPrepared = errors.New("component already prepared")

	// ErrDeploy indicates a verify or update step failed.
	ErrDeploy = errors.New("deploy failed")
)
