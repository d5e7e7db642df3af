//nolint:revive // Package name matches the package it tests
package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors(t *testing.T) {
	assert.NotEqual(t, ErrConfiguration, ErrValidation)
	assert.NotEqual(t, ErrConfiguration, ErrNotFound)
	assert.NotEqual(t, ErrDeploy, ErrAlreadyPrepared)
}

func TestDetailErrorError(t *testing.T) {
	detail := &DetailError{
		Type:     "configuration invalid",
		Message:  "namevar path required",
		Location: "/srv/defs/web.cue:12",
		Field:    "path",
		Context:  map[string]string{"Type": "file", "Host": "web01"},
		Hint:     "Set attributes.path",
	}

	out := detail.Error()

	assert.Contains(t, out, "Error: configuration invalid")
	assert.Contains(t, out, "Location: /srv/defs/web.cue:12")
	assert.Contains(t, out, "Field: path")
	assert.Contains(t, out, "Type: file")
	assert.Contains(t, out, "namevar path required")
	assert.Contains(t, out, "Hint: Set attributes.path")
	assert.Less(t, strings.Index(out, "Host: web01"), strings.Index(out, "Type: file"), "context keys are sorted")
}

func TestDetailErrorUnwrap(t *testing.T) {
	detail := &DetailError{Type: "test", Message: "test message", Cause: ErrValidation}

	assert.True(t, errors.Is(detail, ErrValidation))
	assert.Equal(t, ErrValidation, detail.Unwrap())
}

func TestNewConfigurationError(t *testing.T) {
	err := NewConfigurationError("missing value", "defs.cue", "path", "")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfiguration))

	var detail *DetailError
	require.True(t, errors.As(err, &detail))
	assert.Equal(t, "configuration invalid", detail.Type)
	assert.Equal(t, "path", detail.Field)
}

func TestNewNotFoundError(t *testing.T) {
	err := NewNotFoundError(`component type "nginx" not registered`, "defs.cue", "known types: file")

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "known types: file")
}

func TestWrap(t *testing.T) {
	wrapped := Wrap(ErrValidation, "environment check failed")

	assert.True(t, errors.Is(wrapped, ErrValidation))
	assert.Contains(t, wrapped.Error(), "environment check failed")
}

func TestExitError(t *testing.T) {
	inner := fmt.Errorf("host web01: %w", ErrDeploy)
	exitErr := &ExitError{Err: inner, Code: 4}

	assert.Equal(t, inner.Error(), exitErr.Error())
	assert.True(t, errors.Is(exitErr, ErrDeploy))
}
