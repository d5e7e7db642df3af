package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCodeFromError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{name: "nil error returns success", err: nil, wantCode: ExitSuccess},
		{name: "validation error", err: ErrValidation, wantCode: ExitValidationError},
		{name: "wrapped validation error", err: Wrap(ErrValidation, "schema check failed"), wantCode: ExitValidationError},
		{name: "detail validation error", err: NewValidationError("bad", "env.yaml", "hosts", ""), wantCode: ExitValidationError},
		{name: "configuration error", err: NewConfigurationError("namevar missing", "", "path", ""), wantCode: ExitConfigurationError},
		{name: "already prepared", err: fmt.Errorf("x: %w", ErrAlreadyPrepared), wantCode: ExitConfigurationError},
		{name: "not found error", err: NewNotFoundError("no such type", "", ""), wantCode: ExitNotFound},
		{name: "deploy error", err: fmt.Errorf("host web01: %w", ErrDeploy), wantCode: ExitDeployError},
		{name: "explicit exit error", err: &ExitError{Err: errors.New("x"), Code: 42}, wantCode: 42},
		{name: "unknown error returns general error", err: errors.New("unknown error"), wantCode: ExitGeneralError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, ExitCodeFromError(tt.err))
		})
	}
}

func TestExitCodeName(t *testing.T) {
	assert.Equal(t, "Deploy Error", ExitCodeName(ExitDeployError))
	assert.Equal(t, "Unknown", ExitCodeName(99))
}
