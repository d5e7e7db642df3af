package errors

import "errors"

// Exit codes returned by the converge binary.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError = 1

	// ExitValidationError indicates a definition, environment or config file
	// failed validation.
	ExitValidationError = 2

	// ExitDeployError indicates at least one host failed to converge.
	ExitDeployError = 3

	// ExitConfigurationError indicates invalid component configuration, such
	// as a missing namevar or an unknown attribute.
	ExitConfigurationError = 4

	// ExitNotFound indicates a definition, component type, host or hook was
	// not found.
	ExitNotFound = 5
)

// ExitCodeName returns the name of the exit code.
func ExitCodeName(code int) string {
	switch code {
	case ExitSuccess:
		return "Success"
	case ExitGeneralError:
		return "General Error"
	case ExitValidationError:
		return "Validation Error"
	case ExitDeployError:
		return "Deploy Error"
	case ExitConfigurationError:
		return "Configuration Error"
	case ExitNotFound:
		return "Not Found"
	default:
		return "Unknown"
	}
}

// ExitCodeFromError determines the exit code for err.
func ExitCodeFromError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	switch {
	case errors.Is(err, ErrDeploy):
		return ExitDeployError
	case errors.Is(err, ErrValidation):
		return ExitValidationError
	case errors.Is(err, ErrConfiguration), errors.Is(err, ErrAlreadyPrepared):
		return ExitConfigurationError
	case errors.Is(err, ErrNotFound):
		return ExitNotFound
	default:
		return ExitGeneralError
	}
}
