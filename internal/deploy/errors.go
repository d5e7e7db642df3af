package deploy

import (
	"fmt"
	"strings"

	cerrors "github.com/opmodel/converge/internal/errors"
)

// HostError reports the failure of one host. Other hosts are unaffected.
type HostError struct {
	// HostName is the failing host.
	HostName string

	// Err is the first hard failure on that host.
	Err error
}

func (e *HostError) Error() string {
	return fmt.Sprintf("host %s: %v", e.HostName, e.Err)
}

func (e *HostError) Unwrap() error {
	return e.Err
}

// Host returns the host name where the error occurred.
func (e *HostError) Host() string {
	return e.HostName
}

// UnknownHostError indicates a host filter named a host the environment
// does not declare.
type UnknownHostError struct {
	// Name is the requested host.
	Name string

	// Available lists the declared hosts.
	Available []string
}

func (e *UnknownHostError) Error() string {
	return fmt.Sprintf("host %q not declared in environment (available: %s)", e.Name, strings.Join(e.Available, ", "))
}

func (e *UnknownHostError) Unwrap() error {
	return cerrors.ErrNotFound
}
