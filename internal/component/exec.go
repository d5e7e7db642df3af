package component

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes a shell command in dir and returns its standard output.
type Runner interface {
	Run(ctx context.Context, dir, command string) ([]byte, error)
}

// ShellRunner runs commands through a POSIX shell.
type ShellRunner struct {
	// Shell is the shell binary. Empty means "sh".
	Shell string
}

// CommandError reports a command that exited with a nonzero status.
type CommandError struct {
	Command  string
	ExitCode int
	Stderr   string
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	msg := fmt.Sprintf("command %q exited with status %d", e.Command, e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

// Run implements Runner.
func (r ShellRunner) Run(ctx context.Context, dir, command string) ([]byte, error) {
	shell := r.Shell
	if shell == "" {
		shell = "sh"
	}
	cmd := exec.CommandContext(ctx, shell, "-c", command)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return stdout.Bytes(), &CommandError{
				Command:  command,
				ExitCode: exitErr.ExitCode(),
				Stderr:   stderr.String(),
			}
		}
		return stdout.Bytes(), fmt.Errorf("running %q: %w", command, err)
	}
	return stdout.Bytes(), nil
}

// Cmd runs command through the environment's Runner. The command runs in the
// work directory carried by ctx, falling back to the root's work directory.
func (b *Base) Cmd(ctx context.Context, command string) ([]byte, error) {
	dir, ok := WorkdirFromContext(ctx)
	if !ok {
		dir = b.Workdir()
	}
	return b.ctx.Environment.runner().Run(ctx, dir, command)
}
