package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ProcessError is returned when the external tool exits with a code that the
// invocation did not declare as successful, or when it could not be run at all.
type ProcessError struct {
	Label    string
	Args     []string
	ExitCode int
	Stderr   string
	TimedOut bool
	Timeout  time.Duration
	Err      error
}

func (e *ProcessError) Error() string {
	cmd := strings.Join(e.Args, " ")
	if e.TimedOut {
		return fmt.Sprintf("%s: git %s timed out after %v", e.Label, cmd, e.Timeout)
	}
	if errors.Is(e.Err, context.Canceled) {
		return fmt.Sprintf("%s: git %s was canceled", e.Label, cmd)
	}
	if e.ExitCode < 0 {
		return fmt.Sprintf("%s: git %s could not be started: %v", e.Label, cmd, e.Err)
	}
	stderr := strings.TrimSpace(e.Stderr)
	if stderr != "" {
		return fmt.Sprintf("%s: git %s failed with exit code %d (stderr: %s)", e.Label, cmd, e.ExitCode, stderr)
	}
	return fmt.Sprintf("%s: git %s failed with exit code %d", e.Label, cmd, e.ExitCode)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// ExitCodeOf returns the exit code carried by err, or -1 when err does not
// wrap a *ProcessError.
func ExitCodeOf(err error) int {
	var pe *ProcessError
	if errors.As(err, &pe) {
		return pe.ExitCode
	}
	return -1
}
