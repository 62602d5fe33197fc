package service

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
)

// waitDelay bounds how long output pipes may stay open after the process
// was killed, e.g. by a grandchild that inherited them.
const waitDelay = 2 * time.Second

// gitInvoker runs git as a child process.
type gitInvoker struct {
	executable string
	// timeout for command execution
	timeout time.Duration
	logger  *zap.Logger
}

// NewGitInvoker creates an Invoker that runs the given git executable.
func NewGitInvoker(executable string, timeout time.Duration, logger *zap.Logger) Invoker {
	if executable == "" {
		executable = DefaultGitExecutable
	}
	if timeout <= 0 {
		timeout = DefaultGitTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &gitInvoker{
		executable: executable,
		timeout:    timeout,
		logger:     logger,
	}
}

// Invoke runs the command and waits for it to exit.
func (g *gitInvoker) Invoke(ctx context.Context, inv Invocation) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	log := g.logger.With(
		zap.String("label", inv.Label),
		zap.String("dir", inv.Dir),
		zap.Strings("args", inv.Args),
	)
	log.Debug("running git")

	cmd := exec.CommandContext(ctx, g.executable, inv.Args...)
	cmd.Dir = inv.Dir
	// Keep git from prompting for credentials or waiting on an editor.
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0", "LC_ALL=C")
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	result := &Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if runErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			// Our own timeout, or the caller canceled (e.g. on interrupt)
			perr := &ProcessError{
				Label:    inv.Label,
				Args:     inv.Args,
				ExitCode: -1,
				Stderr:   result.Stderr,
				Err:      ctxErr,
			}
			if errors.Is(ctxErr, context.DeadlineExceeded) {
				perr.TimedOut = true
				perr.Timeout = g.timeout
				log.Warn("git timed out", zap.Duration("timeout", g.timeout))
			} else {
				log.Warn("git canceled", zap.Error(ctxErr))
			}
			return nil, perr
		}
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			log.Error("git could not be started", zap.Error(runErr))
			return nil, &ProcessError{Label: inv.Label, Args: inv.Args, ExitCode: -1, Err: runErr}
		}
		result.ExitCode = exitErr.ExitCode()
	}
	log = log.With(zap.Int("exit_code", result.ExitCode), zap.Duration("elapsed", time.Since(start)))
	if !isSuccessCode(result.ExitCode, inv.SuccessCodes) {
		log.Debug("git failed", zap.String("stderr", strings.TrimSpace(result.Stderr)))
		return nil, &ProcessError{
			Label:    inv.Label,
			Args:     inv.Args,
			ExitCode: result.ExitCode,
			Stderr:   result.Stderr,
			Err:      runErr,
		}
	}
	log.Debug("git finished")
	return result, nil
}

func isSuccessCode(code int, accepted []int) bool {
	if len(accepted) == 0 {
		return code == 0
	}
	return slices.Contains(accepted, code)
}
