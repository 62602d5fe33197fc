package service

import "time"

// Timeout constants for service operations
const (
	// DefaultGitTimeout bounds a single git invocation
	DefaultGitTimeout = 5 * time.Minute
	// DefaultGitExecutable is used when no executable is configured
	DefaultGitExecutable = "git"
)

// ExitCodeFatal is what git exits with when it gives up, e.g. when it cannot
// parse the submodule configuration.
const ExitCodeFatal = 128
