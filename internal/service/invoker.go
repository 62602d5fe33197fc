package service

import "context"

// Invocation describes a single run of the external version-control tool.
type Invocation struct {
	// Args are passed to the executable as-is.
	Args []string
	// Dir is the working directory, usually the repository root.
	Dir string
	// Label names the operation in logs and errors.
	Label string
	// SuccessCodes are the exit codes treated as success. Empty means {0}.
	SuccessCodes []int
}

// Result is the outcome of an invocation whose exit code was declared successful.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Invoker runs the external version-control tool.
type Invoker interface {
	Invoke(ctx context.Context, inv Invocation) (*Result, error)
}
