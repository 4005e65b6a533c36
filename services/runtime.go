package services

import (
	"context"
	"fmt"
)

// RuntimeResult is what the language runtime reports when the submitted
// program compiled and ran to completion.
type RuntimeResult struct {
	Stdout string
	Stderr string
}

// CompileError is reported when the source fails to compile. Line and
// Column are 1-based; zero means the runtime did not report a location.
type CompileError struct {
	Message string
	Line    int
	Column  int
}

func (e *CompileError) Error() string {
	return e.Message
}

// RunError is reported when the compiled program fails during execution.
// Trace holds the runtime's stack trace lines when available.
type RunError struct {
	Message string
	Trace   []string
}

func (e *RunError) Error() string {
	return e.Message
}

// Runtime is the external Machine Dialect collaborator. Implementations
// report compile and execution failures as *CompileError and *RunError so
// callers can classify with errors.As instead of matching message text.
// Any other error means the runtime itself misbehaved.
type Runtime interface {
	CompileAndRun(ctx context.Context, source string, debug bool) (*RuntimeResult, error)
}

// NewRuntime creates the configured runtime adapter. For "cli" the target
// is the runtime command name, for "http" the base URL of a runtime sidecar.
func NewRuntime(runtimeType, target string) (Runtime, error) {
	switch runtimeType {
	case "cli":
		return NewCLIRuntime(target), nil
	case "http":
		return NewHTTPRuntime(target), nil
	default:
		return nil, fmt.Errorf("unknown runtime type: %s", runtimeType)
	}
}
