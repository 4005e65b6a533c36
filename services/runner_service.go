package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dialect-runner-server/models"
)

const DefaultExecutionTimeout = 30 * time.Second

// RunnerService invokes the language runtime and normalizes whatever comes
// back into exactly one Outcome. No failure crosses this boundary: runtime
// errors, panics and timeouts all come out as Outcome values.
type RunnerService struct {
	runtime Runtime
	timeout time.Duration
	sem     chan struct{} // nil when concurrency is unbounded
}

// NewRunnerService constructs a RunnerService. maxConcurrent bounds the
// number of simultaneous runtime invocations; zero means unbounded.
func NewRunnerService(runtime Runtime, timeout time.Duration, maxConcurrent int) *RunnerService {
	if timeout <= 0 {
		timeout = DefaultExecutionTimeout
	}
	var sem chan struct{}
	if maxConcurrent > 0 {
		sem = make(chan struct{}, maxConcurrent)
	}
	return &RunnerService{runtime: runtime, timeout: timeout, sem: sem}
}

// Invoke runs source through the runtime under the configured wall-clock
// budget and classifies the result. Classification goes by error type, not
// message text: unrecognized conditions land in OutcomeInternalError.
func (s *RunnerService) Invoke(ctx context.Context, source string, debug bool) (outcome models.Outcome) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			outcome = models.Outcome{
				Kind:       models.OutcomeInternalError,
				Message:    fmt.Sprintf("runtime panicked: %v", r),
				DurationMs: time.Since(start).Milliseconds(),
			}
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if s.sem != nil {
		select {
		case s.sem <- struct{}{}:
			defer func() { <-s.sem }()
		case <-ctx.Done():
			return s.timeoutOutcome(start)
		}
	}

	result, err := s.runtime.CompileAndRun(ctx, source, debug)
	elapsed := time.Since(start).Milliseconds()

	if err == nil {
		if result == nil {
			return models.Outcome{
				Kind:       models.OutcomeInternalError,
				Message:    "runtime returned no result",
				DurationMs: elapsed,
			}
		}
		return models.Outcome{
			Kind:       models.OutcomeSuccess,
			Output:     result.Stdout,
			Stderr:     result.Stderr,
			DurationMs: elapsed,
		}
	}

	var compileErr *CompileError
	if errors.As(err, &compileErr) {
		o := models.Outcome{
			Kind:       models.OutcomeCompileError,
			Message:    compileErr.Message,
			DurationMs: elapsed,
		}
		if compileErr.Line > 0 {
			o.Location = &models.SourceLocation{Line: compileErr.Line, Column: compileErr.Column}
		}
		return o
	}

	var runErr *RunError
	if errors.As(err, &runErr) {
		return models.Outcome{
			Kind:       models.OutcomeRuntimeError,
			Message:    runErr.Message,
			Trace:      runErr.Trace,
			DurationMs: elapsed,
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return s.timeoutOutcome(start)
	}

	return models.Outcome{
		Kind:       models.OutcomeInternalError,
		Message:    fmt.Sprintf("Unexpected error: %v", err),
		DurationMs: elapsed,
	}
}

func (s *RunnerService) timeoutOutcome(start time.Time) models.Outcome {
	return models.Outcome{
		Kind:       models.OutcomeInternalError,
		Message:    fmt.Sprintf("Execution timed out after %s", s.timeout),
		DurationMs: time.Since(start).Milliseconds(),
	}
}
