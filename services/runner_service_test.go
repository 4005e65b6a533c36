package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"dialect-runner-server/models"
)

type stubRuntime struct {
	fn func(ctx context.Context, source string, debug bool) (*RuntimeResult, error)
}

func (s *stubRuntime) CompileAndRun(ctx context.Context, source string, debug bool) (*RuntimeResult, error) {
	return s.fn(ctx, source, debug)
}

func TestInvokeSuccess(t *testing.T) {
	t.Parallel()

	runner := NewRunnerService(&stubRuntime{
		fn: func(ctx context.Context, source string, debug bool) (*RuntimeResult, error) {
			return &RuntimeResult{Stdout: "42\n"}, nil
		},
	}, time.Second, 0)

	outcome := runner.Invoke(context.Background(), "Set `x` to _42_.", false)

	if outcome.Kind != models.OutcomeSuccess {
		t.Fatalf("expected success, got kind %d (%s)", outcome.Kind, outcome.Message)
	}
	if outcome.Output != "42\n" {
		t.Fatalf("unexpected output: %q", outcome.Output)
	}
}

func TestInvokeClassifiesByErrorType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantKind models.OutcomeKind
	}{
		{
			name:     "compile error",
			err:      &CompileError{Message: "unexpected token", Line: 2, Column: 5},
			wantKind: models.OutcomeCompileError,
		},
		{
			name:     "run error",
			err:      &RunError{Message: "division by zero", Trace: []string{"at line 1", "division by zero"}},
			wantKind: models.OutcomeRuntimeError,
		},
		{
			name:     "unrecognized error is internal",
			err:      errors.New("runtime emitted garbage"),
			wantKind: models.OutcomeInternalError,
		},
		{
			name:     "deadline exceeded is internal",
			err:      context.DeadlineExceeded,
			wantKind: models.OutcomeInternalError,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			runner := NewRunnerService(&stubRuntime{
				fn: func(ctx context.Context, source string, debug bool) (*RuntimeResult, error) {
					return nil, tt.err
				},
			}, time.Second, 0)

			outcome := runner.Invoke(context.Background(), "source", false)
			if outcome.Kind != tt.wantKind {
				t.Fatalf("expected kind %d, got %d (%s)", tt.wantKind, outcome.Kind, outcome.Message)
			}
			if outcome.Message == "" {
				t.Fatalf("failure outcome must carry a message")
			}
		})
	}
}

func TestInvokeCarriesCompileLocation(t *testing.T) {
	t.Parallel()

	runner := NewRunnerService(&stubRuntime{
		fn: func(ctx context.Context, source string, debug bool) (*RuntimeResult, error) {
			return nil, &CompileError{Message: "unexpected token", Line: 2, Column: 5}
		},
	}, time.Second, 0)

	outcome := runner.Invoke(context.Background(), "source", false)
	if outcome.Location == nil || outcome.Location.Line != 2 || outcome.Location.Column != 5 {
		t.Fatalf("expected location 2:5, got %+v", outcome.Location)
	}
}

func TestInvokeRecoversPanic(t *testing.T) {
	t.Parallel()

	runner := NewRunnerService(&stubRuntime{
		fn: func(ctx context.Context, source string, debug bool) (*RuntimeResult, error) {
			panic("collaborator blew up")
		},
	}, time.Second, 0)

	outcome := runner.Invoke(context.Background(), "source", false)
	if outcome.Kind != models.OutcomeInternalError {
		t.Fatalf("expected internal error, got kind %d", outcome.Kind)
	}
}

func TestInvokeNilResultIsInternal(t *testing.T) {
	t.Parallel()

	runner := NewRunnerService(&stubRuntime{
		fn: func(ctx context.Context, source string, debug bool) (*RuntimeResult, error) {
			return nil, nil
		},
	}, time.Second, 0)

	outcome := runner.Invoke(context.Background(), "source", false)
	if outcome.Kind != models.OutcomeInternalError {
		t.Fatalf("expected internal error for nil result, got kind %d", outcome.Kind)
	}
}

func TestInvokeTimesOut(t *testing.T) {
	t.Parallel()

	runner := NewRunnerService(&stubRuntime{
		fn: func(ctx context.Context, source string, debug bool) (*RuntimeResult, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}, 50*time.Millisecond, 0)

	start := time.Now()
	outcome := runner.Invoke(context.Background(), "Run forever.", false)

	if outcome.Kind != models.OutcomeInternalError {
		t.Fatalf("expected internal error on timeout, got kind %d", outcome.Kind)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("invoke did not return within budget: %s", elapsed)
	}
}

func TestInvokeBoundsConcurrency(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	started := make(chan struct{}, 1)

	runner := NewRunnerService(&stubRuntime{
		fn: func(ctx context.Context, source string, debug bool) (*RuntimeResult, error) {
			select {
			case started <- struct{}{}:
			default:
			}
			select {
			case <-release:
				return &RuntimeResult{}, nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		},
	}, 100*time.Millisecond, 1)

	first := make(chan models.Outcome, 1)
	go func() {
		first <- runner.Invoke(context.Background(), "slow", false)
	}()

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatalf("first invocation never started")
	}

	// Pool is full, so the second invocation must give up within the budget.
	second := runner.Invoke(context.Background(), "queued", false)
	if second.Kind != models.OutcomeInternalError {
		t.Fatalf("expected internal error while pool is exhausted, got kind %d", second.Kind)
	}

	close(release)
	select {
	case outcome := <-first:
		if outcome.Kind != models.OutcomeSuccess {
			t.Fatalf("expected first invocation to succeed, got kind %d (%s)", outcome.Kind, outcome.Message)
		}
	case <-time.After(time.Second):
		t.Fatalf("first invocation never finished")
	}
}

func TestInvokeStableVariantForSameSource(t *testing.T) {
	t.Parallel()

	runner := NewRunnerService(&stubRuntime{
		fn: func(ctx context.Context, source string, debug bool) (*RuntimeResult, error) {
			if source == "bad" {
				return nil, &CompileError{Message: "unexpected token"}
			}
			return &RuntimeResult{Stdout: "ok"}, nil
		},
	}, time.Second, 0)

	for _, source := range []string{"good", "bad"} {
		a := runner.Invoke(context.Background(), source, false)
		b := runner.Invoke(context.Background(), source, false)
		if a.Kind != b.Kind {
			t.Fatalf("source %q: variant changed between invocations: %d vs %d", source, a.Kind, b.Kind)
		}
	}
}
