package services

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestParseCompileDiagnostic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		stderr string
		want   *CompileError
	}{
		{
			name:   "structured diagnostic",
			stderr: `{"message": "unexpected token", "line": 2, "column": 5}`,
			want:   &CompileError{Message: "unexpected token", Line: 2, Column: 5},
		},
		{
			name:   "plain text diagnostic",
			stderr: "syntax error near 'Set'\n",
			want:   &CompileError{Message: "syntax error near 'Set'"},
		},
		{
			name:   "silent compiler",
			stderr: "",
			want:   &CompileError{Message: "Compilation failed"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := parseCompileDiagnostic(tt.stderr)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseRunDiagnostic(t *testing.T) {
	t.Parallel()

	t.Run("empty stderr falls back to exit code", func(t *testing.T) {
		t.Parallel()
		got := parseRunDiagnostic("", 3)
		if got.Message != "Execution failed with exit code 3" {
			t.Fatalf("unexpected message: %q", got.Message)
		}
		if got.Trace != nil {
			t.Fatalf("expected no trace, got %v", got.Trace)
		}
	})

	t.Run("single line has no trace", func(t *testing.T) {
		t.Parallel()
		got := parseRunDiagnostic("division by zero\n", 1)
		if got.Message != "division by zero" || got.Trace != nil {
			t.Fatalf("unexpected diagnostic: %+v", got)
		}
	})

	t.Run("multi line keeps trace and last line message", func(t *testing.T) {
		t.Parallel()
		got := parseRunDiagnostic("in main\nin divide\ndivision by zero", 1)
		if got.Message != "division by zero" {
			t.Fatalf("unexpected message: %q", got.Message)
		}
		if len(got.Trace) != 3 {
			t.Fatalf("expected full trace, got %v", got.Trace)
		}
	})
}

func TestCLIRuntimeCompileFailure(t *testing.T) {
	t.Parallel()

	// `false` exits non-zero at the compile step.
	rt := NewCLIRuntime("false")
	_, err := rt.CompileAndRun(context.Background(), "source", false)

	var compileErr *CompileError
	if !errors.As(err, &compileErr) {
		t.Fatalf("expected *CompileError, got %v", err)
	}
	if compileErr.Message != "Compilation failed" {
		t.Fatalf("unexpected message: %q", compileErr.Message)
	}
}

func TestCLIRuntimeCommandNotFound(t *testing.T) {
	t.Parallel()

	rt := NewCLIRuntime("definitely-not-a-real-binary-4f1c")
	_, err := rt.CompileAndRun(context.Background(), "source", false)

	if err == nil {
		t.Fatalf("expected error for missing command")
	}
	var compileErr *CompileError
	var runErr *RunError
	if errors.As(err, &compileErr) || errors.As(err, &runErr) {
		t.Fatalf("missing command must not classify as a program failure: %v", err)
	}
	if !strings.Contains(err.Error(), "start compiler") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCLIRuntimeSucceedsWithQuietCommand(t *testing.T) {
	t.Parallel()

	// `true` exits zero for both steps, producing no output.
	rt := NewCLIRuntime("true")
	result, err := rt.CompileAndRun(context.Background(), "source", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Stdout != "" || result.Stderr != "" {
		t.Fatalf("expected empty output, got %+v", result)
	}
}
