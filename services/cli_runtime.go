package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// CLIRuntime runs source through the machine-dialect CLI: compile the
// source to bytecode, then run the bytecode. Each invocation gets its own
// scratch directory, removed when the invocation finishes.
type CLIRuntime struct {
	command  string
	workBase string
}

func NewCLIRuntime(command string) *CLIRuntime {
	return &CLIRuntime{
		command:  command,
		workBase: filepath.Join(os.TempDir(), "dialect-runner"),
	}
}

func (r *CLIRuntime) CompileAndRun(ctx context.Context, source string, debug bool) (*RuntimeResult, error) {
	workDir := filepath.Join(r.workBase, uuid.New().String())
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return nil, fmt.Errorf("create work directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	sourceFile := filepath.Join(workDir, "program.md")
	if err := os.WriteFile(sourceFile, []byte(source), 0644); err != nil {
		return nil, fmt.Errorf("write source file: %w", err)
	}

	// Compile. The CLI writes program.mdbc next to the source file.
	compile := exec.CommandContext(ctx, r.command, "compile", sourceFile)
	var compileStderr bytes.Buffer
	compile.Stderr = &compileStderr
	if err := compile.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, parseCompileDiagnostic(compileStderr.String())
		}
		return nil, fmt.Errorf("start compiler: %w", err)
	}

	bytecodeFile := strings.TrimSuffix(sourceFile, ".md") + ".mdbc"

	args := []string{"run"}
	if debug {
		args = append(args, "--debug")
	}
	args = append(args, bytecodeFile)

	run := exec.CommandContext(ctx, r.command, args...)
	var stdout, stderr bytes.Buffer
	run.Stdout = &stdout
	run.Stderr = &stderr
	if err := run.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, parseRunDiagnostic(stderr.String(), exitErr.ExitCode())
		}
		return nil, fmt.Errorf("start runtime: %w", err)
	}

	return &RuntimeResult{Stdout: stdout.String(), Stderr: stderr.String()}, nil
}

// compileDiagnostic is the structured shape the CLI prints on stderr when
// compilation fails.
type compileDiagnostic struct {
	Message string `json:"message"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
}

func parseCompileDiagnostic(stderr string) *CompileError {
	stderr = strings.TrimSpace(stderr)

	var diag compileDiagnostic
	if err := json.Unmarshal([]byte(stderr), &diag); err == nil && diag.Message != "" {
		return &CompileError{Message: diag.Message, Line: diag.Line, Column: diag.Column}
	}

	if stderr == "" {
		stderr = "Compilation failed"
	}
	return &CompileError{Message: stderr}
}

func parseRunDiagnostic(stderr string, exitCode int) *RunError {
	stderr = strings.TrimSpace(stderr)
	if stderr == "" {
		return &RunError{Message: fmt.Sprintf("Execution failed with exit code %d", exitCode)}
	}

	lines := strings.Split(stderr, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " \t\r")
	}

	// The runtime prints trace lines first and the error message last.
	message := strings.TrimSpace(lines[len(lines)-1])
	if len(lines) == 1 {
		return &RunError{Message: message}
	}
	return &RunError{Message: message, Trace: lines}
}
