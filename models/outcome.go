package models

import (
	"strings"
)

// OutcomeKind tags the variants of an execution outcome.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeCompileError
	OutcomeRuntimeError
	OutcomeInternalError
)

// SourceLocation points at the offending position in the submitted source.
// Line and Column are 1-based.
type SourceLocation struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Outcome is the normalized result of one runtime invocation, before HTTP
// formatting. Output is set for successes only; Message for the three
// failure kinds; Location and Trace only when the runtime reported them.
type Outcome struct {
	Kind       OutcomeKind     `json:"kind"`
	Output     string          `json:"output,omitempty"`
	Stderr     string          `json:"stderr,omitempty"`
	Message    string          `json:"message,omitempty"`
	Location   *SourceLocation `json:"location,omitempty"`
	Trace      []string        `json:"trace,omitempty"`
	DurationMs int64           `json:"duration_ms"`
}

// SuccessMarker is returned as the result when a program completes without
// producing any output.
const SuccessMarker = "Execution completed successfully"

// Compose maps an outcome onto the wire response. Pure: no side effects,
// no global state.
func Compose(o Outcome, debugRequested bool) ExecuteResponse {
	var resp ExecuteResponse

	if o.Kind == OutcomeSuccess {
		resp.Success = true
		result := strings.TrimSpace(o.Output)
		if result == "" {
			result = SuccessMarker
		}
		resp.Result = &result
	} else {
		message := o.Message
		resp.Error = &message
	}

	if !debugRequested {
		return resp
	}

	info := map[string]interface{}{
		"duration_ms": o.DurationMs,
	}
	if o.Location != nil {
		info["line"] = o.Location.Line
		info["column"] = o.Location.Column
	}
	if len(o.Trace) > 0 {
		info["trace"] = o.Trace
	}
	if stderr := strings.TrimSpace(o.Stderr); stderr != "" {
		info["stderr"] = stderr
	}
	resp.DebugInfo = info

	return resp
}
