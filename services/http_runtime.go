package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"dialect-runner-server/middleware"
)

// Remote runtime wire statuses
const (
	remoteStatusOK           = "ok"
	remoteStatusCompileError = "compile_error"
	remoteStatusRuntimeError = "runtime_error"
)

type remoteRunRequest struct {
	Code  string `json:"code"`
	Debug bool   `json:"debug"`
}

type remoteRunResponse struct {
	Status  string   `json:"status"`
	Output  string   `json:"output,omitempty"`
	Stderr  string   `json:"stderr,omitempty"`
	Message string   `json:"message,omitempty"`
	Line    int      `json:"line,omitempty"`
	Column  int      `json:"column,omitempty"`
	Trace   []string `json:"trace,omitempty"`
}

// HTTPRuntime delegates execution to a runtime sidecar over HTTP. The
// sidecar owns process isolation; this adapter only translates its wire
// shape into the Runtime contract.
type HTTPRuntime struct {
	baseURL string
	client  *http.Client
}

func NewHTTPRuntime(baseURL string) *HTTPRuntime {
	return &HTTPRuntime{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  middleware.GetXRayHTTPClient(),
	}
}

func (r *HTTPRuntime) CompileAndRun(ctx context.Context, source string, debug bool) (*RuntimeResult, error) {
	body, err := json.Marshal(remoteRunRequest{Code: source, Debug: debug})
	if err != nil {
		return nil, fmt.Errorf("encode runtime request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/run", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build runtime request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call runtime: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("runtime returned status %d", resp.StatusCode)
	}

	var out remoteRunResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode runtime response: %w", err)
	}

	switch out.Status {
	case remoteStatusOK:
		return &RuntimeResult{Stdout: out.Output, Stderr: out.Stderr}, nil
	case remoteStatusCompileError:
		return nil, &CompileError{Message: out.Message, Line: out.Line, Column: out.Column}
	case remoteStatusRuntimeError:
		return nil, &RunError{Message: out.Message, Trace: out.Trace}
	default:
		return nil, fmt.Errorf("unrecognized runtime status: %q", out.Status)
	}
}
