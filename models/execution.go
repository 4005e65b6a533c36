package models

// ExecuteRequest represents the body of POST /execute. Code is a pointer so
// an absent field can be told apart from an empty string during validation.
type ExecuteRequest struct {
	Code  *string `json:"code"`
	Debug bool    `json:"debug"`
}

// ExecuteResponse is the uniform wire result for every execution outcome.
// Exactly one of Result/Error is populated, matching the Success flag.
// DebugInfo is an open mapping, present only when debug was requested and
// the outcome carries diagnostic detail.
type ExecuteResponse struct {
	Success   bool                   `json:"success"`
	Result    *string                `json:"result"`
	Error     *string                `json:"error"`
	DebugInfo map[string]interface{} `json:"debug_info"`
}

// ValidationError codes
const (
	ValidationMissingField   = "missing_field"
	ValidationEmptySource    = "empty_source"
	ValidationSourceTooLarge = "source_too_large"
)

// ValidationError describes a request rejected before the runtime is invoked.
type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ServiceInfo is the metadata returned by GET /
type ServiceInfo struct {
	Message     string `json:"message"`
	Description string `json:"description"`
	Version     string `json:"version"`
	Docs        string `json:"docs"`
}
