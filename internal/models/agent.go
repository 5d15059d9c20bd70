// Package models defines data structures for Lensquant
package models

import "time"

// Warning codes accumulated across the workflow stages.
const (
	WarnExecuteToolsDisabled = "execute_tools_disabled"
	WarnPDFGenerationFailed  = "pdf_generation_failed"
	WarnPPTXGenerationFailed = "pptx_generation_failed"
)

// Tool error codes. Tool invocation never returns a Go error; failures are
// surfaced as ToolResult{OK:false, Error:<code>}.
const (
	ErrCodeMissingAPIKey    = "missing_api_key"
	ErrCodeUpstreamError    = "upstream_error"
	ErrCodeTimeout          = "timeout"
	ErrCodeInvalidArguments = "invalid_arguments"
	ErrCodeUnknownTool      = "unknown_tool"
	ErrCodeToolPanic        = "tool_panic"
	ErrCodeNoProvider       = "provider_unavailable"
)

// Planning error codes (the only ok:false path in the envelope).
const (
	ErrCodeEmptyQuery     = "empty_query"
	ErrCodeUnknownCommand = "unknown_command"
	ErrCodeInvalidInput   = "invalid_input"
)

// AgentInput is the single entry operation payload.
type AgentInput struct {
	InputType string        `json:"input_type" validate:"required,oneof=text"`
	Query     string        `json:"query" validate:"required"`
	SessionID string        `json:"session_id,omitempty"`
	Options   *AgentOptions `json:"options,omitempty"`
}

// AgentOptions carries optional per-request tuning recognized by the core.
// IncludeSources is a pointer so an absent field means "include" while an
// explicit false drops the provenance block from the envelope.
type AgentOptions struct {
	Lang           string `json:"lang,omitempty"`
	TopK           int    `json:"top_k,omitempty" validate:"omitempty,min=1,max=50"`
	IncludeSources *bool  `json:"include_sources,omitempty"`
	Format         string `json:"format,omitempty" validate:"omitempty,oneof=markdown pdf pptx"`
}

// ToolCall is one planned tool invocation.
type ToolCall struct {
	Tool      string         `json:"tool"`
	Args      map[string]any `json:"args"`
	Rationale string         `json:"rationale,omitempty"`
}

// ToolResult is the outcome of one tool invocation. Exactly one of Data/Error
// is populated, keyed off OK.
type ToolResult struct {
	OK        bool   `json:"ok"`
	Source    string `json:"source"`
	Tool      string `json:"tool"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	Logs      string `json:"logs,omitempty"`
	Timestamp string `json:"timestamp"`
}

// NewToolResult returns a successful result stamped with the current time.
func NewToolResult(tool, source string, data any, logs string) *ToolResult {
	return &ToolResult{
		OK:        true,
		Source:    source,
		Tool:      tool,
		Data:      data,
		Logs:      logs,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// NewToolError returns a failed result stamped with the current time.
func NewToolError(tool, source, code, logs string) *ToolResult {
	return &ToolResult{
		OK:        false,
		Source:    source,
		Tool:      tool,
		Error:     code,
		Logs:      logs,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// Source identifies a data provider that contributed to a response.
type Source struct {
	Source    string `json:"source"`
	Timestamp string `json:"timestamp,omitempty"`
	Tool      string `json:"tool,omitempty"`
}

// NLG carries the narrative tiers of a response. Colloquial is nil when the
// feature is disabled or the rewrite failed (the raw narrative stays
// authoritative either way).
type NLG struct {
	Raw          string  `json:"raw,omitempty"`
	Colloquial   *string `json:"colloquial"`
	SystemPrompt string  `json:"system_prompt,omitempty"`
}

// ReportArtifact describes one generated report file.
type ReportArtifact struct {
	Path       string `json:"path"`
	Format     string `json:"format"` // markdown, pdf, pptx
	Size       int64  `json:"size"`
	RenderMode string `json:"render_mode,omitempty"` // auto/overlay/acroform/unknown
}

// ResponseEnvelope is the final result returned to the caller. OK is false only
// for planning-stage failures so severe no partial response exists; every other
// failure mode degrades to OK:true with warnings and explanatory content.
type ResponseEnvelope struct {
	OK          bool             `json:"ok"`
	Response    string           `json:"response,omitempty"`
	InputType   string           `json:"input_type"`
	ToolResults []ToolResult     `json:"tool_results,omitempty"`
	Sources     []Source         `json:"sources,omitempty"`
	Warnings    []string         `json:"warnings,omitempty"`
	Error       string           `json:"error,omitempty"`
	Timestamp   string           `json:"timestamp"`
	TraceID     string           `json:"trace_id,omitempty"`
	SessionID   string           `json:"session_id,omitempty"`
	NLG         *NLG             `json:"nlg,omitempty"`
	OutputFiles []ReportArtifact `json:"output_files,omitempty"`
}

// ProviderError is an error from an external provider carrying a stable code
// that maps onto ToolResult.Error.
type ProviderError struct {
	Code    string
	Message string
}

func (e *ProviderError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Code + ": " + e.Message
}

// NewProviderError creates a provider error with the given code
func NewProviderError(code, message string) *ProviderError {
	return &ProviderError{Code: code, Message: message}
}
