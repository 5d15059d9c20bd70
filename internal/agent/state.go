// Package agent implements the supervisor agent orchestration core: planning,
// bounded tool execution, response composition, and envelope assembly.
package agent

import (
	"time"

	"github.com/lensquant/lensquant/internal/common"
	"github.com/lensquant/lensquant/internal/models"
)

// Config is the per-request snapshot of the process-wide agent flags. It is
// copied by value at the start of every run so hot-reloaded settings never
// change mid-request.
type Config struct {
	ExecuteTools      bool
	ColloquialEnabled bool
	MaxToolLoops      int
	ReportEnhancement bool
	NewsTopK          int
	MacroLastN        int
	ToolTimeout       time.Duration
}

// ConfigFromCommon builds an agent Config from the application configuration.
func ConfigFromCommon(c common.AgentConfig) Config {
	cfg := Config{
		ExecuteTools:      c.ExecuteTools,
		ColloquialEnabled: c.ColloquialEnabled,
		MaxToolLoops:      c.MaxToolLoops,
		ReportEnhancement: c.ReportEnhancement,
		NewsTopK:          c.NewsTopK,
		MacroLastN:        c.MacroLastN,
		ToolTimeout:       c.GetToolTimeout(),
	}
	if cfg.MaxToolLoops <= 0 {
		cfg.MaxToolLoops = 3
	}
	if cfg.NewsTopK <= 0 {
		cfg.NewsTopK = 3
	}
	if cfg.MacroLastN <= 0 {
		cfg.MacroLastN = 6
	}
	return cfg
}

// State is the per-request run state. Created fresh for every request and
// discarded once the envelope is built.
type State struct {
	Query     string
	InputType string
	SessionID string
	TraceID   string
	Opts      *models.AgentOptions
	Cfg       Config
	Intent    Intent

	// Results grow in completion order; roundStart marks where the most
	// recent execution round began.
	Results    []models.ToolResult
	roundStart int

	// PlannedUnexecuted holds the plan that was surfaced but not run when
	// tool execution is disabled.
	PlannedUnexecuted []models.ToolCall

	LoopCount int
	Warnings  []string
}

// NewState creates run state for one request.
func NewState(input models.AgentInput, cfg Config, traceID string, intent Intent) *State {
	return &State{
		Query:     input.Query,
		InputType: input.InputType,
		SessionID: input.SessionID,
		TraceID:   traceID,
		Opts:      input.Options,
		Cfg:       cfg,
		Intent:    intent,
	}
}

// AddWarning appends a warning code, skipping duplicates while preserving order.
func (s *State) AddWarning(w string) {
	for _, existing := range s.Warnings {
		if existing == w {
			return
		}
	}
	s.Warnings = append(s.Warnings, w)
}

// BeginRound marks the start of a new execution round.
func (s *State) BeginRound() {
	s.roundStart = len(s.Results)
}

// LastRound returns the results collected during the most recent round.
func (s *State) LastRound() []models.ToolResult {
	if s.roundStart >= len(s.Results) {
		return nil
	}
	return s.Results[s.roundStart:]
}
