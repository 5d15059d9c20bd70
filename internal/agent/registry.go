package agent

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/lensquant/lensquant/internal/common"
	"github.com/lensquant/lensquant/internal/models"
)

// ToolFunc executes one tool call. Implementations return a fully populated
// ToolResult and never panic across the boundary on purpose; the registry
// converts panics into error results anyway.
type ToolFunc func(ctx context.Context, args map[string]any) *models.ToolResult

// ToolSpec describes a registered tool: its identity, the arguments it cannot
// run without, and an optional follow-up hook the planner consults when
// deciding whether a result warrants another round.
type ToolSpec struct {
	Name        string
	Description string
	Source      string
	Required    []string

	// Followup inspects a result from this tool and returns the next call
	// to make, or nil when the result needs no follow-up.
	Followup func(res *models.ToolResult) *models.ToolCall

	Func ToolFunc
}

// Registry holds the tool table. It is populated once at startup and read-only
// afterwards, so concurrent Invoke calls need no locking.
type Registry struct {
	specs   map[string]*ToolSpec
	timeout time.Duration
	logger  *common.Logger
}

// NewRegistry creates an empty registry with the given per-call timeout.
func NewRegistry(timeout time.Duration, logger *common.Logger) *Registry {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Registry{
		specs:   make(map[string]*ToolSpec),
		timeout: timeout,
		logger:  logger,
	}
}

// Register adds a tool spec. Later registrations with the same name replace
// earlier ones, which keeps test wiring simple.
func (r *Registry) Register(spec *ToolSpec) {
	r.specs[spec.Name] = spec
}

// Spec returns the spec for a tool name, or nil when unknown.
func (r *Registry) Spec(name string) *ToolSpec {
	return r.specs[name]
}

// Names returns the registered tool names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.specs))
	for name := range r.specs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke runs a single tool call under the registry timeout. All failure
// modes, including unknown tools, missing arguments, and panics inside the
// tool, come back as error-shaped ToolResults rather than Go errors so the
// loop can continue with the remaining calls.
func (r *Registry) Invoke(ctx context.Context, call models.ToolCall) (res *models.ToolResult) {
	spec, ok := r.specs[call.Tool]
	if !ok {
		return models.NewToolError(call.Tool, "SYSTEM", models.ErrCodeUnknownTool,
			fmt.Sprintf("no tool registered under %q", call.Tool))
	}

	for _, key := range spec.Required {
		if _, present := call.Args[key]; !present {
			return models.NewToolError(call.Tool, spec.Source, models.ErrCodeInvalidArguments,
				fmt.Sprintf("missing required argument %q", key))
		}
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error().Str("tool", call.Tool).Interface("panic", rec).Msg("tool panicked")
			res = models.NewToolError(call.Tool, spec.Source, models.ErrCodeToolPanic,
				fmt.Sprintf("tool %s panicked: %v", call.Tool, rec))
		}
	}()

	cctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	started := time.Now()
	res = spec.Func(cctx, call.Args)
	if res == nil {
		res = models.NewToolError(call.Tool, spec.Source, models.ErrCodeUpstreamError,
			"tool returned no result")
	}
	if res.Tool == "" {
		res.Tool = call.Tool
	}
	if res.Source == "" {
		res.Source = spec.Source
	}

	r.logger.Debug().
		Str("tool", call.Tool).
		Bool("ok", res.OK).
		Dur("elapsed", time.Since(started)).
		Msg("tool invoked")
	return res
}
