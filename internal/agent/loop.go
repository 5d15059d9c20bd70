package agent

import (
	"context"
	"fmt"

	"github.com/lensquant/lensquant/internal/common"
	"github.com/lensquant/lensquant/internal/models"
)

// Loop drives the planning/execution cycle: plan a round, fan the calls out,
// collect results, and ask the planner whether the results warrant another
// round. The round count is bounded by Config.MaxToolLoops.
type Loop struct {
	registry *Registry
	planner  *Planner
	logger   *common.Logger
}

// NewLoop creates an execution loop over the registry.
func NewLoop(registry *Registry, logger *common.Logger) *Loop {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Loop{
		registry: registry,
		planner:  NewPlanner(registry),
		logger:   logger,
	}
}

// Run executes rounds until the planner has nothing left to do, tool
// execution is disabled, the round limit is reached, or the request
// context ends. All outcomes surface on the state, never as errors.
func (l *Loop) Run(ctx context.Context, st *State) {
	for {
		calls := l.planner.Plan(st)
		if len(calls) == 0 {
			return
		}

		if !st.Cfg.ExecuteTools {
			st.PlannedUnexecuted = calls
			st.AddWarning(models.WarnExecuteToolsDisabled)
			l.logger.Info().Int("planned", len(calls)).Msg("tool execution disabled; surfacing plan unexecuted")
			return
		}

		if st.LoopCount >= st.Cfg.MaxToolLoops {
			st.AddWarning(fmt.Sprintf("tool_loops_exceeded: %d >= %d", st.LoopCount, st.Cfg.MaxToolLoops))
			l.logger.Warn().Int("loops", st.LoopCount).Msg("tool loop limit reached")
			return
		}

		l.executeRound(ctx, st, calls)
		st.LoopCount++

		if ctx.Err() != nil {
			return
		}
	}
}

// executeRound fans the round's calls out concurrently and appends results in
// completion order. If the request context ends mid-round, results already
// collected are kept and the in-flight remainder is abandoned.
func (l *Loop) executeRound(ctx context.Context, st *State, calls []models.ToolCall) {
	st.BeginRound()

	results := make(chan *models.ToolResult, len(calls))
	for _, call := range calls {
		go func(call models.ToolCall) {
			results <- l.registry.Invoke(ctx, call)
		}(call)
	}

	for range calls {
		select {
		case res := <-results:
			st.Results = append(st.Results, *res)
		case <-ctx.Done():
			l.logger.Warn().Err(ctx.Err()).Msg("round interrupted; dropping in-flight calls")
			return
		}
	}
}
