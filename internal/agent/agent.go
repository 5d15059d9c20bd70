package agent

import (
	"context"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/lensquant/lensquant/internal/common"
	"github.com/lensquant/lensquant/internal/interfaces"
	"github.com/lensquant/lensquant/internal/models"
)

// Service is the supervisor agent: one Run call takes a request from raw
// query to response envelope. Safe for concurrent use; each run works on a
// private state and a config snapshot taken at entry.
type Service struct {
	mu  sync.RWMutex
	cfg Config

	registry   *Registry
	colloquial *Colloquializer
	validate   *validator.Validate
	logger     *common.Logger
}

var _ interfaces.AgentService = (*Service)(nil)

// NewService creates the agent service over a built registry. llm may be nil;
// the colloquializer then degrades to a no-op.
func NewService(registry *Registry, cfg Config, llm interfaces.LLMClient, llmOpts interfaces.CompletionOptions, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{
		cfg:        cfg,
		registry:   registry,
		colloquial: NewColloquializer(llm, llmOpts, logger),
		validate:   validator.New(),
		logger:     logger,
	}
}

// UpdateConfig swaps the agent flags between requests. In-flight runs keep
// the snapshot they started with.
func (s *Service) UpdateConfig(cfg Config) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
}

func (s *Service) snapshot() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Run executes one request end to end and always returns an envelope, never
// an error: planning failures return ok:false, everything downstream degrades
// inside an ok:true envelope.
func (s *Service) Run(ctx context.Context, input models.AgentInput) *models.ResponseEnvelope {
	cfg := s.snapshot()
	traceID := uuid.NewString()
	log := s.logger.With().Str("trace_id", traceID).Logger()

	if err := s.validate.Struct(input); err != nil {
		log.Warn().Err(err).Msg("rejecting malformed input")
		return BuildErrorEnvelope(input, models.ErrCodeInvalidInput, err.Error(), traceID)
	}

	intent, perr := Classify(input.Query, input.Options, cfg)
	if perr != nil {
		log.Warn().Str("code", perr.Code).Msg("planning failed")
		return BuildErrorEnvelope(input, perr.Code, perr.Message, traceID)
	}

	st := NewState(input, cfg, traceID, intent)
	loop := NewLoop(s.registry, s.logger)
	loop.Run(ctx, st)

	raw := Compose(st)

	var colloquial *string
	if cfg.ColloquialEnabled && !isReportIntent(intent) {
		lang := ""
		if input.Options != nil {
			lang = input.Options.Lang
		}
		colloquial = s.colloquial.Rewrite(ctx, raw, lang)
	}

	env := BuildEnvelope(st, raw, colloquial)
	log.Info().
		Int("tool_results", len(env.ToolResults)).
		Int("warnings", len(env.Warnings)).
		Int("loops", st.LoopCount).
		Msg("request complete")
	return env
}

// isReportIntent reports whether the run is an explicit report command. The
// report path keeps its deterministic completion message and skips the
// colloquial rewrite.
func isReportIntent(intent Intent) bool {
	_, ok := intent.(ReportCommand)
	return ok
}
