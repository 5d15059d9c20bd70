package agent

import (
	"context"
	"strings"

	"github.com/lensquant/lensquant/internal/common"
	"github.com/lensquant/lensquant/internal/interfaces"
)

// ColloquialSystemPrompt constrains the rewrite to the facts already present
// in the deterministic answer. It is echoed back in the envelope's nlg block
// for auditability.
const ColloquialSystemPrompt = "You are a financial research assistant. Rewrite the formal summary " +
	"from the user message into a friendly, conversational reply in the same language. Preserve every " +
	"number, date, symbol, and fact exactly as given. Do not add information that is not in the summary. " +
	"Keep it concise."

// colloquialSystemPrompt returns the rewrite instruction, adding an explicit
// response language when the request names one.
func colloquialSystemPrompt(lang string) string {
	if lang == "" {
		return ColloquialSystemPrompt
	}
	return ColloquialSystemPrompt + " Respond in " + lang + "."
}

// Colloquializer optionally rewrites the deterministic answer into a casual
// register. It is strictly fail-soft: any LLM failure yields nil and the raw
// answer stands.
type Colloquializer struct {
	llm    interfaces.LLMClient
	opts   interfaces.CompletionOptions
	logger *common.Logger
}

// NewColloquializer creates a colloquializer over the given LLM client. A nil
// client is allowed and produces a no-op rewriter.
func NewColloquializer(llm interfaces.LLMClient, opts interfaces.CompletionOptions, logger *common.Logger) *Colloquializer {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Colloquializer{llm: llm, opts: opts, logger: logger}
}

// Rewrite returns the colloquial rendition of raw, or nil when no rewrite is
// available. lang may be empty, in which case the answer's language is kept.
// Failures are logged but never surface as warnings or errors.
func (c *Colloquializer) Rewrite(ctx context.Context, raw, lang string) *string {
	if c == nil || c.llm == nil {
		return nil
	}

	out, err := c.llm.Complete(ctx, colloquialSystemPrompt(lang), raw, c.opts)
	if err != nil {
		c.logger.Warn().Err(err).Msg("colloquial rewrite failed; keeping deterministic answer")
		return nil
	}

	trimmed := strings.TrimSpace(out)
	if trimmed == "" {
		c.logger.Warn().Msg("colloquial rewrite returned empty text; keeping deterministic answer")
		return nil
	}
	return &trimmed
}
