package report

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lensquant/lensquant/internal/common"
	"github.com/lensquant/lensquant/internal/interfaces"
	"github.com/lensquant/lensquant/internal/models"
)

// enhancerSystemPrompt pins the LLM to the fixed insights schema. Responses
// that deviate from it are rejected and the caller falls back to rules.
const enhancerSystemPrompt = "You are a quantitative research analyst. Analyze the provided market data " +
	"and respond with a single JSON object and nothing else. The object must contain exactly these keys: " +
	`"market_analysis", "fundamental_analysis", "news_impact", "investment_recommendation", ` +
	`"risk_assessment" (all non-empty strings), and "key_insights" (a non-empty array of strings). ` +
	"Base every statement on the data given; do not invent figures."

// Enhancer produces LLM-derived insights for a report. Any failure along the
// way (transport, malformed JSON, schema violations) returns an error and the
// service substitutes the rule-based fallback.
type Enhancer struct {
	llm    interfaces.LLMClient
	opts   interfaces.CompletionOptions
	logger *common.Logger
}

// NewEnhancer creates an enhancer over the given LLM client.
func NewEnhancer(llm interfaces.LLMClient, opts interfaces.CompletionOptions, logger *common.Logger) *Enhancer {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Enhancer{llm: llm, opts: opts, logger: logger}
}

// Enhance asks the LLM for insights over the collected data.
func (e *Enhancer) Enhance(ctx context.Context, req models.ReportRequest, data *models.SubjectData) (*models.Insights, error) {
	if e == nil || e.llm == nil {
		return nil, fmt.Errorf("enhancer: no llm client configured")
	}

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("enhancer: marshal subject data: %w", err)
	}

	prompt := fmt.Sprintf("Report type: %s\n\nCollected data:\n%s", req.Type, raw)
	out, err := e.llm.Complete(ctx, enhancerSystemPrompt, prompt, e.opts)
	if err != nil {
		return nil, fmt.Errorf("enhancer: completion: %w", err)
	}

	insights, err := parseInsights(out)
	if err != nil {
		e.logger.Warn().Err(err).Msg("llm insights rejected")
		return nil, err
	}
	insights.Origin = models.InsightsOriginLLM
	return insights, nil
}

// parseInsights decodes the model output, tolerating markdown code fences,
// and enforces the full schema.
func parseInsights(out string) (*models.Insights, error) {
	text := stripCodeFences(out)

	var ins models.Insights
	if err := json.Unmarshal([]byte(text), &ins); err != nil {
		return nil, fmt.Errorf("enhancer: decode insights: %w", err)
	}

	missing := missingFields(&ins)
	if len(missing) > 0 {
		return nil, fmt.Errorf("enhancer: insights missing fields: %s", strings.Join(missing, ", "))
	}
	return &ins, nil
}

func missingFields(ins *models.Insights) []string {
	var missing []string
	check := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	check("market_analysis", ins.MarketAnalysis)
	check("fundamental_analysis", ins.FundamentalAnalysis)
	check("news_impact", ins.NewsImpact)
	check("investment_recommendation", ins.InvestmentRecommendation)
	check("risk_assessment", ins.RiskAssessment)
	if len(ins.KeyInsights) == 0 {
		missing = append(missing, "key_insights")
	}
	return missing
}

// stripCodeFences unwraps ```json ... ``` style fencing some models add
// despite instructions.
func stripCodeFences(s string) string {
	text := strings.TrimSpace(s)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if idx := strings.Index(text, "\n"); idx >= 0 {
		text = text[idx+1:]
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}
