package agent

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lensquant/lensquant/internal/common"
	"github.com/lensquant/lensquant/internal/interfaces"
	"github.com/lensquant/lensquant/internal/models"
)

// stubFMP serves canned market data.
type stubFMP struct {
	quoteCalls [][]string
	quoteErr   error
}

func (s *stubFMP) GetQuote(ctx context.Context, symbols []string) ([]models.Quote, error) {
	s.quoteCalls = append(s.quoteCalls, symbols)
	if s.quoteErr != nil {
		return nil, s.quoteErr
	}
	quotes := make([]models.Quote, 0, len(symbols))
	for _, sym := range symbols {
		quotes = append(quotes, models.Quote{Symbol: sym, Price: 100, Change: 1, ChangePct: 1})
	}
	return quotes, nil
}

func (s *stubFMP) GetProfile(ctx context.Context, symbols []string) ([]models.CompanyProfile, error) {
	profiles := make([]models.CompanyProfile, 0, len(symbols))
	for _, sym := range symbols {
		profiles = append(profiles, models.CompanyProfile{Symbol: sym, CompanyName: sym + " Inc."})
	}
	return profiles, nil
}

func (s *stubFMP) GetNews(ctx context.Context, symbols []string, limit int) ([]models.NewsItem, error) {
	return []models.NewsItem{{Title: "headline", Site: "wire", PublishedDate: "2026-08-25"}}, nil
}

func (s *stubFMP) GetMacro(ctx context.Context, indicator, country string) ([]models.MacroPoint, error) {
	return []models.MacroPoint{{Name: indicator, Date: "2026-07-01", Value: 3.1}}, nil
}

// stubReport returns a fixed payload.
type stubReport struct {
	lastReq models.ReportRequest
	payload *models.ReportPayload
	err     error
}

func (s *stubReport) Generate(ctx context.Context, req models.ReportRequest) (*models.ReportPayload, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.payload, nil
}

func (s *stubReport) ListReports() ([]models.ReportFileInfo, error) { return nil, nil }

func (s *stubReport) ResolveDownloadPath(rel string) (string, error) { return rel, nil }

func newTestService(t *testing.T, deps Deps, cfg Config, llm interfaces.LLMClient) *Service {
	t.Helper()
	logger := common.NewSilentLogger()
	registry := BuildRegistry(deps, cfg, logger)
	return NewService(registry, cfg, llm, interfaces.CompletionOptions{}, logger)
}

func TestService_QuoteQuestionEndToEnd(t *testing.T) {
	fmpStub := &stubFMP{}
	svc := newTestService(t, Deps{FMP: fmpStub}, testConfig(), nil)

	env := svc.Run(context.Background(), models.AgentInput{
		InputType: "text",
		Query:     "AAPL股價多少？",
		SessionID: "sess-1",
	})

	require.True(t, env.OK)
	require.Len(t, env.ToolResults, 1)
	assert.True(t, env.ToolResults[0].OK)
	assert.Contains(t, env.Response, "AAPL")
	assert.Equal(t, "sess-1", env.SessionID)
	assert.NotEmpty(t, env.TraceID)
	require.Len(t, env.Sources, 1)
	assert.Equal(t, "FMP", env.Sources[0].Source)
	assert.Empty(t, env.Warnings)
}

func TestService_InvalidInputType(t *testing.T) {
	svc := newTestService(t, Deps{FMP: &stubFMP{}}, testConfig(), nil)

	env := svc.Run(context.Background(), models.AgentInput{InputType: "audio", Query: "hi"})
	require.False(t, env.OK)
	assert.Equal(t, models.ErrCodeInvalidInput, env.Error)
}

func TestService_EmptyQueryIsPlanningFailure(t *testing.T) {
	svc := newTestService(t, Deps{FMP: &stubFMP{}}, testConfig(), nil)

	env := svc.Run(context.Background(), models.AgentInput{InputType: "text", Query: "   "})
	require.False(t, env.OK)
	assert.Equal(t, models.ErrCodeEmptyQuery, env.Error)
	assert.Empty(t, env.ToolResults)
}

func TestService_ToolFailureStaysOK(t *testing.T) {
	fmpStub := &stubFMP{quoteErr: models.NewProviderError(models.ErrCodeMissingAPIKey, "FMP API key not configured")}
	svc := newTestService(t, Deps{FMP: fmpStub}, testConfig(), nil)

	env := svc.Run(context.Background(), models.AgentInput{InputType: "text", Query: "quote for AAPL"})
	require.True(t, env.OK, "tool failures must not flip the envelope to error")
	require.Len(t, env.ToolResults, 1)
	assert.False(t, env.ToolResults[0].OK)
	assert.Equal(t, models.ErrCodeMissingAPIKey, env.ToolResults[0].Error)
	assert.Contains(t, env.Response, "API key")
	assert.Empty(t, env.Sources)
}

func TestService_ReportCommandKeepsDeterministicMessage(t *testing.T) {
	reportStub := &stubReport{payload: &models.ReportPayload{
		Message:  "Generated stock report for AAPL, TSLA",
		Warnings: []string{models.WarnPDFGenerationFailed},
		Files:    []models.ReportArtifact{{Path: "r.md", Format: "markdown"}},
	}}
	cfg := testConfig()
	cfg.ColloquialEnabled = true
	// An LLM that would mangle the message if the report path consulted it.
	llm := &fakeLLM{out: "totally different text"}
	svc := newTestService(t, Deps{FMP: &stubFMP{}, Report: reportStub}, cfg, llm)

	env := svc.Run(context.Background(), models.AgentInput{InputType: "text", Query: "/report stock AAPL TSLA"})
	require.True(t, env.OK)
	assert.Equal(t, []string{"AAPL", "TSLA"}, reportStub.lastReq.Symbols)
	assert.Contains(t, env.Response, "Generated stock report")
	assert.NotContains(t, env.Response, "totally different")
	assert.Contains(t, env.Warnings, models.WarnPDFGenerationFailed)
	require.Len(t, env.OutputFiles, 1)
}

func TestService_ColloquialAppliedOnQuestions(t *testing.T) {
	cfg := testConfig()
	cfg.ColloquialEnabled = true
	llm := &fakeLLM{out: "hey, AAPL moved up a bit today!"}
	svc := newTestService(t, Deps{FMP: &stubFMP{}}, cfg, llm)

	env := svc.Run(context.Background(), models.AgentInput{InputType: "text", Query: "AAPL price?"})
	require.True(t, env.OK)
	assert.Equal(t, "hey, AAPL moved up a bit today!", env.Response)
	require.NotNil(t, env.NLG)
	assert.NotEmpty(t, env.NLG.Raw)
	assert.Equal(t, ColloquialSystemPrompt, env.NLG.SystemPrompt)
}

func TestService_UpdateConfigAppliesToNextRequest(t *testing.T) {
	fmpStub := &stubFMP{}
	svc := newTestService(t, Deps{FMP: fmpStub}, testConfig(), nil)

	env := svc.Run(context.Background(), models.AgentInput{InputType: "text", Query: "AAPL price?"})
	require.True(t, env.OK)
	require.Empty(t, env.Warnings)

	cfg := testConfig()
	cfg.ExecuteTools = false
	svc.UpdateConfig(cfg)

	env = svc.Run(context.Background(), models.AgentInput{InputType: "text", Query: "AAPL price?"})
	require.True(t, env.OK)
	assert.Contains(t, env.Warnings, models.WarnExecuteToolsDisabled)
	assert.Empty(t, env.ToolResults)
}

func TestService_KBUnavailableWithoutLLM(t *testing.T) {
	svc := newTestService(t, Deps{FMP: &stubFMP{}}, testConfig(), nil)

	env := svc.Run(context.Background(), models.AgentInput{InputType: "text", Query: "what do the docs say about limits?"})
	require.True(t, env.OK)
	require.Len(t, env.ToolResults, 1)
	assert.Equal(t, models.ErrCodeMissingAPIKey, env.ToolResults[0].Error)
	assert.True(t, strings.Contains(env.Response, "API key") || strings.Contains(env.Response, "credential"))
}
