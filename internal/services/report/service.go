// Package report implements the report pipeline: collect subject data from
// the market data provider, derive insights (LLM or rule-based), and render
// the result into one or more file formats under a timestamped batch.
package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/lensquant/lensquant/internal/common"
	"github.com/lensquant/lensquant/internal/interfaces"
	"github.com/lensquant/lensquant/internal/models"
)

const (
	stockNewsLimit = 10
	macroNewsLimit = 5
)

// Service runs the report pipeline.
type Service struct {
	fmp         interfaces.FMPClient
	enhancer    *Enhancer
	renderer    *Renderer
	formats     []string
	enhancement bool
	logger      *common.Logger
}

var _ interfaces.ReportService = (*Service)(nil)

// NewService wires the report pipeline. llm may be nil; insights then always
// come from the rule-based fallback.
func NewService(fmp interfaces.FMPClient, llm interfaces.LLMClient, llmOpts interfaces.CompletionOptions, cfg *common.Config, docs interfaces.DocumentRenderer, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	formats := cfg.Report.Formats
	if len(formats) == 0 {
		formats = []string{"markdown"}
	}
	return &Service{
		fmp:         fmp,
		enhancer:    NewEnhancer(llm, llmOpts, logger),
		renderer:    NewRenderer(cfg.Report, docs, logger),
		formats:     formats,
		enhancement: cfg.Agent.ReportEnhancement,
		logger:      logger,
	}
}

// Generate runs the full pipeline for one report request. It returns an error
// only for malformed requests; collection and rendering problems degrade to
// warnings and explanatory sections inside the payload.
func (s *Service) Generate(ctx context.Context, req models.ReportRequest) (*models.ReportPayload, error) {
	switch req.Type {
	case models.ReportTypeStock:
		if len(req.Symbols) == 0 {
			return nil, models.NewProviderError(models.ErrCodeInvalidArguments, "stock report requires at least one symbol")
		}
	case models.ReportTypeMacro:
		if len(req.Indicators) == 0 {
			return nil, models.NewProviderError(models.ErrCodeInvalidArguments, "macro report requires at least one indicator")
		}
	default:
		return nil, models.NewProviderError(models.ErrCodeInvalidArguments,
			fmt.Sprintf("unknown report type %q; supported: stock, macro", req.Type))
	}

	batch := req.BatchTimestamp
	if batch == "" {
		batch = time.Now().UTC().Format("20060102_150405")
	}

	var data *models.SubjectData
	var collected []models.ToolResult
	if req.Type == models.ReportTypeStock {
		data, collected = s.collectStock(ctx, req)
	} else {
		data, collected = s.collectMacro(ctx, req)
	}

	insights := s.deriveInsights(ctx, req, data)

	slug := reportSlug(req)
	markdown := buildMarkdown(req, data, insights, s.renderer.footer(), slug)

	chartPNG := s.renderChart(req, data, slug)

	formats := req.Formats
	if len(formats) == 0 {
		formats = s.formats
	}
	files, warnings := s.renderer.Render(ctx, slug, batch, formats, markdown, chartPNG)

	payload := &models.ReportPayload{
		Message:   completionMessage(req, files, batch, insights),
		Files:     files,
		Warnings:  warnings,
		Collected: collected,
		Slug:      slug,
		Batch:     batch,
	}

	s.logger.Info().
		Str("type", req.Type).
		Str("batch", batch).
		Int("files", len(files)).
		Int("warnings", len(warnings)).
		Msg("report generated")
	return payload, nil
}

// collectStock gathers quotes (one provider lookup per symbol), profiles, and
// news for the requested symbols. Failures are recorded and skipped.
func (s *Service) collectStock(ctx context.Context, req models.ReportRequest) (*models.SubjectData, []models.ToolResult) {
	data := &models.SubjectData{Symbols: req.Symbols}

	type quoteOutcome struct {
		idx    int
		quotes []models.Quote
		err    error
	}
	outcomes := make(chan quoteOutcome, len(req.Symbols))
	var wg sync.WaitGroup
	for i, symbol := range req.Symbols {
		wg.Add(1)
		go func(idx int, symbol string) {
			defer wg.Done()
			quotes, err := s.fmp.GetQuote(ctx, []string{symbol})
			outcomes <- quoteOutcome{idx: idx, quotes: quotes, err: err}
		}(i, symbol)
	}
	wg.Wait()
	close(outcomes)

	// Keep quotes in request order regardless of completion order.
	ordered := make([][]models.Quote, len(req.Symbols))
	var collected []models.ToolResult
	for outcome := range outcomes {
		if outcome.err != nil {
			collected = append(collected, *collectionError("fmp_quote", outcome.err))
			continue
		}
		ordered[outcome.idx] = outcome.quotes
		collected = append(collected, *models.NewToolResult("fmp_quote", "FMP", outcome.quotes, ""))
	}
	for _, quotes := range ordered {
		data.Quotes = append(data.Quotes, quotes...)
	}

	profiles, err := s.fmp.GetProfile(ctx, req.Symbols)
	if err != nil {
		collected = append(collected, *collectionError("fmp_profile", err))
	} else {
		data.Profiles = profiles
		collected = append(collected, *models.NewToolResult("fmp_profile", "FMP", profiles, ""))
	}

	news, err := s.fmp.GetNews(ctx, req.Symbols, stockNewsLimit)
	if err != nil {
		collected = append(collected, *collectionError("fmp_news", err))
	} else {
		data.News = news
		collected = append(collected, *models.NewToolResult("fmp_news", "FMP", news, ""))
	}

	return data, collected
}

// collectMacro gathers one series per indicator plus general market news.
func (s *Service) collectMacro(ctx context.Context, req models.ReportRequest) (*models.SubjectData, []models.ToolResult) {
	country := req.Country
	if country == "" {
		country = "US"
	}
	data := &models.SubjectData{
		Country: country,
		Macro:   make(map[string][]models.MacroPoint, len(req.Indicators)),
	}

	var collected []models.ToolResult
	for _, indicator := range req.Indicators {
		points, err := s.fmp.GetMacro(ctx, indicator, country)
		if err != nil {
			collected = append(collected, *collectionError("fmp_macro", err))
			continue
		}
		data.Macro[indicator] = points
		collected = append(collected, *models.NewToolResult("fmp_macro", "FMP", points, ""))
	}

	news, err := s.fmp.GetNews(ctx, nil, macroNewsLimit)
	if err != nil {
		collected = append(collected, *collectionError("fmp_news", err))
	} else {
		data.News = news
		collected = append(collected, *models.NewToolResult("fmp_news", "FMP", news, ""))
	}

	return data, collected
}

// deriveInsights prefers the LLM enhancer when enabled and substitutes the
// rule-based fallback on any failure, so reports never block on the LLM.
func (s *Service) deriveInsights(ctx context.Context, req models.ReportRequest, data *models.SubjectData) *models.Insights {
	if s.enhancement {
		if insights, err := s.enhancer.Enhance(ctx, req, data); err == nil {
			return insights
		} else {
			s.logger.Warn().Err(err).Msg("enhancement failed; using rule-based insights")
		}
	}
	return FallbackInsights(req, data)
}

func (s *Service) renderChart(req models.ReportRequest, data *models.SubjectData, slug string) []byte {
	var png []byte
	var err error
	if req.Type == models.ReportTypeStock {
		png, err = RenderChangeChart(data.Quotes)
	} else {
		for _, indicator := range req.Indicators {
			if points := data.Macro[indicator]; len(points) >= 2 {
				png, err = RenderIndicatorChart(indicator, points)
				break
			}
		}
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("slug", slug).Msg("chart skipped")
		return nil
	}
	return png
}

func collectionError(tool string, err error) *models.ToolResult {
	code := models.ErrCodeUpstreamError
	var perr *models.ProviderError
	if errors.As(err, &perr) {
		code = perr.Code
	}
	return models.NewToolError(tool, "FMP", code, err.Error())
}

func reportSlug(req models.ReportRequest) string {
	if req.Type == models.ReportTypeMacro {
		country := req.Country
		if country == "" {
			country = "US"
		}
		return "macro_" + strings.ToLower(country)
	}
	return "stock_" + strings.ToLower(strings.Join(req.Symbols, "-"))
}

func completionMessage(req models.ReportRequest, files []models.ReportArtifact, batch string, insights *models.Insights) string {
	subject := strings.Join(req.Symbols, ", ")
	if req.Type == models.ReportTypeMacro {
		subject = req.Country + " (" + strings.Join(req.Indicators, ", ") + ")"
	}
	origin := "rule-based analysis"
	if insights.Origin == models.InsightsOriginLLM {
		origin = "LLM-enhanced analysis"
	}
	return fmt.Sprintf("Generated %s report for %s with %s: %d file(s) in batch %s.",
		req.Type, subject, origin, len(files), batch)
}
