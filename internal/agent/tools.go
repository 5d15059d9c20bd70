package agent

import (
	"context"
	"errors"
	"strings"

	"github.com/lensquant/lensquant/internal/common"
	"github.com/lensquant/lensquant/internal/interfaces"
	"github.com/lensquant/lensquant/internal/models"
)

// Deps are the collaborators the built-in tools run against. KB and Report
// may be nil; the corresponding tools then report their unavailability as
// error results instead of being absent from the registry.
type Deps struct {
	FMP    interfaces.FMPClient
	KB     interfaces.KnowledgeBase
	Report interfaces.ReportService
}

// BuildRegistry wires the built-in tool table against the given collaborators.
func BuildRegistry(deps Deps, cfg Config, logger *common.Logger) *Registry {
	r := NewRegistry(cfg.ToolTimeout, logger)

	r.Register(&ToolSpec{
		Name:        "fmp_quote",
		Description: "Current price, change, and volume for one or more symbols",
		Source:      "FMP",
		Required:    []string{"symbols"},
		Func: func(ctx context.Context, args map[string]any) *models.ToolResult {
			symbols := argStrings(args, "symbols")
			if len(symbols) == 0 {
				return models.NewToolError("fmp_quote", "FMP", models.ErrCodeInvalidArguments, "symbols must not be empty")
			}
			quotes, err := deps.FMP.GetQuote(ctx, symbols)
			if err != nil {
				return providerToolError("fmp_quote", "FMP", err)
			}
			return models.NewToolResult("fmp_quote", "FMP", quotes, "")
		},
	})

	r.Register(&ToolSpec{
		Name:        "fmp_profile",
		Description: "Company profile: name, industry, sector, market cap",
		Source:      "FMP",
		Required:    []string{"symbols"},
		Func: func(ctx context.Context, args map[string]any) *models.ToolResult {
			symbols := argStrings(args, "symbols")
			if len(symbols) == 0 {
				return models.NewToolError("fmp_profile", "FMP", models.ErrCodeInvalidArguments, "symbols must not be empty")
			}
			profiles, err := deps.FMP.GetProfile(ctx, symbols)
			if err != nil {
				return providerToolError("fmp_profile", "FMP", err)
			}
			return models.NewToolResult("fmp_profile", "FMP", profiles, "")
		},
	})

	r.Register(&ToolSpec{
		Name:        "fmp_news",
		Description: "Recent news articles, optionally filtered by symbols",
		Source:      "FMP",
		Func: func(ctx context.Context, args map[string]any) *models.ToolResult {
			symbols := argStrings(args, "symbols")
			limit := argInt(args, "limit", 10)
			items, err := deps.FMP.GetNews(ctx, symbols, limit)
			if err != nil {
				return providerToolError("fmp_news", "FMP", err)
			}
			return models.NewToolResult("fmp_news", "FMP", items, "")
		},
	})

	r.Register(&ToolSpec{
		Name:        "fmp_macro",
		Description: "Macroeconomic indicator series for a country",
		Source:      "FMP",
		Required:    []string{"indicator"},
		Func: func(ctx context.Context, args map[string]any) *models.ToolResult {
			indicator := argString(args, "indicator")
			country := argString(args, "country")
			points, err := deps.FMP.GetMacro(ctx, indicator, country)
			if err != nil {
				return providerToolError("fmp_macro", "FMP", err)
			}
			return models.NewToolResult("fmp_macro", "FMP", points, "")
		},
	})

	r.Register(&ToolSpec{
		Name:        "kb_query",
		Description: "Semantic search over the ingested knowledge base",
		Source:      "KB",
		Required:    []string{"question"},
		Func: func(ctx context.Context, args map[string]any) *models.ToolResult {
			if deps.KB == nil {
				return models.NewToolError("kb_query", "KB", models.ErrCodeMissingAPIKey,
					"knowledge base unavailable: set clients.llm.api_key to enable embeddings")
			}
			question := argString(args, "question")
			topK := argInt(args, "top_k", 5)
			chunks, err := deps.KB.Query(ctx, question, topK)
			if err != nil {
				return providerToolError("kb_query", "KB", err)
			}
			return models.NewToolResult("kb_query", "KB", chunks, "")
		},
	})

	r.Register(&ToolSpec{
		Name:        "report_generate",
		Description: "Generate a stock or macro report batch",
		Source:      "REPORT",
		Required:    []string{"report_type"},
		Func: func(ctx context.Context, args map[string]any) *models.ToolResult {
			if deps.Report == nil {
				return models.NewToolError("report_generate", "REPORT", models.ErrCodeUpstreamError,
					"report service unavailable")
			}
			req := models.ReportRequest{
				Type:       argString(args, "report_type"),
				Symbols:    argStrings(args, "symbols"),
				Indicators: argStrings(args, "indicators"),
				Country:    argString(args, "country"),
				Formats:    argStrings(args, "formats"),
			}
			payload, err := deps.Report.Generate(ctx, req)
			if err != nil {
				return providerToolError("report_generate", "REPORT", err)
			}
			return models.NewToolResult("report_generate", "REPORT", payload, "")
		},
	})

	return r
}

// providerToolError maps a Go error from a collaborator onto the documented
// tool error codes.
func providerToolError(tool, source string, err error) *models.ToolResult {
	var perr *models.ProviderError
	if errors.As(err, &perr) {
		return models.NewToolError(tool, source, perr.Code, perr.Message)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return models.NewToolError(tool, source, models.ErrCodeTimeout, err.Error())
	}
	return models.NewToolError(tool, source, models.ErrCodeUpstreamError, err.Error())
}

// argString reads a string argument, tolerating absence.
func argString(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// argStrings reads a string-slice argument. Plans built in-process pass
// []string; plans decoded from JSON arrive as []any; single strings may be
// comma separated.
func argStrings(args map[string]any, key string) []string {
	switch v := args[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		var out []string
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	default:
		return nil
	}
}

// argInt reads an integer argument, tolerating JSON's float64 decoding.
func argInt(args map[string]any, key string, def int) int {
	switch v := args[key].(type) {
	case int:
		if v > 0 {
			return v
		}
	case float64:
		if v > 0 {
			return int(v)
		}
	}
	return def
}
