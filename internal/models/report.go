package models

import "time"

// Report types recognized by the report command.
const (
	ReportTypeStock = "stock"
	ReportTypeMacro = "macro"
)

// Insight origins.
const (
	InsightsOriginLLM      = "llm"
	InsightsOriginFallback = "fallback"
)

// ReportRequest is a structured report-production command.
type ReportRequest struct {
	Type           string   `json:"report_type"`
	Symbols        []string `json:"symbols,omitempty"`
	Indicators     []string `json:"indicators,omitempty"`
	Country        string   `json:"country,omitempty"`
	Formats        []string `json:"formats,omitempty"`
	BatchTimestamp string   `json:"batch_timestamp,omitempty"` // YYYYMMDD_HHMMSS; same batch overwrites deterministically
}

// SubjectData aggregates everything collected about the report subjects before
// enhancement and rendering.
type SubjectData struct {
	Symbols  []string                `json:"symbols,omitempty"`
	Quotes   []Quote                 `json:"quotes,omitempty"`
	Profiles []CompanyProfile        `json:"profiles,omitempty"`
	News     []NewsItem              `json:"news,omitempty"`
	Macro    map[string][]MacroPoint `json:"macro,omitempty"`
	Country  string                  `json:"country,omitempty"`
}

// Insights is the fixed analysis schema produced by the report enhancer,
// either LLM-derived or rule-based fallback.
type Insights struct {
	MarketAnalysis           string   `json:"market_analysis"`
	FundamentalAnalysis      string   `json:"fundamental_analysis"`
	NewsImpact               string   `json:"news_impact"`
	InvestmentRecommendation string   `json:"investment_recommendation"`
	RiskAssessment           string   `json:"risk_assessment"`
	KeyInsights              []string `json:"key_insights"`
	Origin                   string   `json:"-"`
}

// ReportPayload is the data carried by a successful report_generate tool result.
type ReportPayload struct {
	Message   string           `json:"message"`
	Files     []ReportArtifact `json:"files"`
	Warnings  []string         `json:"warnings,omitempty"`
	Collected []ToolResult     `json:"collected,omitempty"`
	Slug      string           `json:"slug"`
	Batch     string           `json:"batch"`
}

// ReportFileInfo describes one stored report file in the listing index.
type ReportFileInfo struct {
	Name        string    `json:"name"`
	Path        string    `json:"path"`
	Size        int64     `json:"size"`
	GeneratedAt time.Time `json:"generated_at"`
	Format      string    `json:"format"`
	RenderMode  string    `json:"render_mode,omitempty"`
	Watermark   string    `json:"watermark,omitempty"`
}

// RenderInput is the contract handed to an external document renderer.
type RenderInput struct {
	TemplateID string         `json:"template_id"`
	Markdown   string         `json:"markdown"`
	Data       map[string]any `json:"data,omitempty"`
	OutputDir  string         `json:"output_dir"`
	Slug       string         `json:"slug"`
}
