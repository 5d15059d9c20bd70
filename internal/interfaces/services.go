// Package interfaces defines service contracts for Lensquant
package interfaces

import (
	"context"

	"github.com/lensquant/lensquant/internal/models"
)

// AgentService is the single entry point of the supervisor agent.
type AgentService interface {
	// Run processes one request and always returns an envelope (never nil)
	Run(ctx context.Context, input models.AgentInput) *models.ResponseEnvelope
}

// ReportService handles multi-format report production.
type ReportService interface {
	// Generate runs the full pipeline: collect, enhance, render, store
	Generate(ctx context.Context, req models.ReportRequest) (*models.ReportPayload, error)

	// ListReports returns the stored report file index
	ListReports() ([]models.ReportFileInfo, error)

	// ResolveDownloadPath maps a relative report path to an absolute one,
	// rejecting anything that escapes the report directory
	ResolveDownloadPath(rel string) (string, error)
}

// KnowledgeBase answers questions over ingested documents.
type KnowledgeBase interface {
	// Ingest adds documents to the knowledge base
	Ingest(ctx context.Context, docs []models.KBDocument) error

	// Query retrieves the topK most relevant chunks for a question
	Query(ctx context.Context, question string, topK int) ([]models.KBChunk, error)
}

// DocumentRenderer renders a report into a binary format (pdf, pptx). Markdown
// is rendered internally and never goes through this interface. A nil renderer
// means the engine is absent; per-format failures degrade to warnings.
type DocumentRenderer interface {
	// Formats lists the formats this renderer supports
	Formats() []string

	// Render produces one artifact or fails for that format only
	Render(ctx context.Context, format string, input models.RenderInput) (*models.ReportArtifact, error)
}
