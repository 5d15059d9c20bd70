// Package kb implements the in-memory knowledge base backing the kb_query tool.
package kb

import (
	"context"
	"fmt"
	"runtime"

	"github.com/philippgille/chromem-go"

	"github.com/lensquant/lensquant/internal/common"
	"github.com/lensquant/lensquant/internal/interfaces"
	"github.com/lensquant/lensquant/internal/models"
)

const collectionName = "lensquant-kb"

// Service is a chromem-go backed vector store. Embeddings come from the
// configured LLM provider, so the service only exists when LLM credentials
// are present.
type Service struct {
	collection *chromem.Collection
	logger     *common.Logger
}

var _ interfaces.KnowledgeBase = (*Service)(nil)

// NewService creates the knowledge base over the given LLM client's
// embedding endpoint.
func NewService(llm interfaces.LLMClient, logger *common.Logger) (*Service, error) {
	if llm == nil {
		return nil, fmt.Errorf("kb: llm client is required for embeddings")
	}
	if logger == nil {
		logger = common.NewSilentLogger()
	}

	embed := func(ctx context.Context, text string) ([]float32, error) {
		return llm.Embed(ctx, text)
	}

	db := chromem.NewDB()
	collection, err := db.GetOrCreateCollection(collectionName, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("kb: create collection: %w", err)
	}

	return &Service{collection: collection, logger: logger}, nil
}

// Ingest embeds and stores the given documents. Documents with an existing ID
// are replaced.
func (s *Service) Ingest(ctx context.Context, docs []models.KBDocument) error {
	if len(docs) == 0 {
		return nil
	}

	items := make([]chromem.Document, 0, len(docs))
	for _, doc := range docs {
		if doc.Content == "" {
			continue
		}
		items = append(items, chromem.Document{
			ID:      doc.ID,
			Content: doc.Content,
		})
	}
	if len(items) == 0 {
		return nil
	}

	if err := s.collection.AddDocuments(ctx, items, runtime.NumCPU()); err != nil {
		return fmt.Errorf("kb: ingest %d documents: %w", len(items), err)
	}
	s.logger.Info().Int("documents", len(items)).Msg("knowledge base updated")
	return nil
}

// Query returns the topK most similar chunks for the question. An empty store
// returns no chunks rather than an error.
func (s *Service) Query(ctx context.Context, question string, topK int) ([]models.KBChunk, error) {
	if topK <= 0 {
		topK = 5
	}
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if topK > count {
		topK = count
	}

	results, err := s.collection.Query(ctx, question, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("kb: query: %w", err)
	}

	chunks := make([]models.KBChunk, 0, len(results))
	for _, r := range results {
		chunks = append(chunks, models.KBChunk{
			ID:    r.ID,
			Text:  r.Content,
			Score: float64(r.Similarity),
		})
	}
	return chunks, nil
}
