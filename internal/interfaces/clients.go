// Package interfaces defines service contracts for Lensquant
package interfaces

import (
	"context"
	"time"

	"github.com/lensquant/lensquant/internal/models"
)

// FMPClient provides access to the Financial Modeling Prep API. All methods
// return *models.ProviderError for provider-level failures so callers can map
// them to stable tool error codes.
type FMPClient interface {
	// GetQuote retrieves real-time quotes for the given symbols
	GetQuote(ctx context.Context, symbols []string) ([]models.Quote, error)

	// GetProfile retrieves company profiles for the given symbols
	GetProfile(ctx context.Context, symbols []string) ([]models.CompanyProfile, error)

	// GetNews retrieves news, optionally filtered by symbols
	GetNews(ctx context.Context, symbols []string, limit int) ([]models.NewsItem, error)

	// GetMacro retrieves an economic indicator series for a country
	GetMacro(ctx context.Context, indicator, country string) ([]models.MacroPoint, error)
}

// CompletionOptions tunes a single LLM completion.
type CompletionOptions struct {
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// LLMClient provides access to a generative model. Implementations must respect
// the completion timeout and surface deadline errors as context.DeadlineExceeded.
type LLMClient interface {
	// Complete generates text from a system instruction and a prompt
	Complete(ctx context.Context, system, prompt string, opts CompletionOptions) (string, error)

	// Embed produces an embedding vector for the given text
	Embed(ctx context.Context, text string) ([]float32, error)
}
