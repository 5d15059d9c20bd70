// Package app wires configuration, clients, and services into a running core
// shared by cmd/lensquant-server and the tests.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lensquant/lensquant/internal/agent"
	"github.com/lensquant/lensquant/internal/clients/fmp"
	"github.com/lensquant/lensquant/internal/clients/gemini"
	"github.com/lensquant/lensquant/internal/clients/openai"
	"github.com/lensquant/lensquant/internal/common"
	"github.com/lensquant/lensquant/internal/interfaces"
	"github.com/lensquant/lensquant/internal/services/kb"
	"github.com/lensquant/lensquant/internal/services/report"
)

// App holds all initialized clients and services.
type App struct {
	Config *common.Config
	Logger *common.Logger

	FMP    interfaces.FMPClient
	LLM    interfaces.LLMClient // nil when no credentials are configured
	KB     interfaces.KnowledgeBase
	Report interfaces.ReportService
	Agent  interfaces.AgentService

	StartupTime time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes clients and services. configPath may be empty, in which
// case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	binDir := getBinaryDir()

	// Load configuration - check provided path, LENS_CONFIG, then binary dir, then fallback
	if configPath == "" {
		configPath = os.Getenv("LENS_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "lensquant.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/lensquant.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	// The FMP client is always constructed; an empty API key surfaces as
	// missing_api_key per request rather than blocking startup.
	fmpClient := fmp.NewClient(config.Clients.FMP.APIKey,
		fmp.WithBaseURL(config.Clients.FMP.BaseURL),
		fmp.WithTimeout(config.Clients.FMP.GetTimeout()),
		fmp.WithLogger(logger),
	)
	if config.Clients.FMP.APIKey == "" {
		logger.Warn().Msg("FMP API key not configured - market data lookups will fail with missing_api_key")
	}

	llmClient := buildLLMClient(config, logger)

	llmOpts := interfaces.CompletionOptions{
		Temperature: config.Clients.LLM.AnalysisTemperature,
		MaxTokens:   config.Clients.LLM.AnalysisMaxTokens,
		Timeout:     config.Clients.LLM.GetAnalysisTimeout(),
	}

	var knowledgeBase interfaces.KnowledgeBase
	if llmClient != nil {
		knowledgeBase, err = kb.NewService(llmClient, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize knowledge base: %w", err)
		}
		ingestKBDocs(knowledgeBase, config.KB.DocsDir, logger)
	} else {
		logger.Warn().Msg("No LLM credentials - knowledge base and enhancement are unavailable")
	}

	reportService := report.NewService(fmpClient, llmClient, llmOpts, config, nil, logger)

	agentCfg := agent.ConfigFromCommon(config.Agent)
	registry := agent.BuildRegistry(agent.Deps{
		FMP:    fmpClient,
		KB:     knowledgeBase,
		Report: reportService,
	}, agentCfg, logger)
	agentService := agent.NewService(registry, agentCfg, llmClient, llmOpts, logger)

	logger.Info().
		Str("environment", config.Environment).
		Str("llm_provider", config.Clients.LLM.Provider).
		Bool("llm_available", llmClient != nil).
		Msg("Application initialized")

	return &App{
		Config:      config,
		Logger:      logger,
		FMP:         fmpClient,
		LLM:         llmClient,
		KB:          knowledgeBase,
		Report:      reportService,
		Agent:       agentService,
		StartupTime: time.Now(),
	}, nil
}

// ingestKBDocs seeds the knowledge base from the configured docs directory.
// Failures are logged, not fatal: the server runs with an empty store and
// kb_query reports no passages.
func ingestKBDocs(knowledgeBase interfaces.KnowledgeBase, dir string, logger *common.Logger) {
	if dir == "" {
		return
	}
	docs, err := kb.LoadDir(dir)
	if err != nil {
		logger.Warn().Err(err).Str("dir", dir).Msg("knowledge base docs could not be loaded")
		return
	}
	if len(docs) == 0 {
		logger.Warn().Str("dir", dir).Msg("knowledge base docs directory is empty")
		return
	}
	if err := knowledgeBase.Ingest(context.Background(), docs); err != nil {
		logger.Warn().Err(err).Str("dir", dir).Msg("knowledge base ingestion failed")
		return
	}
	logger.Info().Int("documents", len(docs)).Str("dir", dir).Msg("knowledge base seeded")
}

// buildLLMClient selects the provider from config. Returns nil when no usable
// credentials exist; callers treat that as "LLM features off".
func buildLLMClient(config *common.Config, logger *common.Logger) interfaces.LLMClient {
	llm := config.Clients.LLM
	if llm.APIKey == "" {
		return nil
	}

	switch llm.Provider {
	case "openai":
		return openai.NewClient(llm.APIKey,
			openai.WithModel(llm.Model),
			openai.WithEmbeddingModel(llm.EmbeddingModel),
			openai.WithLogger(logger),
		)
	case "gemini", "":
		client, err := gemini.NewClient(context.Background(), llm.APIKey,
			gemini.WithModel(llm.Model),
			gemini.WithEmbeddingModel(llm.EmbeddingModel),
			gemini.WithLogger(logger),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Gemini client init failed - continuing without LLM")
			return nil
		}
		return client
	default:
		logger.Warn().Str("provider", llm.Provider).Msg("Unknown LLM provider - continuing without LLM")
		return nil
	}
}

// Close releases application resources.
func (a *App) Close() {
	a.Logger.Info().Msg("Application shut down")
}
