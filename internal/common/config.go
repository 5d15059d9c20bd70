// Package common provides shared utilities for Lensquant
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Lensquant
type Config struct {
	Environment string        `toml:"environment"`
	Server      ServerConfig  `toml:"server"`
	Agent       AgentConfig   `toml:"agent"`
	Clients     ClientsConfig `toml:"clients"`
	Report      ReportConfig  `toml:"report"`
	KB          KBConfig      `toml:"kb"`
	Logging     LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// AgentConfig holds the process-wide agent flags. These may be edited between
// requests; each request takes a value copy at start so a run never observes a
// mid-request change.
type AgentConfig struct {
	ExecuteTools      bool   `toml:"execute_tools"`
	ColloquialEnabled bool   `toml:"colloquial_enabled"`
	MaxToolLoops      int    `toml:"max_tool_loops"`
	ReportEnhancement bool   `toml:"report_enhancement"`
	NewsTopK          int    `toml:"news_topk"`
	MacroLastN        int    `toml:"macro_last_n"`
	ToolTimeout       string `toml:"tool_timeout"`
}

// GetToolTimeout parses and returns the per-tool-call timeout
func (c *AgentConfig) GetToolTimeout() time.Duration {
	d, err := time.ParseDuration(c.ToolTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	FMP FMPConfig `toml:"fmp"`
	LLM LLMConfig `toml:"llm"`
}

// FMPConfig holds Financial Modeling Prep API configuration
type FMPConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
	Timeout string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *FMPConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// LLMConfig holds LLM provider configuration
type LLMConfig struct {
	Provider            string  `toml:"provider"` // "gemini" or "openai"
	APIKey              string  `toml:"api_key"`
	Model               string  `toml:"model"`
	EmbeddingModel      string  `toml:"embedding_model"`
	AnalysisTemperature float32 `toml:"analysis_temperature"`
	AnalysisMaxTokens   int     `toml:"analysis_max_tokens"`
	AnalysisTimeout     string  `toml:"analysis_timeout"`
}

// GetAnalysisTimeout parses and returns the LLM analysis timeout
func (c *LLMConfig) GetAnalysisTimeout() time.Duration {
	d, err := time.ParseDuration(c.AnalysisTimeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// ReportConfig holds report generation configuration
type ReportConfig struct {
	OutputDir string   `toml:"output_dir"`
	Formats   []string `toml:"formats"` // requested output formats per report
	Watermark string   `toml:"watermark"`
}

// KBConfig holds knowledge base configuration. DocsDir, when set, is loaded
// into the vector store at startup.
type KBConfig struct {
	DocsDir string `toml:"docs_dir"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Agent: AgentConfig{
			ExecuteTools:      true,
			ColloquialEnabled: true,
			MaxToolLoops:      3,
			ReportEnhancement: true,
			NewsTopK:          3,
			MacroLastN:        6,
			ToolTimeout:       "10s",
		},
		Clients: ClientsConfig{
			FMP: FMPConfig{
				BaseURL: "https://financialmodelingprep.com/api/v3",
				Timeout: "30s",
			},
			LLM: LLMConfig{
				Provider:            "gemini",
				Model:               "gemini-2.0-flash",
				EmbeddingModel:      "gemini-embedding-001",
				AnalysisTemperature: 0.3,
				AnalysisMaxTokens:   2000,
				AnalysisTimeout:     "30s",
			},
		},
		Report: ReportConfig{
			OutputDir: "./outputs",
			Formats:   []string{"markdown", "pdf"},
			Watermark: "Lens Quant",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("LENS_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("LENS_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("LENS_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("LENS_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if dir := os.Getenv("LENS_OUTPUT_DIR"); dir != "" {
		config.Report.OutputDir = dir
	}

	if dir := os.Getenv("LENS_KB_DOCS_DIR"); dir != "" {
		config.KB.DocsDir = dir
	}

	if v := os.Getenv("FMP_API_KEY"); v != "" {
		config.Clients.FMP.APIKey = v
	}
	if v := os.Getenv("LENS_LLM_PROVIDER"); v != "" {
		config.Clients.LLM.Provider = strings.ToLower(v)
	}
	if v := os.Getenv("LENS_LLM_API_KEY"); v != "" {
		config.Clients.LLM.APIKey = v
	}

	// Agent flag overrides accept 1/0 and true/false
	if v := os.Getenv("LENS_EXECUTE_TOOLS"); v != "" {
		config.Agent.ExecuteTools = parseBoolish(v)
	}
	if v := os.Getenv("LENS_COLLOQUIAL_ENABLED"); v != "" {
		config.Agent.ColloquialEnabled = parseBoolish(v)
	}
	if v := os.Getenv("LENS_REPORT_ENHANCEMENT"); v != "" {
		config.Agent.ReportEnhancement = parseBoolish(v)
	}
	if v := os.Getenv("LENS_MAX_TOOL_LOOPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.Agent.MaxToolLoops = n
		}
	}
}

// parseBoolish accepts 1/0, true/false, yes/no, on/off so numeric flags in
// environment files keep working.
func parseBoolish(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on", "y", "t":
		return true
	default:
		return false
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
