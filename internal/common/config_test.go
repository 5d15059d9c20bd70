package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	if cfg.Agent.MaxToolLoops != 3 {
		t.Errorf("max_tool_loops: got %d, want 3", cfg.Agent.MaxToolLoops)
	}
	if cfg.Agent.NewsTopK != 3 {
		t.Errorf("news_topk: got %d, want 3", cfg.Agent.NewsTopK)
	}
	if cfg.Agent.MacroLastN != 6 {
		t.Errorf("macro_last_n: got %d, want 6", cfg.Agent.MacroLastN)
	}
	if !cfg.Agent.ExecuteTools {
		t.Error("execute_tools should default to true")
	}
	if cfg.Report.Watermark != "Lens Quant" {
		t.Errorf("watermark: got %q", cfg.Report.Watermark)
	}
	if got := cfg.Agent.GetToolTimeout(); got != 10*time.Second {
		t.Errorf("tool timeout: got %v", got)
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/lensquant.toml")
	if err != nil {
		t.Fatalf("missing file must not error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port: got %d, want 8080", cfg.Server.Port)
	}
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lensquant.toml")
	content := `
environment = "production"

[server]
port = 9090

[agent]
max_tool_loops = 5
execute_tools = false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port: got %d", cfg.Server.Port)
	}
	if cfg.Agent.MaxToolLoops != 5 {
		t.Errorf("max_tool_loops: got %d", cfg.Agent.MaxToolLoops)
	}
	if cfg.Agent.ExecuteTools {
		t.Error("execute_tools should be false")
	}
	if !cfg.IsProduction() {
		t.Error("expected production environment")
	}
	// Untouched sections keep their defaults.
	if cfg.Clients.FMP.BaseURL == "" {
		t.Error("fmp base_url default lost on merge")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LENS_PORT", "7070")
	t.Setenv("FMP_API_KEY", "env-key")
	t.Setenv("LENS_EXECUTE_TOOLS", "0")
	t.Setenv("LENS_MAX_TOOL_LOOPS", "4")
	t.Setenv("LENS_KB_DOCS_DIR", "/srv/docs")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("port: got %d", cfg.Server.Port)
	}
	if cfg.Clients.FMP.APIKey != "env-key" {
		t.Errorf("fmp api key: got %q", cfg.Clients.FMP.APIKey)
	}
	if cfg.Agent.ExecuteTools {
		t.Error("LENS_EXECUTE_TOOLS=0 should disable execution")
	}
	if cfg.Agent.MaxToolLoops != 4 {
		t.Errorf("max_tool_loops: got %d", cfg.Agent.MaxToolLoops)
	}
	if cfg.KB.DocsDir != "/srv/docs" {
		t.Errorf("kb docs_dir: got %q", cfg.KB.DocsDir)
	}
}

func TestParseBoolish(t *testing.T) {
	truthy := []string{"1", "true", "TRUE", "yes", "on", " t "}
	for _, v := range truthy {
		if !parseBoolish(v) {
			t.Errorf("parseBoolish(%q) = false, want true", v)
		}
	}
	falsy := []string{"0", "false", "no", "off", "", "banana"}
	for _, v := range falsy {
		if parseBoolish(v) {
			t.Errorf("parseBoolish(%q) = true, want false", v)
		}
	}
}

func TestGetToolTimeout_Invalid(t *testing.T) {
	cfg := AgentConfig{ToolTimeout: "not-a-duration"}
	if got := cfg.GetToolTimeout(); got != 10*time.Second {
		t.Errorf("invalid duration should fall back to 10s, got %v", got)
	}
}
