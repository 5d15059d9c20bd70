package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lensquant/lensquant/internal/common"
	"github.com/lensquant/lensquant/internal/interfaces"
	"github.com/lensquant/lensquant/internal/models"
)

// Renderer materializes one report into its requested formats. Markdown and
// the chart PNG are written locally; binary formats (pdf, pptx) go through
// the optional DocumentRenderer, and their absence or failure degrades to a
// warning on the payload instead of failing the report.
type Renderer struct {
	baseDir   string
	watermark string
	docs      interfaces.DocumentRenderer
	logger    *common.Logger
}

// NewRenderer creates a renderer writing under cfg.OutputDir. docs may be nil.
func NewRenderer(cfg common.ReportConfig, docs interfaces.DocumentRenderer, logger *common.Logger) *Renderer {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	baseDir := cfg.OutputDir
	if baseDir == "" {
		baseDir = "./outputs"
	}
	return &Renderer{
		baseDir:   baseDir,
		watermark: cfg.Watermark,
		docs:      docs,
		logger:    logger,
	}
}

// BatchDir returns the directory for one report batch. Re-rendering the same
// batch overwrites its files in place.
func (r *Renderer) BatchDir(batch string) string {
	return filepath.Join(r.baseDir, "reports", batch)
}

// Render writes the report's files into the batch directory and returns the
// produced artifacts plus any per-format warnings.
func (r *Renderer) Render(ctx context.Context, slug, batch string, formats []string, markdown string, chartPNG []byte) ([]models.ReportArtifact, []string) {
	dir := r.BatchDir(batch)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		r.logger.Error().Err(err).Str("dir", dir).Msg("cannot create report batch directory")
		return nil, []string{models.WarnPDFGenerationFailed}
	}

	var artifacts []models.ReportArtifact
	var warnings []string

	if chartPNG != nil {
		chartPath := filepath.Join(dir, slug+".png")
		if err := os.WriteFile(chartPath, chartPNG, 0o644); err != nil {
			r.logger.Warn().Err(err).Msg("chart write failed")
		} else {
			artifacts = append(artifacts, models.ReportArtifact{
				Path:   chartPath,
				Format: "png",
				Size:   int64(len(chartPNG)),
			})
		}
	}

	for _, format := range formats {
		switch strings.ToLower(format) {
		case "markdown", "md":
			path := filepath.Join(dir, slug+".md")
			if err := os.WriteFile(path, []byte(markdown), 0o644); err != nil {
				r.logger.Error().Err(err).Str("path", path).Msg("markdown write failed")
				continue
			}
			artifacts = append(artifacts, models.ReportArtifact{
				Path:   path,
				Format: "markdown",
				Size:   int64(len(markdown)),
			})
		case "pdf", "pptx":
			artifact, warn := r.renderBinary(ctx, strings.ToLower(format), slug, dir, markdown)
			if warn != "" {
				warnings = append(warnings, warn)
				continue
			}
			artifacts = append(artifacts, *artifact)
		default:
			r.logger.Warn().Str("format", format).Msg("skipping unknown report format")
		}
	}

	return artifacts, warnings
}

func (r *Renderer) renderBinary(ctx context.Context, format, slug, dir, markdown string) (*models.ReportArtifact, string) {
	warn := models.WarnPDFGenerationFailed
	if format == "pptx" {
		warn = models.WarnPPTXGenerationFailed
	}

	if r.docs == nil || !supportsFormat(r.docs, format) {
		r.logger.Warn().Str("format", format).Msg("no document renderer for format")
		return nil, warn
	}

	artifact, err := r.docs.Render(ctx, format, models.RenderInput{
		TemplateID: "report-" + format,
		Markdown:   markdown,
		OutputDir:  dir,
		Slug:       slug,
	})
	if err != nil {
		r.logger.Warn().Err(err).Str("format", format).Msg("document render failed")
		return nil, warn
	}
	return artifact, ""
}

func supportsFormat(docs interfaces.DocumentRenderer, format string) bool {
	for _, f := range docs.Formats() {
		if strings.EqualFold(f, format) {
			return true
		}
	}
	return false
}

// Watermark returns the mark stamped on every report, defaulted when the
// configuration leaves it empty.
func (r *Renderer) Watermark() string {
	if r.watermark == "" {
		return "Lens Quant"
	}
	return r.watermark
}

// footer returns the watermark footer appended to every markdown report.
func (r *Renderer) footer() string {
	return fmt.Sprintf("\n---\n*%s*\n", r.Watermark())
}
