package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lensquant/lensquant/internal/models"
)

// ListReports walks the reports tree and returns an index of stored files,
// newest batch first within lexical walk order.
func (s *Service) ListReports() ([]models.ReportFileInfo, error) {
	root := s.renderer.BatchDir("")
	entries := []models.ReportFileInfo{}

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		format := formatFromName(info.Name())
		entries = append(entries, models.ReportFileInfo{
			Name:        info.Name(),
			Path:        filepath.ToSlash(rel),
			Size:        info.Size(),
			GeneratedAt: info.ModTime().UTC(),
			Format:      format,
			RenderMode:  renderModeFromFormat(format),
			Watermark:   s.renderer.Watermark(),
		})
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("report: list: %w", err)
	}
	return entries, nil
}

// ResolveDownloadPath maps a relative listing path back to an absolute file
// path, rejecting anything that escapes the reports directory.
func (s *Service) ResolveDownloadPath(rel string) (string, error) {
	if rel == "" {
		return "", fmt.Errorf("report: empty download path")
	}

	root, err := filepath.Abs(s.renderer.BatchDir(""))
	if err != nil {
		return "", fmt.Errorf("report: resolve root: %w", err)
	}

	abs := filepath.Join(root, filepath.FromSlash(rel))
	abs = filepath.Clean(abs)
	if abs != root && !strings.HasPrefix(abs, root+string(filepath.Separator)) {
		return "", fmt.Errorf("report: path %q escapes the reports directory", rel)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("report: stat %q: %w", rel, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("report: %q is a directory", rel)
	}
	return abs, nil
}

// renderModeFromFormat reports how a stored file was produced: markdown and
// chart PNGs are written natively, binary formats go through the document
// renderer.
func renderModeFromFormat(format string) string {
	switch format {
	case "markdown", "png":
		return "native"
	case "pdf", "pptx":
		return "external"
	default:
		return "unknown"
	}
}

func formatFromName(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md":
		return "markdown"
	case ".pdf":
		return "pdf"
	case ".pptx":
		return "pptx"
	case ".png":
		return "png"
	default:
		return "unknown"
	}
}
