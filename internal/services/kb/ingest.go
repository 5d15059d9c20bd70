package kb

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lensquant/lensquant/internal/models"
)

// LoadDir reads the markdown and plain-text files under dir into documents
// ready for Ingest. The document ID is the slash-separated path relative to
// dir, so re-loading the same tree replaces rather than duplicates.
func LoadDir(dir string) ([]models.KBDocument, error) {
	var docs []models.KBDocument

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".md", ".txt":
		default:
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		content := strings.TrimSpace(string(data))
		if content == "" {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		docs = append(docs, models.KBDocument{
			ID:      filepath.ToSlash(rel),
			Content: content,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("kb: load %s: %w", dir, err)
	}
	return docs, nil
}
