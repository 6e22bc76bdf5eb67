package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bfv/sqlremap/internal/review"
	"github.com/rs/zerolog/log"
)

// collectDocuments expands the path arguments into SQL documents. Directory
// arguments contribute their *.sql entries (non-recursive); file arguments
// are taken as-is regardless of extension.
func collectDocuments(paths []string) ([]review.Document, error) {
	var docs []review.Document
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat %q: %w", path, err)
		}
		if !info.IsDir() {
			doc, err := readDocument(path)
			if err != nil {
				return nil, err
			}
			docs = append(docs, doc)
			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("reading dir %q: %w", path, err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".sql") {
				continue
			}
			doc, err := readDocument(filepath.Join(path, entry.Name()))
			if err != nil {
				return nil, err
			}
			docs = append(docs, doc)
		}
	}
	log.Debug().Int("documents", len(docs)).Msg("sql files collected")
	return docs, nil
}

func readDocument(path string) (review.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return review.Document{}, fmt.Errorf("reading %q: %w", path, err)
	}
	return review.Document{Name: filepath.Base(path), Text: string(data)}, nil
}

// correctedName prefixes a document name the way the corrected output files
// are published.
func correctedName(name string) string {
	return "corrected_" + name
}
