package main

import (
	"fmt"
	"os"
	"path/filepath"

	"nfseconv/internal/archive"
	"nfseconv/internal/domain"
	"nfseconv/internal/service"
)

// readInputs loads documents from paths in order. Zip archives are expanded
// in place; any other extension is rejected.
func readInputs(svc service.ConvertService, maxBytes int64, paths []string) ([]domain.DocumentInput, error) {
	var docs []domain.DocumentInput
	for _, p := range paths {
		isDoc, isZip := archive.IsDocument(p), archive.IsArchive(p)
		if !isDoc && !isZip {
			return nil, fmt.Errorf("%s: %w", p, domain.ErrUnsupportedFileType)
		}

		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		if info.Size() > maxBytes {
			return nil, fmt.Errorf("%s: %w", p, domain.ErrFileTooLarge)
		}
		content, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}

		if isDoc {
			docs = append(docs, domain.DocumentInput{Name: filepath.Base(p), Content: content})
			continue
		}
		expanded, err := svc.ExpandArchive(content)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		docs = append(docs, expanded...)
	}
	if len(docs) == 0 {
		return nil, domain.ErrNoDocuments
	}
	return docs, nil
}
