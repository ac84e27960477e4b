// Package archive expands uploaded zip files into documents and packages
// generated files into a zip.
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"nfseconv/internal/csvexport"
	"nfseconv/internal/domain"
)

func extension(name string) string {
	return strings.TrimPrefix(strings.ToLower(path.Ext(name)), ".")
}

// IsDocument reports whether name carries an accepted document extension.
func IsDocument(name string) bool {
	return domain.AllowedDocumentExtensions[extension(name)]
}

// IsArchive reports whether name is a zip archive.
func IsArchive(name string) bool {
	return extension(name) == domain.ArchiveExtension
}

// ReadDocuments returns the .txt and .xml entries of a zip archive in
// archive order. Directories and other entries are skipped. Entries larger
// than maxEntryBytes fail with domain.ErrFileTooLarge; maxEntryBytes <= 0
// disables the check.
func ReadDocuments(data []byte, maxEntryBytes int64) ([]domain.DocumentInput, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArchive, err)
	}

	var docs []domain.DocumentInput
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !IsDocument(f.Name) {
			continue
		}
		if maxEntryBytes > 0 && f.UncompressedSize64 > uint64(maxEntryBytes) {
			return nil, fmt.Errorf("%w: %s", domain.ErrFileTooLarge, f.Name)
		}
		content, err := readEntry(f, maxEntryBytes)
		if err != nil {
			return nil, err
		}
		docs = append(docs, domain.DocumentInput{Name: f.Name, Content: content})
	}
	return docs, nil
}

func readEntry(f *zip.File, limit int64) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", domain.ErrInvalidArchive, f.Name, err)
	}
	defer rc.Close()

	var r io.Reader = rc
	if limit > 0 {
		r = io.LimitReader(rc, limit+1)
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", domain.ErrInvalidArchive, f.Name, err)
	}
	if limit > 0 && int64(len(content)) > limit {
		return nil, fmt.Errorf("%w: %s", domain.ErrFileTooLarge, f.Name)
	}
	return content, nil
}

// BaseName returns the file name of p without directories or extension,
// made safe for use as an archive entry. An empty result becomes "arquivo".
func BaseName(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	base := path.Base(p)
	base = strings.TrimSuffix(base, path.Ext(base))
	if s := csvexport.SanitizeFilename(base); s != "" {
		return s
	}
	return "arquivo"
}

// Writer builds a zip archive in memory. Duplicate entry names get a
// numeric suffix before the extension: name.xlsx, name_2.xlsx, name_3.xlsx.
type Writer struct {
	buf  bytes.Buffer
	zw   *zip.Writer
	seen map[string]int
}

// NewWriter creates an empty in-memory zip Writer.
func NewWriter() *Writer {
	w := &Writer{seen: make(map[string]int)}
	w.zw = zip.NewWriter(&w.buf)
	return w
}

// Add stores data under name, deduplicated, and returns the name used.
func (w *Writer) Add(name string, data []byte) (string, error) {
	name = w.unique(name)
	fw, err := w.zw.Create(name)
	if err != nil {
		return "", fmt.Errorf("creating zip entry %s: %w", name, err)
	}
	if _, err := fw.Write(data); err != nil {
		return "", fmt.Errorf("writing zip entry %s: %w", name, err)
	}
	return name, nil
}

// Bytes finalizes the archive and returns its contents.
func (w *Writer) Bytes() ([]byte, error) {
	if err := w.zw.Close(); err != nil {
		return nil, fmt.Errorf("closing zip: %w", err)
	}
	return w.buf.Bytes(), nil
}

func (w *Writer) unique(name string) string {
	key := strings.ToLower(name)
	n := w.seen[key]
	w.seen[key] = n + 1
	if n == 0 {
		return name
	}
	ext := path.Ext(name)
	candidate := fmt.Sprintf("%s_%d%s", strings.TrimSuffix(name, ext), n+1, ext)
	// a generated name may collide with a later literal one
	return w.unique(candidate)
}
