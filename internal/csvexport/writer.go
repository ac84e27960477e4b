package csvexport

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"nfseconv/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// TimestampLayout is the timestamp embedded in generated file names.
const TimestampLayout = "2006-01-02_150405"

// FailureColumns is the header of a failures listing.
var FailureColumns = []string{"Arquivo", "Erro"}

// Writer wraps csv.Writer for exporting FieldRows as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader(columns []string) error {
	return w.csv.Write(columns)
}

// WriteRows writes rows laid out under columns. A row lacking a column
// gets an empty cell.
func (w *Writer) WriteRows(columns []string, rows []domain.FieldRow) error {
	rec := make([]string, len(columns))
	for _, r := range rows {
		for i, col := range columns {
			rec[i] = r.Get(col)
		}
		if err := w.csv.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// WriteFailures writes a header and one line per failed document.
func (w *Writer) WriteFailures(failures []domain.DocumentFailure) error {
	if err := w.csv.Write(FailureColumns); err != nil {
		return err
	}
	for _, f := range failures {
		if err := w.csv.Write([]string{f.Name, f.Reason}); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// Encode returns a BOM-prefixed CSV document of rows under columns.
func Encode(columns []string, rows []domain.FieldRow) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(BOM)
	w := NewWriter(&buf)
	if err := w.WriteHeader(columns); err != nil {
		return nil, fmt.Errorf("writing csv header: %w", err)
	}
	if err := w.WriteRows(columns, rows); err != nil {
		return nil, fmt.Errorf("writing csv rows: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing csv: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeFailures returns a BOM-prefixed CSV listing of failures.
func EncodeFailures(failures []domain.DocumentFailure) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(BOM)
	w := NewWriter(&buf)
	if err := w.WriteFailures(failures); err != nil {
		return nil, fmt.Errorf("writing failures csv: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing failures csv: %w", err)
	}
	return buf.Bytes(), nil
}

// unsafeChars matches characters that are not letters, digits, hyphen, or underscore.
var unsafeChars = regexp.MustCompile(`[^\p{L}\p{N}_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition or as an
// archive entry. Replaces other chars with _, collapses consecutive
// underscores, and truncates to 100 bytes.
func SanitizeFilename(name string) string {
	s := unsafeChars.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = strings.ToValidUTF8(s[:100], "")
	}
	return s
}

// BuildFilename returns {prefix}_{timestamp}.{ext}.
func BuildFilename(prefix string, at time.Time, ext string) string {
	return fmt.Sprintf("%s_%s.%s", SanitizeFilename(prefix), at.Format(TimestampLayout), ext)
}
