package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"nfseconv/internal/archive"
	"nfseconv/internal/config"
	"nfseconv/internal/csvexport"
	"nfseconv/internal/domain"
	"nfseconv/internal/logger"
	"nfseconv/internal/port"
	"nfseconv/internal/xlsxexport"
)

// Output file name prefixes.
const (
	SinglePrefix   = "NFSe_Completa"
	CombinedPrefix = "NFSe_Completa_Lote"
	ZipPrefix      = "NFSe_Planilhas"

	// FailuresEntry lists failed documents inside zip outputs.
	FailuresEntry = "erros.csv"
)

// ConvertOptions selects the packaging of a conversion.
type ConvertOptions struct {
	Mode             domain.OutputMode
	Format           domain.OutputFormat
	IncludeNarrative bool
}

// ConvertOutput is a generated file ready for download.
type ConvertOutput struct {
	Filename    string
	ContentType string
	Data        []byte
	Documents   int
	Rows        int
	Failures    []domain.DocumentFailure
}

// ConvertService defines the NFSe conversion contract.
type ConvertService interface {
	Extract(ctx context.Context, docs []domain.DocumentInput, includeNarrative bool) ([]domain.DocumentResult, error)
	Convert(ctx context.Context, docs []domain.DocumentInput, opts ConvertOptions) (*ConvertOutput, error)
	ExpandArchive(data []byte) ([]domain.DocumentInput, error)
}

type convertService struct {
	extractor port.DocumentExtractor
	cfg       *config.ConvertConfig
	now       func() time.Time
}

// NewConvertService creates a new ConvertService implementation.
func NewConvertService(extractor port.DocumentExtractor, cfg *config.ConvertConfig) ConvertService {
	return NewConvertServiceWithClock(extractor, cfg, time.Now)
}

// NewConvertServiceWithClock is NewConvertService with an injected clock
// for output file names.
func NewConvertServiceWithClock(extractor port.DocumentExtractor, cfg *config.ConvertConfig, now func() time.Time) ConvertService {
	return &convertService{
		extractor: extractor,
		cfg:       cfg,
		now:       now,
	}
}

func (s *convertService) Extract(ctx context.Context, docs []domain.DocumentInput, includeNarrative bool) ([]domain.DocumentResult, error) {
	log := logger.FromContext(ctx)
	results := make([]domain.DocumentResult, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency())
	for i, doc := range docs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rows, stats, err := s.extractor.ExtractDocumentWithStats(doc.Content, includeNarrative)
			results[i] = domain.DocumentResult{Name: doc.Name, Rows: rows, Err: err}
			if err != nil {
				log.Warn().Err(err).Str("document", doc.Name).Msg("document could not be parsed")
				return nil
			}
			log.Debug().
				Str("document", doc.Name).
				Int("records", stats.Records).
				Int("skipped", stats.Skipped).
				Int("rows", len(rows)).
				Msg("document extracted")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *convertService) Convert(ctx context.Context, docs []domain.DocumentInput, opts ConvertOptions) (*ConvertOutput, error) {
	if len(docs) == 0 {
		return nil, domain.ErrNoDocuments
	}
	if opts.Format == "" {
		opts.Format = domain.FormatXLSX
	}
	if !opts.Mode.IsValid() || !opts.Format.IsValid() {
		return nil, fmt.Errorf("mode %q format %q: %w", opts.Mode, opts.Format, domain.ErrInvalidOptions)
	}
	if opts.Mode == domain.OutputSingle && len(docs) != 1 {
		return nil, fmt.Errorf("single output takes one document, got %d: %w", len(docs), domain.ErrInvalidOptions)
	}

	results, err := s.Extract(ctx, docs, opts.IncludeNarrative)
	if err != nil {
		return nil, err
	}

	var out *ConvertOutput
	switch opts.Mode {
	case domain.OutputSingle:
		out, err = s.single(results[0], opts)
	case domain.OutputCombined:
		out, err = s.combined(results, opts)
	default:
		out, err = s.zip(results, opts)
	}
	if err != nil {
		return nil, err
	}
	out.Documents = len(docs)

	reqLog := logger.FromContext(ctx)
	reqLog.Info().
		Str("mode", string(opts.Mode)).
		Str("format", string(opts.Format)).
		Int("documents", out.Documents).
		Int("rows", out.Rows).
		Int("failed", len(out.Failures)).
		Str("file", out.Filename).
		Msg("conversion finished")
	return out, nil
}

func (s *convertService) ExpandArchive(data []byte) ([]domain.DocumentInput, error) {
	docs, err := archive.ReadDocuments(data, s.cfg.MaxUploadBytes())
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("archive has no .txt or .xml entries: %w", domain.ErrNoDocuments)
	}
	return docs, nil
}

func (s *convertService) single(res domain.DocumentResult, opts ConvertOptions) (*ConvertOutput, error) {
	if res.Err != nil {
		return nil, fmt.Errorf("converting %s: %w", res.Name, res.Err)
	}
	data, err := s.encodeRows(s.extractor.Columns(opts.IncludeNarrative), res.Rows, nil, opts.Format)
	if err != nil {
		return nil, err
	}
	return s.output(SinglePrefix, opts.Format, data, len(res.Rows), nil), nil
}

func (s *convertService) combined(results []domain.DocumentResult, opts ConvertOptions) (*ConvertOutput, error) {
	base := s.extractor.Columns(opts.IncludeNarrative)
	columns := make([]string, 0, len(base)+1)
	columns = append(append(columns, base...), domain.SourceFileColumn)

	var (
		rows     []domain.FieldRow
		failures []domain.DocumentFailure
	)
	for _, res := range results {
		if res.Err != nil {
			failures = append(failures, failure(res))
			continue
		}
		for _, r := range res.Rows {
			rows = append(rows, r.With(domain.SourceFileColumn, res.Name))
		}
	}

	data, err := s.encodeRows(columns, rows, failures, opts.Format)
	if err != nil {
		return nil, err
	}
	return s.output(CombinedPrefix, opts.Format, data, len(rows), failures), nil
}

func (s *convertService) zip(results []domain.DocumentResult, opts ConvertOptions) (*ConvertOutput, error) {
	columns := s.extractor.Columns(opts.IncludeNarrative)
	zw := archive.NewWriter()

	var (
		total    int
		failures []domain.DocumentFailure
	)
	for _, res := range results {
		if res.Err != nil {
			failures = append(failures, failure(res))
			continue
		}
		data, err := s.encodeRows(columns, res.Rows, nil, opts.Format)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", res.Name, err)
		}
		if _, err := zw.Add(archive.BaseName(res.Name)+"."+string(opts.Format), data); err != nil {
			return nil, err
		}
		total += len(res.Rows)
	}
	if len(failures) > 0 {
		data, err := csvexport.EncodeFailures(failures)
		if err != nil {
			return nil, err
		}
		if _, err := zw.Add(FailuresEntry, data); err != nil {
			return nil, err
		}
	}

	data, err := zw.Bytes()
	if err != nil {
		return nil, err
	}
	return &ConvertOutput{
		Filename:    csvexport.BuildFilename(ZipPrefix, s.now(), "zip"),
		ContentType: domain.ContentTypeZip,
		Data:        data,
		Rows:        total,
		Failures:    failures,
	}, nil
}

// encodeRows writes rows in format. Failures go to a second sheet in
// workbooks and are left out of CSV files.
func (s *convertService) encodeRows(columns []string, rows []domain.FieldRow, failures []domain.DocumentFailure, format domain.OutputFormat) ([]byte, error) {
	if format == domain.FormatCSV {
		return csvexport.Encode(columns, rows)
	}
	sheets := []xlsxexport.Sheet{xlsxexport.RowsSheet(xlsxexport.RowsSheetName, columns, rows)}
	if len(failures) > 0 {
		sheets = append(sheets, xlsxexport.FailuresSheet(failures))
	}
	return xlsxexport.Encode(sheets...)
}

func (s *convertService) output(prefix string, format domain.OutputFormat, data []byte, rows int, failures []domain.DocumentFailure) *ConvertOutput {
	contentType := domain.ContentTypeXLSX
	if format == domain.FormatCSV {
		contentType = domain.ContentTypeCSV
	}
	return &ConvertOutput{
		Filename:    csvexport.BuildFilename(prefix, s.now(), string(format)),
		ContentType: contentType,
		Data:        data,
		Rows:        rows,
		Failures:    failures,
	}
}

func (s *convertService) concurrency() int {
	if s.cfg.Concurrency < 1 {
		return 1
	}
	return s.cfg.Concurrency
}

func failure(res domain.DocumentResult) domain.DocumentFailure {
	return domain.DocumentFailure{Name: res.Name, Reason: res.Err.Error()}
}
