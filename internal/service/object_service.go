package service

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"nfseconv/internal/archive"
	"nfseconv/internal/config"
	"nfseconv/internal/domain"
	"nfseconv/internal/logger"
	"nfseconv/internal/port"
)

// ObjectConvertInput names an invoice export stored in S3.
type ObjectConvertInput struct {
	Bucket  string
	Key     string
	Options ConvertOptions
	// OutputPrefix, when set, stores the result in the bucket under this
	// prefix instead of returning it inline.
	OutputPrefix string
}

// ObjectConvertResult is the outcome of an object conversion. Location and
// URL are set when the result was stored.
type ObjectConvertResult struct {
	Output   *ConvertOutput
	Key      string
	Location string
	URL      string
}

// ObjectService converts invoice exports read from object storage.
type ObjectService interface {
	ConvertObject(ctx context.Context, input ObjectConvertInput) (*ObjectConvertResult, error)
}

type objectService struct {
	storage port.ObjectStorage
	convert ConvertService
	cfg     *config.S3Config
}

// NewObjectService creates a new ObjectService implementation.
func NewObjectService(storage port.ObjectStorage, convert ConvertService, cfg *config.S3Config) ObjectService {
	return &objectService{
		storage: storage,
		convert: convert,
		cfg:     cfg,
	}
}

func (s *objectService) ConvertObject(ctx context.Context, input ObjectConvertInput) (*ObjectConvertResult, error) {
	bucket := input.Bucket
	if bucket == "" {
		bucket = s.cfg.Bucket
	}
	if input.Key == "" {
		return nil, fmt.Errorf("object key is required: %w", domain.ErrInvalidOptions)
	}

	var docs []domain.DocumentInput
	switch {
	case archive.IsArchive(input.Key):
		data, err := s.storage.Download(ctx, bucket, input.Key)
		if err != nil {
			return nil, err
		}
		if docs, err = s.convert.ExpandArchive(data); err != nil {
			return nil, err
		}
	case archive.IsDocument(input.Key):
		data, err := s.storage.Download(ctx, bucket, input.Key)
		if err != nil {
			return nil, err
		}
		docs = []domain.DocumentInput{{Name: path.Base(input.Key), Content: data}}
	default:
		return nil, domain.ErrUnsupportedFileType
	}

	opts := input.Options
	if len(docs) > 1 && opts.Mode == domain.OutputSingle {
		opts.Mode = domain.OutputZip
	}
	out, err := s.convert.Convert(ctx, docs, opts)
	if err != nil {
		return nil, err
	}

	res := &ObjectConvertResult{Output: out}
	if input.OutputPrefix == "" {
		return res, nil
	}

	res.Key = strings.TrimSuffix(input.OutputPrefix, "/") + "/" + out.Filename
	uploaded, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      bucket,
		Key:         res.Key,
		Body:        bytes.NewReader(out.Data),
		ContentType: out.ContentType,
	})
	if err != nil {
		return nil, fmt.Errorf("storing %s: %w", res.Key, err)
	}
	res.Location = uploaded.Location

	url, err := s.storage.GetPresignedURL(ctx, bucket, res.Key, s.cfg.PresignExpiry)
	if err != nil {
		return nil, fmt.Errorf("presigning %s: %w", res.Key, err)
	}
	res.URL = url

	reqLog := logger.FromContext(ctx)
	reqLog.Info().
		Str("bucket", bucket).
		Str("source", input.Key).
		Str("result", res.Key).
		Msg("object conversion stored")
	return res, nil
}
