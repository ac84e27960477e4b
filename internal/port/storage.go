package port

import (
	"context"
	"io"
)

// UploadInput encapsulates the parameters needed to upload an object.
type UploadInput struct {
	Bucket      string
	Key         string
	Body        io.Reader
	ContentType string
}

// UploadOutput contains the result of a successful upload.
type UploadOutput struct {
	Location string
	ETag     string
}

// ObjectSource fetches raw invoice exports from object storage.
type ObjectSource interface {
	// Download returns the object's bytes. A missing object yields
	// domain.ErrObjectNotFound; one over the size limit domain.ErrFileTooLarge.
	Download(ctx context.Context, bucket, key string) ([]byte, error)
}

// ObjectStorage is an ObjectSource that also stores generated spreadsheets
// and hands out presigned links to them.
type ObjectStorage interface {
	ObjectSource
	Upload(ctx context.Context, input UploadInput) (*UploadOutput, error)
	GetPresignedURL(ctx context.Context, bucket, key string, expirySeconds int64) (string, error)
}
