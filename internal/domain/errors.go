package domain

import "errors"

var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrInvalidArchive      = errors.New("archive is not a valid zip file")
	ErrNoDocuments         = errors.New("no documents to convert")
	ErrMalformedDocument   = errors.New("document is not well-formed XML")
	ErrObjectNotFound      = errors.New("object not found in storage")
	ErrSourceDisabled      = errors.New("object storage source is disabled")
	ErrInvalidOptions      = errors.New("invalid conversion options")
)
