package nfse

import (
	"encoding/xml"
	"errors"
	"fmt"

	"nfseconv/internal/domain"
)

// ParseError reports a document that is not well-formed XML.
type ParseError struct {
	Err  error
	Line int
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed nfse document (line %d): %v", e.Line, e.Err)
	}
	return fmt.Sprintf("malformed nfse document: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is makes every ParseError match domain.ErrMalformedDocument.
func (e *ParseError) Is(target error) bool {
	return target == domain.ErrMalformedDocument
}

func newParseError(err error) *ParseError {
	pe := &ParseError{Err: err}
	var syn *xml.SyntaxError
	if errors.As(err, &syn) {
		pe.Line = syn.Line
	}
	return pe
}
