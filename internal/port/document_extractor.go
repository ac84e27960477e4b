package port

import "nfseconv/internal/domain"

// DocumentExtractor turns one raw NFSe document into rows.
type DocumentExtractor interface {
	ExtractDocumentWithStats(raw []byte, includeNarrative bool) ([]domain.FieldRow, domain.ExtractStats, error)
	Columns(includeNarrative bool) []string
}
