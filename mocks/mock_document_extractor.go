package mocks

import (
	"github.com/stretchr/testify/mock"

	"nfseconv/internal/domain"
)

// MockDocumentExtractor is a mock implementation of port.DocumentExtractor.
type MockDocumentExtractor struct {
	mock.Mock
}

func (m *MockDocumentExtractor) ExtractDocumentWithStats(raw []byte, includeNarrative bool) ([]domain.FieldRow, domain.ExtractStats, error) {
	args := m.Called(raw, includeNarrative)
	var rows []domain.FieldRow
	if args.Get(0) != nil {
		rows = args.Get(0).([]domain.FieldRow)
	}
	return rows, args.Get(1).(domain.ExtractStats), args.Error(2)
}

func (m *MockDocumentExtractor) Columns(includeNarrative bool) []string {
	args := m.Called(includeNarrative)
	return args.Get(0).([]string)
}
