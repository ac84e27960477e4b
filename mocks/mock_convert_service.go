package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"nfseconv/internal/domain"
	"nfseconv/internal/service"
)

// MockConvertService is a mock implementation of service.ConvertService.
type MockConvertService struct {
	mock.Mock
}

func (m *MockConvertService) Extract(ctx context.Context, docs []domain.DocumentInput, includeNarrative bool) ([]domain.DocumentResult, error) {
	args := m.Called(ctx, docs, includeNarrative)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DocumentResult), args.Error(1)
}

func (m *MockConvertService) Convert(ctx context.Context, docs []domain.DocumentInput, opts service.ConvertOptions) (*service.ConvertOutput, error) {
	args := m.Called(ctx, docs, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ConvertOutput), args.Error(1)
}

func (m *MockConvertService) ExpandArchive(data []byte) ([]domain.DocumentInput, error) {
	args := m.Called(data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DocumentInput), args.Error(1)
}
