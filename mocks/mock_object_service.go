package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"nfseconv/internal/service"
)

// MockObjectService is a mock implementation of service.ObjectService.
type MockObjectService struct {
	mock.Mock
}

func (m *MockObjectService) ConvertObject(ctx context.Context, input service.ObjectConvertInput) (*service.ObjectConvertResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ObjectConvertResult), args.Error(1)
}
