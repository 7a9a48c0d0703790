package registry

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"

	"github.com/warmstorage/client-backend/interfaces"
)

// MockProviderRegistry mocks the interfaces.ProviderRegistry interface.
type MockProviderRegistry struct {
	mock.Mock
}

// ProviderByID mocks the ProviderByID method.
func (m *MockProviderRegistry) ProviderByID(ctx context.Context, id interfaces.ProviderID) (interfaces.ProviderInfo, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(interfaces.ProviderInfo), args.Error(1)
}

// ProviderByAddress mocks the ProviderByAddress method.
func (m *MockProviderRegistry) ProviderByAddress(ctx context.Context, addr common.Address) (interfaces.ProviderInfo, error) {
	args := m.Called(ctx, addr)
	return args.Get(0).(interfaces.ProviderInfo), args.Error(1)
}

// AllProviders mocks the AllProviders method.
func (m *MockProviderRegistry) AllProviders(ctx context.Context) ([]interfaces.ProviderInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]interfaces.ProviderInfo), args.Error(1)
}

// EndorsedProviders mocks the EndorsedProviders method.
func (m *MockProviderRegistry) EndorsedProviders(ctx context.Context) ([]interfaces.ProviderID, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]interfaces.ProviderID), args.Error(1)
}

// ClientDataSets mocks the ClientDataSets method.
func (m *MockProviderRegistry) ClientDataSets(ctx context.Context, client common.Address) ([]interfaces.SelectionDataSet, error) {
	args := m.Called(ctx, client)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]interfaces.SelectionDataSet), args.Error(1)
}
