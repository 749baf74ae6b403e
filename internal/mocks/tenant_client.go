package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/idmigrate/keycloak-descope/internal/model"
)

// TenantClient mocks the model.TenantClient interface.
type TenantClient struct {
	mock.Mock
}

func (m *TenantClient) LoadAllTenants(ctx context.Context) ([]model.RemoteTenant, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RemoteTenant), args.Error(1)
}

func (m *TenantClient) CreateTenant(ctx context.Context, name, id string) error {
	args := m.Called(ctx, name, id)
	return args.Error(0)
}
