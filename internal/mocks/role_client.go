package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/idmigrate/keycloak-descope/internal/model"
)

// RoleClient mocks the model.RoleClient interface.
type RoleClient struct {
	mock.Mock
}

func (m *RoleClient) LoadAllRoles(ctx context.Context) ([]model.RemoteRole, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RemoteRole), args.Error(1)
}

func (m *RoleClient) CreateRole(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}
