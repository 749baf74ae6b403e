package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/idmigrate/keycloak-descope/internal/model"
)

// UserClient mocks the model.UserClient interface.
type UserClient struct {
	mock.Mock
}

func (m *UserClient) BatchCreateUsers(ctx context.Context, req model.BatchCreateRequest) (model.BatchCreateResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(model.BatchCreateResult), args.Error(1)
}

func (m *UserClient) DeactivateUser(ctx context.Context, loginID string) error {
	args := m.Called(ctx, loginID)
	return args.Error(0)
}
