package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
)

// ExportSource mocks the model.ExportSource interface.
type ExportSource struct {
	mock.Mock
}

func (m *ExportSource) List(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *ExportSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}
