package worker

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/summons-enricher/internal/model"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) GetSnapshot(ctx context.Context, summonsID string) (*model.RecordSnapshot, error) {
	args := m.Called(ctx, summonsID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RecordSnapshot), args.Error(1)
}

func (m *mockStore) ApplyUpdate(ctx context.Context, summonsID string, u *model.Update) error {
	args := m.Called(ctx, summonsID, u)
	return args.Error(0)
}

type mockPages struct {
	mock.Mock
}

func (m *mockPages) Extract(ctx context.Context, pageURL string) (string, error) {
	args := m.Called(ctx, pageURL)
	return args.String(0), args.Error(1)
}

type mockDocs struct {
	mock.Mock
}

func (m *mockDocs) Extract(ctx context.Context, documentURL string) (*model.DocumentFields, error) {
	args := m.Called(ctx, documentURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentFields), args.Error(1)
}
