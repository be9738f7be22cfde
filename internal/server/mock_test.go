package server

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/summons-enricher/internal/model"
)

type mockInvoker struct {
	mock.Mock
}

func (m *mockInvoker) Handle(ctx context.Context, payload []byte) model.Outcome {
	args := m.Called(ctx, payload)
	return args.Get(0).(model.Outcome)
}
