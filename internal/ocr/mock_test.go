package ocr

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/summons-enricher/internal/fetcher"
	"github.com/sells-group/summons-enricher/pkg/anthropic"
)

type mockModel struct {
	mock.Mock
}

func (m *mockModel) Generate(ctx context.Context, prompt string, document []byte, mimeType string) (string, error) {
	args := m.Called(ctx, prompt, document, mimeType)
	return args.String(0), args.Error(1)
}

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) Get(ctx context.Context, url string, opts ...fetcher.Option) (*fetcher.Response, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fetcher.Response), args.Error(1)
}

type mockAnthropicClient struct {
	mock.Mock
}

func (m *mockAnthropicClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}
