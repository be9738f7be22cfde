package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/summons-enricher/internal/config"
	"github.com/sells-group/summons-enricher/internal/model"
)

const payload = `{"summons_id":"rec-1","summons_number":"000123456789"}`

func TestNewEnrichTask(t *testing.T) {
	task, err := NewEnrichTask([]byte(payload))
	require.NoError(t, err)
	assert.Equal(t, TaskEnrich, task.Type())
	assert.JSONEq(t, payload, string(task.Payload()))
}

func TestNewEnrichTask_RejectsInvalidPayload(t *testing.T) {
	_, err := NewEnrichTask([]byte(`{"summons_id":"rec-1"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "summons_number")
}

func TestProcessTask_Success(t *testing.T) {
	inv := &mockInvoker{}
	inv.On("Handle", mock.Anything, []byte(payload)).
		Return(model.Success("rec-1", []string{model.FieldNarrative}, true))

	err := NewHandler(inv).ProcessTask(context.Background(), asynq.NewTask(TaskEnrich, []byte(payload)))
	assert.NoError(t, err)
	inv.AssertExpectations(t)
}

func TestProcessTask_SkippedIsSuccess(t *testing.T) {
	inv := &mockInvoker{}
	inv.On("Handle", mock.Anything, mock.Anything).Return(model.Skipped("rec-1", "already enriched"))

	err := NewHandler(inv).ProcessTask(context.Background(), asynq.NewTask(TaskEnrich, []byte(payload)))
	assert.NoError(t, err)
}

func TestProcessTask_InputErrorSkipsRetry(t *testing.T) {
	inv := &mockInvoker{}
	inv.On("Handle", mock.Anything, mock.Anything).Return(model.Failure(model.ErrorInput, "missing summons_id"))

	err := NewHandler(inv).ProcessTask(context.Background(), asynq.NewTask(TaskEnrich, []byte(`{}`)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
	assert.Contains(t, err.Error(), "missing summons_id")
}

func TestProcessTask_PersistenceErrorRetries(t *testing.T) {
	inv := &mockInvoker{}
	inv.On("Handle", mock.Anything, mock.Anything).Return(model.Failure(model.ErrorPersistence, "connection refused"))

	err := NewHandler(inv).ProcessTask(context.Background(), asynq.NewTask(TaskEnrich, []byte(payload)))
	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
	assert.Contains(t, err.Error(), "PersistenceError")
}

func TestRedisOpt(t *testing.T) {
	opt := RedisOpt(config.QueueConfig{RedisAddr: "redis:6379", RedisPassword: "pw", RedisDB: 2})
	assert.Equal(t, "redis:6379", opt.Addr)
	assert.Equal(t, "pw", opt.Password)
	assert.Equal(t, 2, opt.DB)
}

func TestQueueName(t *testing.T) {
	assert.Equal(t, "default", queueName(config.QueueConfig{}))
	assert.Equal(t, "summons", queueName(config.QueueConfig{Name: "summons"}))
}

func TestClientOptions(t *testing.T) {
	c := NewClient(config.QueueConfig{RedisAddr: "localhost:6379", Name: "summons", MaxRetry: 5})
	defer c.Close() //nolint:errcheck

	assert.Len(t, c.options(), 2)

	c.maxRetry = 0
	assert.Len(t, c.options(), 1)
}

func TestClientEnqueue_InvalidPayload(t *testing.T) {
	c := NewClient(config.QueueConfig{RedisAddr: "localhost:6379"})
	defer c.Close() //nolint:errcheck

	_, err := c.Enqueue(context.Background(), []byte(`not json`))
	assert.Error(t, err)
}

func TestClientEnqueue(t *testing.T) {
	mr := miniredis.RunT(t)

	c := NewClient(config.QueueConfig{RedisAddr: mr.Addr(), Name: "summons", MaxRetry: 3})
	defer c.Close() //nolint:errcheck

	id, err := c.Enqueue(context.Background(), []byte(payload))
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	pending, err := mr.List("asynq:{summons}:pending")
	require.NoError(t, err)
	assert.Equal(t, []string{id}, pending)
}

func TestServerRun_ReturnsWhenContextDone(t *testing.T) {
	mr := miniredis.RunT(t)
	srv := NewServer(config.QueueConfig{RedisAddr: mr.Addr(), Name: "summons", Concurrency: 1}, NewHandler(&mockInvoker{}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}
