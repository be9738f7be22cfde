// Package queue carries trigger payloads over a Redis-backed asynq queue.
package queue

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hibiken/asynq"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/summons-enricher/internal/config"
	"github.com/sells-group/summons-enricher/internal/model"
	"github.com/sells-group/summons-enricher/internal/trigger"
)

// TaskEnrich is the task type for one enrichment invocation.
const TaskEnrich = "summons:enrich"

// Invoker runs one invocation for a raw trigger payload.
type Invoker interface {
	Handle(ctx context.Context, payload []byte) model.Outcome
}

// NewEnrichTask wraps a trigger payload. The payload is validated first so
// malformed input never reaches the queue.
func NewEnrichTask(payload []byte, opts ...asynq.Option) (*asynq.Task, error) {
	if _, err := trigger.Normalize(payload); err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskEnrich, payload, opts...), nil
}

// Handler adapts an Invoker to asynq.
type Handler struct {
	invoker Invoker
}

// NewHandler creates a Handler.
func NewHandler(inv Invoker) *Handler {
	return &Handler{invoker: inv}
}

// ProcessTask implements asynq.Handler. Input errors are not retried;
// persistence failures are returned so the queue's retry policy applies.
func (h *Handler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	out := h.invoker.Handle(ctx, t.Payload())
	switch {
	case out.Succeeded():
		return nil
	case out.StatusCode == http.StatusBadRequest:
		zap.L().Warn("queue: dropping invalid task",
			zap.String("type", t.Type()),
			zap.String("message", out.Body.Message),
		)
		return fmt.Errorf("%s: %s: %w", out.Body.Error, out.Body.Message, asynq.SkipRetry)
	default:
		return eris.Errorf("queue: %s: %s", out.Body.Error, out.Body.Message)
	}
}

// RedisOpt builds the connection options from cfg.
func RedisOpt(cfg config.QueueConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
}

func queueName(cfg config.QueueConfig) string {
	if cfg.Name == "" {
		return "default"
	}
	return cfg.Name
}

// Server consumes enrichment tasks.
type Server struct {
	srv *asynq.Server
	mux *asynq.ServeMux
}

// NewServer creates a Server that dispatches TaskEnrich to h.
func NewServer(cfg config.QueueConfig, h asynq.Handler) *Server {
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	onError := asynq.ErrorHandlerFunc(func(_ context.Context, t *asynq.Task, err error) {
		zap.L().Error("queue: task failed",
			zap.String("type", t.Type()),
			zap.Error(err),
		)
	})
	srv := asynq.NewServer(RedisOpt(cfg), asynq.Config{
		Concurrency:  concurrency,
		Logger:       zap.S(),
		ErrorHandler: onError,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	mux := asynq.NewServeMux()
	mux.Handle(TaskEnrich, h)
	return &Server{srv: srv, mux: mux}
}

// Run processes tasks until ctx is done, then waits for in-flight tasks
// and returns.
func (s *Server) Run(ctx context.Context) error {
	if err := s.srv.Start(s.mux); err != nil {
		return eris.Wrap(err, "queue: start server")
	}
	<-ctx.Done()
	zap.L().Info("queue: shutting down")
	s.srv.Shutdown()
	return nil
}

// Client enqueues enrichment tasks.
type Client struct {
	client   *asynq.Client
	queue    string
	maxRetry int
}

// NewClient creates a Client.
func NewClient(cfg config.QueueConfig) *Client {
	return &Client{
		client:   asynq.NewClient(RedisOpt(cfg)),
		queue:    queueName(cfg),
		maxRetry: cfg.MaxRetry,
	}
}

// Enqueue pushes a trigger payload and returns the task id.
func (c *Client) Enqueue(ctx context.Context, payload []byte) (string, error) {
	task, err := NewEnrichTask(payload, c.options()...)
	if err != nil {
		return "", err
	}
	info, err := c.client.EnqueueContext(ctx, task)
	if err != nil {
		return "", eris.Wrap(err, "queue: enqueue")
	}
	return info.ID, nil
}

func (c *Client) options() []asynq.Option {
	opts := []asynq.Option{asynq.Queue(c.queue)}
	if c.maxRetry > 0 {
		opts = append(opts, asynq.MaxRetry(c.maxRetry))
	}
	return opts
}

// Close releases the Redis connection.
func (c *Client) Close() error {
	return c.client.Close()
}
