package main

import (
	"context"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/summons-enricher/internal/config"
	"github.com/sells-group/summons-enricher/internal/fetcher"
	"github.com/sells-group/summons-enricher/internal/ocr"
	"github.com/sells-group/summons-enricher/internal/pagedate"
	"github.com/sells-group/summons-enricher/internal/reconcile"
	"github.com/sells-group/summons-enricher/internal/resilience"
	"github.com/sells-group/summons-enricher/internal/store"
	"github.com/sells-group/summons-enricher/internal/worker"
)

// workerEnv holds the store and the worker needed by the enrich, serve
// and worker commands.
type workerEnv struct {
	Store  store.Store
	Worker *worker.Worker
}

// Close releases resources held by the environment.
func (we *workerEnv) Close() {
	if we.Store != nil {
		_ = we.Store.Close()
	}
}

// initWorker validates the config for mode, opens the store and builds the
// Worker. Callers should defer env.Close().
func initWorker(ctx context.Context, mode string) (*workerEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}

	m, err := ocr.NewModel(ctx, cfg)
	if err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "init model")
	}

	f := newFetcher(cfg.Fetch)
	w := worker.New(st,
		pagedate.NewExtractor(f),
		ocr.NewFieldExtractor(f, m, cfg.Model.MaxDocumentBytes),
		worker.WithReconciler(reconcile.New(cfg.Worker.NarrativePreview)),
	)

	return &workerEnv{Store: st, Worker: w}, nil
}

// newFetcher builds the resilient fetcher shared by page and document
// extraction.
func newFetcher(fc config.FetchConfig) *fetcher.HTTPFetcher {
	limiters := make(map[string]*rate.Limiter, len(fc.RateLimits))
	for _, rl := range fc.RateLimits {
		if rl.Host == "" || rl.RPS <= 0 {
			continue
		}
		burst := int(rl.RPS)
		if burst < 1 {
			burst = 1
		}
		limiters[rl.Host] = rate.NewLimiter(rate.Limit(rl.RPS), burst)
	}

	retry := resilience.FromRetryConfig(fc.MaxAttempts, fc.InitialBackoffMs, fc.MaxBackoffMs, fc.Multiplier, 0)
	retry.OnRetry = resilience.RetryLogger("fetch", "get")

	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:    fc.UserAgent,
		Timeout:      fc.Timeout(),
		MaxBytes:     fc.MaxBodyBytes,
		Retry:        retry,
		RateLimiters: limiters,
	})
}
