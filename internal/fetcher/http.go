package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/summons-enricher/internal/resilience"
)

// ErrBodyTooLarge is returned when a response exceeds the size limit.
var ErrBodyTooLarge = eris.New("fetcher: response body exceeds size limit")

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	UserAgent string
	// Timeout bounds each attempt, including reading the body. Default: 30s.
	Timeout      time.Duration
	MaxBytes     int64
	Retry        resilience.RetryConfig
	RateLimiters map[string]*rate.Limiter
}

// HTTPFetcher implements Fetcher using net/http with retry and rate limiting.
type HTTPFetcher struct {
	client   *http.Client
	opts     HTTPOptions
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	fallback rate.Limit
}

// NewHTTPFetcher creates a new HTTPFetcher with the given options.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "summons-enricher/1.0"
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 32 << 20
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = resilience.DefaultRetryConfig()
	}
	if opts.Retry.OnRetry == nil {
		opts.Retry.OnRetry = resilience.RetryLogger("http", "get")
	}
	limiters := make(map[string]*rate.Limiter)
	for k, v := range opts.RateLimiters {
		limiters[k] = v
	}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     20,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &HTTPFetcher{
		// Attempt deadlines come from the request context.
		client:   &http.Client{Transport: transport},
		opts:     opts,
		limiters: limiters,
		fallback: 20,
	}
}

// limiterFor returns the host's limiter, creating one at the fallback rate
// for hosts without a configured limit.
func (f *HTTPFetcher) limiterFor(rawURL string) *rate.Limiter {
	host := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		host = u.Host
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	lim, ok := f.limiters[host]
	if !ok {
		lim = rate.NewLimiter(f.fallback, int(f.fallback))
		f.limiters[host] = lim
	}
	return lim
}

// Get fetches rawURL, retrying transient failures. The last error is
// returned once attempts are exhausted or a terminal error occurs.
func (f *HTTPFetcher) Get(ctx context.Context, rawURL string, opts ...Option) (*Response, error) {
	ro := requestOptions{maxBytes: f.opts.MaxBytes}
	for _, o := range opts {
		o(&ro)
	}

	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return nil, eris.Wrapf(err, "fetcher: invalid url %q", rawURL)
	}

	lim := f.limiterFor(rawURL)
	resp, err := resilience.DoVal(ctx, f.opts.Retry, func(ctx context.Context) (*Response, error) {
		if err := lim.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "rate limiter wait")
		}
		return f.attempt(ctx, rawURL, ro)
	})
	if err != nil {
		zap.L().Debug("fetch failed",
			zap.String("url", rawURL),
			zap.String("class", resilience.Classify(err)),
			zap.Error(err),
		)
		return nil, err
	}
	return resp, nil
}

func (f *HTTPFetcher) attempt(ctx context.Context, rawURL string, ro requestOptions) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, f.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "create request")
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	for k, v := range ro.headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "http get")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, resilience.NewStatusError(resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, ro.maxBytes+1))
	if err != nil {
		return nil, eris.Wrap(err, "read body")
	}
	if int64(len(body)) > ro.maxBytes {
		return nil, ErrBodyTooLarge
	}

	return &Response{
		URL:         rawURL,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Header:      resp.Header,
		Body:        body,
	}, nil
}
