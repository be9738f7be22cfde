// Package fetcher downloads remote resources with per-attempt timeouts,
// retry with exponential backoff, and per-host rate limiting.
package fetcher

import (
	"context"
	"net/http"
)

// Fetcher defines the interface for downloading remote data.
type Fetcher interface {
	// Get fetches the URL and returns the fully read response. Non-2xx
	// statuses are returned as *resilience.StatusError.
	Get(ctx context.Context, url string, opts ...Option) (*Response, error)
}

// Response is a successfully fetched resource.
type Response struct {
	URL         string
	StatusCode  int
	ContentType string
	Header      http.Header
	Body        []byte
}

// requestOptions are per-call settings built from Options.
type requestOptions struct {
	headers  map[string]string
	maxBytes int64
}

// Option customizes a single Get call.
type Option func(*requestOptions)

// WithHeader sets a request header.
func WithHeader(key, value string) Option {
	return func(o *requestOptions) {
		if o.headers == nil {
			o.headers = make(map[string]string)
		}
		o.headers[key] = value
	}
}

// WithAccept sets the Accept header.
func WithAccept(mediaType string) Option {
	return WithHeader("Accept", mediaType)
}

// WithMaxBytes overrides the fetcher's body size limit for this call.
func WithMaxBytes(n int64) Option {
	return func(o *requestOptions) { o.maxBytes = n }
}
