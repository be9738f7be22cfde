package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastPolicy keeps the fetch policy's shape with millisecond delays.
func fastPolicy() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     10 * time.Millisecond,
		Multiplier:     2.0,
	}
}

// sequence returns an attempt func that yields errs in order, then nil.
func sequence(calls *int, errs ...error) func(context.Context) error {
	return func(context.Context) error {
		i := *calls
		*calls++
		if i < len(errs) {
			return errs[i]
		}
		return nil
	}
}

func TestDo_Attempts(t *testing.T) {
	status := func(code int) error { return NewStatusError(code, "https://video.example.com/v/1") }

	tests := []struct {
		name      string
		errs      []error
		wantCalls int
		wantErr   bool
	}{
		{"first try", nil, 1, false},
		{"two 503s then ok", []error{status(503), status(503)}, 3, false},
		{"reset then ok", []error{errors.New("read tcp: connection reset by peer")}, 2, false},
		{"three 500s exhaust", []error{status(500), status(502), status(504)}, 3, true},
		{"404 is terminal", []error{status(404)}, 1, true},
		{"403 is terminal", []error{status(403)}, 1, true},
		{"unknown error is terminal", []error{errors.New("invalid character in response")}, 1, true},
		{"timeout then terminal", []error{context.DeadlineExceeded, status(410)}, 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int
			err := Do(context.Background(), fastPolicy(), sequence(&calls, tt.errs...))
			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDo_ReturnsLastError(t *testing.T) {
	var calls int
	last := NewStatusError(504, "https://docs.example.com/s/1.pdf")
	err := Do(context.Background(), fastPolicy(), sequence(&calls,
		NewStatusError(500, "https://docs.example.com/s/1.pdf"),
		NewStatusError(502, "https://docs.example.com/s/1.pdf"),
		last,
	))

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 504, se.StatusCode)
}

func TestDo_CancelStopsRetry(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := fastPolicy()
	cfg.MaxAttempts = 5
	cfg.InitialBackoff = 50 * time.Millisecond

	var calls int
	err := Do(ctx, cfg, func(context.Context) error {
		calls++
		if calls == 2 {
			cancel()
		}
		return NewStatusError(500, "https://video.example.com/v/1")
	})
	assert.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestDo_CancelDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	cfg := fastPolicy()
	cfg.InitialBackoff = time.Minute
	cfg.MaxBackoff = time.Minute

	start := time.Now()
	var calls int
	err := Do(ctx, cfg, sequence(&calls, NewStatusError(503, "u"), NewStatusError(503, "u")))
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestDo_ShouldRetryOverride(t *testing.T) {
	cfg := fastPolicy()
	cfg.ShouldRetry = func(err error) bool { return err.Error() == "again" }

	var calls int
	err := Do(context.Background(), cfg, sequence(&calls, errors.New("again"), errors.New("stop")))
	assert.EqualError(t, err, "stop")
	assert.Equal(t, 2, calls)
}

func TestDo_OnRetry(t *testing.T) {
	cfg := fastPolicy()
	var attempts []int
	cfg.OnRetry = func(attempt int, _ error) { attempts = append(attempts, attempt) }

	var calls int
	_ = Do(context.Background(), cfg, sequence(&calls, NewStatusError(500, "u"), NewStatusError(500, "u"), NewStatusError(500, "u")))
	// No callback after the final attempt.
	assert.Equal(t, []int{1, 2}, attempts)
}

func TestDoVal(t *testing.T) {
	var calls int
	body, err := DoVal(context.Background(), fastPolicy(), func(context.Context) ([]byte, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("dial tcp: connection refused")
		}
		return []byte("<html></html>"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(body))

	n, err := DoVal(context.Background(), fastPolicy(), func(context.Context) (int, error) {
		return 7, NewStatusError(400, "u")
	})
	assert.Error(t, err)
	assert.Zero(t, n)
}

func TestDo_ZeroConfigUsesDefaults(t *testing.T) {
	var calls int
	assert.NoError(t, Do(context.Background(), RetryConfig{}, sequence(&calls)))
	assert.Equal(t, 1, calls)
	assert.Equal(t, DefaultRetryConfig().MaxAttempts, applyDefaults(RetryConfig{}).MaxAttempts)
}

func TestDefaultRetryConfig_FetchPolicy(t *testing.T) {
	cfg := applyDefaults(DefaultRetryConfig())
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Zero(t, cfg.JitterFraction)

	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 10 * time.Second, 10 * time.Second}
	for i, d := range want {
		assert.Equal(t, d, computeBackoff(i, cfg), "retry %d", i)
	}
}

func TestComputeBackoff_Jitter(t *testing.T) {
	cfg := applyDefaults(RetryConfig{InitialBackoff: time.Second, MaxBackoff: 10 * time.Second, JitterFraction: 0.5})

	seen := make(map[time.Duration]bool)
	for range 100 {
		d := computeBackoff(0, cfg)
		seen[d] = true
		assert.GreaterOrEqual(t, d, 500*time.Millisecond)
		assert.LessOrEqual(t, d, 1500*time.Millisecond)
	}
	assert.Greater(t, len(seen), 1)
}

func TestFromRetryConfig(t *testing.T) {
	cfg := FromRetryConfig(5, 250, 2000, 3.0, 0)
	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.InitialBackoff)
	assert.Equal(t, 2*time.Second, cfg.MaxBackoff)
	assert.InDelta(t, 3.0, cfg.Multiplier, 0.001)

	def := FromRetryConfig(0, 0, 0, 0, -1)
	assert.Equal(t, DefaultRetryConfig().MaxAttempts, def.MaxAttempts)
	assert.Equal(t, time.Second, def.InitialBackoff)
	assert.Equal(t, 10*time.Second, def.MaxBackoff)
}

func TestRetryLogger(t *testing.T) {
	logger := RetryLogger("fetch", "get")
	assert.NotPanics(t, func() { logger(1, NewStatusError(503, "u")) })
}
