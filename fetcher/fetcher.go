// Package fetcher retrieves sets of URLs with bounded retries and reports
// every outcome to a pluggable event handler. Server errors, timeouts and
// connection failures are transient and retried with exponential backoff;
// client errors are permanent and resolve a fetch immediately.
package fetcher

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Config holds retry and classification tuning for a Fetcher.
type Config struct {
	// MaxRetries is the number of additional attempts after the first.
	MaxRetries int `mapstructure:"max-retries"`
	// BaseDelay is the backoff delay before the first retry. The delay
	// doubles with every further retry.
	BaseDelay time.Duration `mapstructure:"base-delay"`
	// MaxDelay caps the backoff delay.
	MaxDelay time.Duration `mapstructure:"max-delay"`
	// Timeout bounds every individual request attempt.
	Timeout time.Duration `mapstructure:"timeout"`
	// SlowThreshold is the latency above which a successful response is
	// additionally reported as slow.
	SlowThreshold time.Duration `mapstructure:"slow-threshold"`
}

// DefaultConfig returns the default fetcher configuration.
func DefaultConfig() Config {
	return Config{
		MaxRetries:    3,
		BaseDelay:     time.Second,
		MaxDelay:      30 * time.Second,
		Timeout:       5 * time.Second,
		SlowThreshold: time.Second,
	}
}

// A wrapper around zap.Logger to make it compatible with the
// retryablehttp.LeveledLogger interface.
type retryableHttpLogger struct {
	inner *zap.Logger
}

func (r retryableHttpLogger) Error(format string, args ...any) {
	r.inner.Sugar().Errorw(format, args...)
}

func (r retryableHttpLogger) Info(format string, args ...any) {
	r.inner.Sugar().Infow(format, args...)
}

func (r retryableHttpLogger) Warn(format string, args ...any) {
	r.inner.Sugar().Warnw(format, args...)
}

func (r retryableHttpLogger) Debug(format string, args ...any) {
	r.inner.Sugar().Debugw(format, args...)
}

// Opt modifies a Fetcher at construction.
type Opt func(*Fetcher)

// WithLogger sets the fetcher logger.
func WithLogger(logger *zap.Logger) Opt {
	return func(f *Fetcher) {
		f.logger = logger
		f.client.Logger = &retryableHttpLogger{inner: logger}
	}
}

// WithClock substitutes the clock used for latency measurement.
func WithClock(clock clockwork.Clock) Opt {
	return func(f *Fetcher) {
		f.clock = clock
	}
}

func withCustomHTTPClient(client *http.Client) Opt {
	return func(f *Fetcher) {
		f.client.HTTPClient = client
	}
}

// Fetcher retrieves URLs and classifies every outcome to its Handler.
type Fetcher struct {
	logger  *zap.Logger
	clock   clockwork.Clock
	cfg     Config
	handler Handler
	client  *retryablehttp.Client

	// mu serializes fetches; the hook state below is per-call.
	mu  sync.Mutex
	cur *fetchState
}

// fetchState carries one Fetch call across the retry client's hooks.
type fetchState struct {
	url        string
	attempts   int
	start      time.Time
	latency    time.Duration
	lastReason string
}

// New returns a Fetcher delivering events to handler.
func New(cfg Config, handler Handler, opts ...Opt) *Fetcher {
	f := &Fetcher{
		logger:  zap.NewNop(),
		clock:   clockwork.NewRealClock(),
		cfg:     cfg,
		handler: handler,
	}
	f.client = &retryablehttp.Client{
		HTTPClient:   &http.Client{Timeout: cfg.Timeout},
		RetryMax:     cfg.MaxRetries,
		RetryWaitMin: cfg.BaseDelay,
		RetryWaitMax: cfg.MaxDelay,
		CheckRetry:   f.checkRetry,
		Backoff:      f.backoff,
	}
	f.client.RequestLogHook = func(_ retryablehttp.Logger, _ *http.Request, attempt int) {
		f.cur.attempts = attempt + 1
		f.cur.start = f.clock.Now()
	}
	f.client.ResponseLogHook = func(_ retryablehttp.Logger, _ *http.Response) {
		f.cur.latency = f.clock.Since(f.cur.start)
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// checkRetry classifies each attempt. Responses with a 5xx status and
// transport failures are transient; everything else resolves the fetch.
func (f *Fetcher) checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	st := f.cur
	switch {
	case err != nil:
		if isTimeout(err) {
			st.lastReason = "timeout"
			f.handler.OnTimeout(st.url)
		} else {
			st.lastReason = err.Error()
			f.handler.OnConnectionError(st.url, err)
		}
		return true, nil
	case resp.StatusCode >= http.StatusInternalServerError:
		st.lastReason = resp.Status
		f.handler.OnServerError(st.url, resp.StatusCode)
		return true, nil
	default:
		return false, nil
	}
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// backoff computes the standard exponential delay (base doubled per attempt,
// capped at max) and reports the scheduled retry. The retry client only
// calls it when a retry will actually run.
func (f *Fetcher) backoff(min, max time.Duration, attempt int, resp *http.Response) time.Duration {
	delay := retryablehttp.DefaultBackoff(min, max, attempt, resp)
	f.handler.OnRetry(f.cur.url, attempt+1, delay, f.cur.lastReason)
	retriesTotal.Inc()
	return delay
}

// Fetch retrieves url, retrying transient failures per the configuration,
// and reports whether it ultimately succeeded. Events are delivered to the
// handler as they happen.
func (f *Fetcher) Fetch(ctx context.Context, url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cur = &fetchState{url: url}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		f.logger.Warn("unusable url", zap.String("url", url), zap.Error(err))
		f.handler.OnConnectionError(url, err)
		f.handler.OnGiveUp(url, 0)
		fetchesTotal.WithLabelValues(outcomeGiveUp).Inc()
		return false
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		if ctx.Err() != nil {
			f.logger.Debug("fetch canceled", zap.String("url", url), zap.Error(ctx.Err()))
			return false
		}
		f.logger.Debug("fetch gave up",
			zap.String("url", url),
			zap.Int("attempts", f.cur.attempts),
			zap.String("reason", f.cur.lastReason),
		)
		f.handler.OnGiveUp(url, f.cur.attempts)
		fetchesTotal.WithLabelValues(outcomeGiveUp).Inc()
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		latency := f.cur.latency
		f.handler.OnSuccess(url, resp.StatusCode, latency)
		fetchesTotal.WithLabelValues(outcomeSuccess).Inc()
		latencySeconds.Observe(latency.Seconds())
		if latency > f.cfg.SlowThreshold {
			f.handler.OnSlowResponse(url, latency)
		}
		return true
	}
	f.logger.Debug("fetch failed", zap.String("url", url), zap.Int("status", resp.StatusCode))
	f.handler.OnClientError(url, resp.StatusCode)
	fetchesTotal.WithLabelValues(outcomeClientError).Inc()
	return false
}

// FetchAll drains the provider in order, fetching every URL, and returns the
// number of successful fetches. A canceled context stops the drain early.
func (f *Fetcher) FetchAll(ctx context.Context, provider Provider) int {
	f.logger.Info("fetching url set", zap.Int("urls", provider.Total()))
	ok := 0
	for {
		if ctx.Err() != nil {
			f.logger.Warn("fetch run canceled", zap.Error(ctx.Err()))
			return ok
		}
		url, more := provider.Next()
		if !more {
			return ok
		}
		if f.Fetch(ctx, url) {
			ok++
		}
	}
}
