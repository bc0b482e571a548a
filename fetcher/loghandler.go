package fetcher

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/exp/maps"
)

// Summary aggregates the statistics of one fetch run.
type Summary struct {
	TotalURLs     int            `json:"total_urls"`
	Successful    int            `json:"successful"`
	Failed        int            `json:"failed"`
	TotalRequests int            `json:"total_requests"`
	Retries       int            `json:"retries"`
	AvgLatencyMS  float64        `json:"avg_latency_ms"`
	SlowResponses int            `json:"slow_responses"`
	ByStatus      map[string]int `json:"by_status"`
	ByError       ErrorCounts    `json:"by_error"`
}

// ErrorCounts splits transport failures by kind.
type ErrorCounts struct {
	Timeout    int `json:"timeout"`
	Connection int `json:"connection"`
}

// LogHandlerOpt modifies a LogHandler at construction.
type LogHandlerOpt func(*logHandlerOptions)

type logHandlerOptions struct {
	clock clockwork.Clock
}

// WithEventClock substitutes the clock stamping event log lines.
func WithEventClock(clock clockwork.Clock) LogHandlerOpt {
	return func(o *logHandlerOptions) {
		o.clock = clock
	}
}

// eventClock adapts clockwork to the zap clock interface so tests control
// event timestamps.
type eventClock struct {
	clockwork.Clock
}

func (c eventClock) NewTicker(d time.Duration) *time.Ticker {
	return time.NewTicker(d)
}

// LogHandler is a Handler that appends one JSON event per line to a log file
// and aggregates a Summary of the run. Event lines carry the event name, the
// UTC timestamp, the url and the event's own fields.
type LogHandler struct {
	events *zap.Logger
	file   afero.File

	mu           sync.Mutex
	urls         int
	successful   int
	failed       int
	retries      int
	slow         int
	timeouts     int
	connFailures int
	totalLatency time.Duration
	byStatus     map[string]int
}

// NewLogHandler opens (and truncates) the event log at path on fs.
func NewLogHandler(fs afero.Fs, path string, opts ...LogHandlerOpt) (*LogHandler, error) {
	o := &logHandlerOptions{clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(o)
	}
	file, err := fs.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open event log %s: %w", path, err)
	}
	enc := zapcore.NewJSONEncoder(zapcore.EncoderConfig{
		MessageKey: "event",
		TimeKey:    "timestamp",
		EncodeTime: zapcore.ISO8601TimeEncoder,
		LineEnding: zapcore.DefaultLineEnding,
	})
	core := zapcore.NewCore(enc, zapcore.AddSync(file), zapcore.InfoLevel)
	return &LogHandler{
		events:   zap.New(core, zap.WithClock(eventClock{o.clock})),
		file:     file,
		byStatus: map[string]int{},
	}, nil
}

// Close flushes and closes the event log.
func (h *LogHandler) Close() error {
	if err := h.events.Sync(); err != nil {
		return fmt.Errorf("sync event log: %w", err)
	}
	if err := h.file.Close(); err != nil {
		return fmt.Errorf("close event log: %w", err)
	}
	return nil
}

// Summary returns the aggregated view of everything handled so far.
func (h *LogHandler) Summary() Summary {
	h.mu.Lock()
	defer h.mu.Unlock()
	avg := 0.0
	if h.successful > 0 {
		avg = math.Round(ms(h.totalLatency)/float64(h.successful)*100) / 100
	}
	return Summary{
		TotalURLs:     h.urls,
		Successful:    h.successful,
		Failed:        h.failed,
		TotalRequests: h.urls + h.retries,
		Retries:       h.retries,
		AvgLatencyMS:  avg,
		SlowResponses: h.slow,
		ByStatus:      maps.Clone(h.byStatus),
		ByError: ErrorCounts{
			Timeout:    h.timeouts,
			Connection: h.connFailures,
		},
	}
}

// OnSuccess implements Handler.
func (h *LogHandler) OnSuccess(url string, status int, latency time.Duration) {
	h.mu.Lock()
	h.urls++
	h.successful++
	h.totalLatency += latency
	h.byStatus[strconv.Itoa(status)]++
	h.mu.Unlock()
	h.events.Info("success",
		zap.String("url", url),
		zap.Int("status", status),
		zap.Float64("latency_ms", ms(latency)),
	)
}

// OnClientError implements Handler.
func (h *LogHandler) OnClientError(url string, status int) {
	h.mu.Lock()
	h.urls++
	h.failed++
	h.byStatus[strconv.Itoa(status)]++
	h.mu.Unlock()
	h.events.Info("client_error", zap.String("url", url), zap.Int("status", status))
}

// OnServerError implements Handler. Server errors are not terminal, the
// fetch either retries or gives up, so only the event is recorded.
func (h *LogHandler) OnServerError(url string, status int) {
	h.events.Info("server_error", zap.String("url", url), zap.Int("status", status))
}

// OnRetry implements Handler.
func (h *LogHandler) OnRetry(url string, attempt int, delay time.Duration, reason string) {
	h.mu.Lock()
	h.retries++
	h.mu.Unlock()
	h.events.Info("retry",
		zap.String("url", url),
		zap.Int("attempt", attempt),
		zap.Float64("delay_ms", ms(delay)),
		zap.String("reason", reason),
	)
}

// OnGiveUp implements Handler.
func (h *LogHandler) OnGiveUp(url string, attempts int) {
	h.mu.Lock()
	h.urls++
	h.failed++
	h.mu.Unlock()
	h.events.Info("give_up", zap.String("url", url), zap.Int("attempts", attempts))
}

// OnTimeout implements Handler.
func (h *LogHandler) OnTimeout(url string) {
	h.mu.Lock()
	h.timeouts++
	h.mu.Unlock()
	h.events.Info("timeout", zap.String("url", url))
}

// OnConnectionError implements Handler.
func (h *LogHandler) OnConnectionError(url string, err error) {
	h.mu.Lock()
	h.connFailures++
	h.mu.Unlock()
	h.events.Info("connection_error", zap.String("url", url), zap.String("error", err.Error()))
}

// OnSlowResponse implements Handler.
func (h *LogHandler) OnSlowResponse(url string, latency time.Duration) {
	h.mu.Lock()
	h.slow++
	h.mu.Unlock()
	h.events.Info("slow_response", zap.String("url", url), zap.Float64("latency_ms", ms(latency)))
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
