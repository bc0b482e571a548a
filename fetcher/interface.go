package fetcher

import "time"

//go:generate mockgen -typed -package=fetcher -destination=./mocks.go -source=./interface.go

// Handler receives fetch lifecycle events. Implementations run inline on the
// fetch path and must not block.
type Handler interface {
	// OnSuccess fires once per fetch that resolved with a 2xx status.
	OnSuccess(url string, status int, latency time.Duration)
	// OnClientError fires once per fetch that resolved with a permanent
	// non-success status. Client errors are never retried.
	OnClientError(url string, status int)
	// OnServerError fires for every attempt that came back with a 5xx
	// status.
	OnServerError(url string, status int)
	// OnRetry fires when a retry has been scheduled, right before its
	// backoff delay is served.
	OnRetry(url string, attempt int, delay time.Duration, reason string)
	// OnGiveUp fires when transient failures exhausted every attempt.
	OnGiveUp(url string, attempts int)
	// OnTimeout fires for every attempt that timed out.
	OnTimeout(url string)
	// OnConnectionError fires for every attempt that failed before an HTTP
	// status was received.
	OnConnectionError(url string, err error)
	// OnSlowResponse fires after OnSuccess when the latency exceeded the
	// configured threshold.
	OnSlowResponse(url string, latency time.Duration)
}

// Provider enumerates the URLs of a fetch run.
type Provider interface {
	// Next returns the next URL, or false when the set is exhausted.
	Next() (string, bool)
	// Total returns the size of the URL set.
	Total() int
}
