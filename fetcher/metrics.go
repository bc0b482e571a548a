package fetcher

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/stepmerge/stepmerge/metrics"
)

const subsystem = "fetcher"

const (
	outcomeSuccess     = "success"
	outcomeClientError = "client_error"
	outcomeGiveUp      = "give_up"
)

var (
	fetchesTotal = metrics.NewCounter(
		"fetches_total",
		subsystem,
		"Fetches by terminal outcome.",
		[]string{"outcome"})

	retriesTotal = metrics.NewCounter(
		"retries_total",
		subsystem,
		"Retry attempts scheduled.",
		[]string{}).WithLabelValues()

	latencySeconds = metrics.NewHistogramWithBuckets(
		"latency_seconds",
		subsystem,
		"Latency of successful fetches.",
		[]string{},
		prometheus.DefBuckets,
	).WithLabelValues()
)
