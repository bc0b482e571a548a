package worker

import (
	"github.com/stepmerge/stepmerge/metrics"
)

const subsystem = "worker"

var (
	stepsTotal = metrics.NewCounter(
		"steps_total",
		subsystem,
		"step invocations that performed protocol work",
		[]string{"role"},
	)
	messagesSent = metrics.NewCounter(
		"messages_sent_total",
		subsystem,
		"messages written to the outbox slot",
		[]string{"role", "kind"},
	)
	messagesReceived = metrics.NewCounter(
		"messages_received_total",
		subsystem,
		"messages consumed from the inbox slot",
		[]string{"role", "kind"},
	)
	comparisonsTotal = metrics.NewCounter(
		"comparisons_total",
		subsystem,
		"element comparisons charged by the merge engine",
		[]string{"role"},
	)
	valuesOutput = metrics.NewCounter(
		"values_output_total",
		subsystem,
		"values appended to the shared output file",
		[]string{"role"},
	)
	resumesTotal = metrics.NewCounter(
		"resumes_total",
		subsystem,
		"workers restored from a persisted state document",
		[]string{"role"},
	)
)
