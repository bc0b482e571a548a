package packetlog

import "github.com/stepmerge/stepmerge/metrics"

const subsystem = "packetlog"

var (
	packetsReceived = metrics.NewCounter(
		"packets_received_total",
		subsystem,
		"Packets handed to the logger.",
		[]string{},
	).WithLabelValues()
	packetsCorrupted = metrics.NewCounter(
		"packets_corrupted_total",
		subsystem,
		"Packets dropped for checksum mismatch.",
		[]string{},
	).WithLabelValues()
	packetsDuplicate = metrics.NewCounter(
		"packets_duplicate_total",
		subsystem,
		"Packets dropped as duplicates.",
		[]string{},
	).WithLabelValues()
	packetsWritten = metrics.NewCounter(
		"packets_written_total",
		subsystem,
		"Packets appended to the log file.",
		[]string{},
	).WithLabelValues()
	gapsAdmitted = metrics.NewCounter(
		"gaps_admitted_total",
		subsystem,
		"Sequence holes declared lost by Flush.",
		[]string{},
	).WithLabelValues()
	packetsBuffered = metrics.NewGauge(
		"packets_buffered",
		subsystem,
		"Packets waiting for their predecessors.",
		[]string{},
	).WithLabelValues()
)
