// Package packetlog ingests sequenced packets arriving corrupted, duplicated
// and out of order, and appends them to a log file in strict sequence order.
// The watermark, the reorder buffer and the statistics are persisted to a
// state document after every packet, so a crashed process resumes exactly
// where it stopped.
package packetlog

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"hash/crc32"
	"io/fs"
	"os"
	"slices"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/exp/maps"

	"github.com/stepmerge/stepmerge/atomicfile"
)

// Packet is one sequenced payload with its integrity checksum.
type Packet struct {
	Seq       uint64
	Timestamp float64
	Payload   []byte
	Checksum  uint32
}

// NewPacket builds a packet over payload with the checksum filled in.
func NewPacket(seq uint64, ts float64, payload []byte) Packet {
	return Packet{
		Seq:       seq,
		Timestamp: ts,
		Payload:   payload,
		Checksum:  crc32.ChecksumIEEE(payload),
	}
}

// Verify reports whether the checksum matches the payload.
func (p *Packet) Verify() bool {
	return crc32.ChecksumIEEE(p.Payload) == p.Checksum
}

// packetJSON is the serialized packet shape, payload hex-encoded.
type packetJSON struct {
	Seq       uint64  `json:"seq"`
	Timestamp float64 `json:"ts"`
	Payload   string  `json:"payload"`
	Checksum  uint32  `json:"checksum"`
}

// MarshalJSON implements json.Marshaler.
func (p Packet) MarshalJSON() ([]byte, error) {
	return json.Marshal(packetJSON{
		Seq:       p.Seq,
		Timestamp: p.Timestamp,
		Payload:   hex.EncodeToString(p.Payload),
		Checksum:  p.Checksum,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Packet) UnmarshalJSON(data []byte) error {
	var pj packetJSON
	if err := json.Unmarshal(data, &pj); err != nil {
		return err
	}
	payload, err := hex.DecodeString(pj.Payload)
	if err != nil {
		return fmt.Errorf("payload not hex: %w", err)
	}
	*p = Packet{Seq: pj.Seq, Timestamp: pj.Timestamp, Payload: payload, Checksum: pj.Checksum}
	return nil
}

// Stats counts what happened to the packets seen so far.
type Stats struct {
	Received   int `json:"received"`
	Corrupted  int `json:"corrupted"`
	Duplicates int `json:"duplicates"`
	Written    int `json:"written"`
}

// MarshalLogObject implements logging encoding.
func (s Stats) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt("received", s.Received)
	enc.AddInt("corrupted", s.Corrupted)
	enc.AddInt("duplicates", s.Duplicates)
	enc.AddInt("written", s.Written)
	return nil
}

// state is the persisted document. NextSeq is the watermark: every sequence
// below it has been written to the log file.
type state struct {
	NextSeq uint64            `json:"next_seq"`
	Buffer  map[uint64]Packet `json:"buffer"`
	Stats   Stats             `json:"stats"`
}

// logEntry is one line of the output log.
type logEntry struct {
	Seq       uint64  `json:"seq"`
	Timestamp float64 `json:"ts"`
	Data      string  `json:"data"`
}

// Opt modifies a Logger at construction.
type Opt func(*Logger)

// WithLogger sets the diagnostic logger.
func WithLogger(logger *zap.Logger) Opt {
	return func(l *Logger) {
		l.logger = logger
	}
}

// WithFilesystem runs the logger on fs instead of the host filesystem.
func WithFilesystem(fs afero.Fs) Opt {
	return func(l *Logger) {
		l.fs = fs
	}
}

// Logger writes packets to an append-only log file in sequence order.
type Logger struct {
	logger    *zap.Logger
	fs        afero.Fs
	logPath   string
	statePath string

	next    uint64
	buffer  map[uint64]Packet
	stats   Stats
	resumed bool
}

// New builds a packet logger over its log and state files. A usable
// persisted state document resumes the previous run; a missing or corrupt
// one starts fresh.
func New(logPath, statePath string, opts ...Opt) (*Logger, error) {
	l := &Logger{
		logger:    zap.NewNop(),
		fs:        afero.NewOsFs(),
		logPath:   logPath,
		statePath: statePath,
		buffer:    map[uint64]Packet{},
	}
	for _, opt := range opts {
		opt(l)
	}
	if logPath == "" || statePath == "" {
		return nil, errors.New("log and state paths are required")
	}
	l.restore()
	l.logger.Info("packet log ready",
		zap.Uint64("next_seq", l.next),
		zap.Int("buffered", len(l.buffer)),
		zap.Bool("resumed", l.resumed),
	)
	return l, nil
}

func (l *Logger) restore() {
	data, err := afero.ReadFile(l.fs, l.statePath)
	if errors.Is(err, fs.ErrNotExist) {
		return
	}
	if err != nil {
		l.logger.Warn("ignoring unreadable state document, starting fresh", zap.Error(err))
		return
	}
	var st state
	if err := json.Unmarshal(data, &st); err != nil {
		l.logger.Warn("ignoring unusable state document, starting fresh", zap.Error(err))
		return
	}
	l.next = st.NextSeq
	l.stats = st.Stats
	if st.Buffer != nil {
		l.buffer = st.Buffer
	}
	l.resumed = true
	packetsBuffered.Set(float64(len(l.buffer)))
}

// Stats returns the counters accumulated across all incarnations.
func (l *Logger) Stats() Stats {
	return l.stats
}

// Resumed reports whether the logger restored a persisted state document.
func (l *Logger) Resumed() bool {
	return l.resumed
}

// Pending returns the number of packets waiting for their predecessors.
func (l *Logger) Pending() int {
	return len(l.buffer)
}

// Log folds one received packet into the stream: verify, deduplicate,
// buffer, drain whatever became consecutive, persist. The state document is
// saved before Log returns even when the packet was dropped, so the counters
// survive a crash between packets.
func (l *Logger) Log(p Packet) error {
	l.stats.Received++
	packetsReceived.Inc()
	switch {
	case !p.Verify():
		l.stats.Corrupted++
		packetsCorrupted.Inc()
		l.logger.Warn("dropping corrupted packet",
			zap.Uint64("seq", p.Seq),
			zap.Uint32("checksum", p.Checksum),
		)
		return l.save()
	case p.Seq < l.next:
		l.stats.Duplicates++
		packetsDuplicate.Inc()
		l.logger.Debug("dropping replayed packet", zap.Uint64("seq", p.Seq))
		return l.save()
	}
	if _, ok := l.buffer[p.Seq]; ok {
		l.stats.Duplicates++
		packetsDuplicate.Inc()
		l.logger.Debug("dropping duplicate packet", zap.Uint64("seq", p.Seq))
		return l.save()
	}
	l.buffer[p.Seq] = p
	if err := l.drain(); err != nil {
		return err
	}
	return l.save()
}

// Flush applies the gap policy: when the oldest buffered packet sits maxGap
// or further beyond the watermark, the hole is declared lost, the watermark
// jumps to that packet and the buffered run drains.
func (l *Logger) Flush(maxGap uint64) error {
	if len(l.buffer) == 0 {
		return nil
	}
	minSeq := slices.Min(maps.Keys(l.buffer))
	if minSeq < l.next+maxGap {
		return nil
	}
	l.logger.Info("admitting packet loss",
		zap.Uint64("from", l.next),
		zap.Uint64("to", minSeq-1),
		zap.Uint64("max_gap", maxGap),
	)
	gapsAdmitted.Inc()
	l.next = minSeq
	if err := l.drain(); err != nil {
		return err
	}
	return l.save()
}

// drain appends every consecutive buffered packet starting at the watermark.
func (l *Logger) drain() error {
	var run []Packet
	for {
		p, ok := l.buffer[l.next]
		if !ok {
			break
		}
		delete(l.buffer, l.next)
		run = append(run, p)
		l.next++
	}
	if len(run) == 0 {
		return nil
	}
	return l.append(run)
}

func (l *Logger) append(run []Packet) error {
	f, err := l.fs.OpenFile(l.logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open log %s: %w", l.logPath, err)
	}
	var buf bytes.Buffer
	for _, p := range run {
		line, err := json.Marshal(logEntry{Seq: p.Seq, Timestamp: p.Timestamp, Data: hex.EncodeToString(p.Payload)})
		if err != nil {
			f.Close()
			return fmt.Errorf("encode log entry %d: %w", p.Seq, err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return fmt.Errorf("append log %s: %w", l.logPath, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync log %s: %w", l.logPath, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close log %s: %w", l.logPath, err)
	}
	l.stats.Written += len(run)
	packetsWritten.Add(float64(len(run)))
	l.logger.Debug("drained packet run",
		zap.Uint64("first", run[0].Seq),
		zap.Int("count", len(run)),
		zap.Uint64("next_seq", l.next),
	)
	return nil
}

func (l *Logger) save() error {
	doc := state{NextSeq: l.next, Buffer: l.buffer, Stats: l.stats}
	data, err := json.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := atomicfile.WriteFile(l.fs, l.statePath, data); err != nil {
		return fmt.Errorf("save state %s: %w", l.statePath, err)
	}
	packetsBuffered.Set(float64(len(l.buffer)))
	return nil
}
