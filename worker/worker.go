// Package worker implements the protocol state machine that merges two
// sorted integer sequences across a pair of single-slot file channels.
//
// Two workers participate in a run. After exchanging META range
// declarations, both stream their values to the other side in bounded DATA
// chunks and announce completion with DONE. The sink role additionally
// merges the two sequences and appends the result to the shared output
// file, using the range relation to skip comparisons wherever the ranges do
// not overlap. All progress lives in an externalized state document that is
// persisted at the end of every mutating step, so a run resumes from disk at
// any step boundary.
package worker

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/stepmerge/stepmerge/mailbox"
	"github.com/stepmerge/stepmerge/merge"
	"github.com/stepmerge/stepmerge/store"
	"github.com/stepmerge/stepmerge/wire"
)

// Role selects a worker's part in the protocol.
type Role string

const (
	// RoleSource transmits its sequence and produces no output.
	RoleSource Role = "a"
	// RoleSink transmits its sequence, merges both sequences and writes the
	// shared output file.
	RoleSink Role = "b"
)

var (
	// ErrInvariant marks conditions that indicate a logic bug on either side
	// of the channel. A worker halts on it rather than risk appending wrong
	// output.
	ErrInvariant = errors.New("worker: invariant violation")
	// ErrStateMismatch is returned when a persisted state document does not
	// belong to the configured role and input sequence.
	ErrStateMismatch = errors.New("worker: persisted state does not match configuration")
)

// Config holds the file layout and tuning of one worker.
type Config struct {
	// Role selects source or sink behavior.
	Role Role `mapstructure:"role"`
	// Inbox is the channel file this worker reads and consumes.
	Inbox string `mapstructure:"inbox"`
	// Outbox is the channel file this worker writes.
	Outbox string `mapstructure:"outbox"`
	// Output is the shared merged output file. Only the sink writes it.
	Output string `mapstructure:"output"`
	// StateFile is where the worker persists its state document.
	StateFile string `mapstructure:"state-file"`
	// ChunkSize bounds the values per DATA message and per output append.
	// At most wire.ChunkCap.
	ChunkSize int `mapstructure:"chunk-size"`
}

// DefaultConfig returns the default worker configuration.
func DefaultConfig() Config {
	return Config{
		ChunkSize: wire.ChunkCap,
	}
}

func (c *Config) validate() error {
	if c.Role != RoleSource && c.Role != RoleSink {
		return fmt.Errorf("unknown role %q", c.Role)
	}
	if c.Inbox == "" || c.Outbox == "" || c.StateFile == "" {
		return errors.New("inbox, outbox and state-file paths are required")
	}
	if c.Role == RoleSink && c.Output == "" {
		return errors.New("the sink role requires an output path")
	}
	if c.ChunkSize < 1 || c.ChunkSize > wire.ChunkCap {
		return fmt.Errorf("chunk size %d outside [1, %d]", c.ChunkSize, wire.ChunkCap)
	}
	return nil
}

// Opt modifies a Worker at construction.
type Opt func(*Worker)

// WithLogger sets the worker logger.
func WithLogger(logger *zap.Logger) Opt {
	return func(w *Worker) {
		w.logger = logger
	}
}

// WithFilesystem runs the worker on fs instead of the host filesystem.
func WithFilesystem(fs afero.Fs) Opt {
	return func(w *Worker) {
		w.fs = fs
	}
}

// Worker is one participant of a two-party merge run.
type Worker struct {
	logger *zap.Logger
	fs     afero.Fs
	cfg    Config

	seq     []int64 // immutable after construction
	inbox   *mailbox.Mailbox
	outbox  *mailbox.Mailbox
	states  *store.Store
	sink    *sink // nil for the source role
	state   *store.State
	resumed bool
}

// New builds a worker over its channel, state and output files. A usable
// persisted state document resumes the previous run; a missing or corrupt
// one starts fresh. seq must be sorted ascending and is never mutated.
func New(cfg Config, seq []int64, opts ...Opt) (*Worker, error) {
	w := &Worker{
		logger: zap.NewNop(),
		fs:     afero.NewOsFs(),
		cfg:    cfg,
		seq:    slices.Clone(seq),
	}
	for _, opt := range opts {
		opt(w)
	}
	if err := w.cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if !slices.IsSorted(w.seq) {
		return nil, errors.New("input sequence is not sorted ascending")
	}
	w.inbox = mailbox.New(w.fs, cfg.Inbox, mailbox.WithLogger(w.logger))
	w.outbox = mailbox.New(w.fs, cfg.Outbox, mailbox.WithLogger(w.logger))
	w.states = store.New(w.fs, cfg.StateFile)
	if cfg.Role == RoleSink {
		w.sink = newSink(w.fs, cfg.Output)
	}
	if err := w.restore(); err != nil {
		return nil, err
	}
	w.logger.Info("worker ready",
		zap.String("role", string(w.cfg.Role)),
		zap.String("phase", string(w.state.Phase)),
		zap.Int("values", len(w.seq)),
		zap.Bool("resumed", w.resumed),
	)
	return w, nil
}

func (w *Worker) restore() error {
	st, err := w.states.Load()
	if err != nil {
		w.logger.Warn("ignoring unusable state document, starting fresh", zap.Error(err))
		st = nil
	}
	if st == nil {
		w.state = w.initialState()
		return nil
	}
	if st.Role != string(w.cfg.Role) || st.Own != w.ownRange() {
		return fmt.Errorf("%w: document for role %q over %d values, configured role %q over %d values",
			ErrStateMismatch, st.Role, st.Own.Count, w.cfg.Role, len(w.seq))
	}
	w.state = st
	w.resumed = true
	resumesTotal.WithLabelValues(string(w.cfg.Role)).Inc()
	return nil
}

func (w *Worker) initialState() *store.State {
	return &store.State{
		Role:   string(w.cfg.Role),
		Phase:  store.PhaseInit,
		Own:    w.ownRange(),
		Buffer: []int64{},
		// A worker with nothing to transmit is born with its data sent.
		DataSent: len(w.seq) == 0,
	}
}

func (w *Worker) ownRange() merge.Range {
	if len(w.seq) == 0 {
		return merge.Range{}
	}
	return merge.Range{Min: w.seq[0], Max: w.seq[len(w.seq)-1], Count: len(w.seq)}
}

// Role returns the worker's role.
func (w *Worker) Role() Role {
	return w.cfg.Role
}

// Phase returns the current protocol phase.
func (w *Worker) Phase() store.Phase {
	return w.state.Phase
}

// Stats returns the worker's derived statistics.
func (w *Worker) Stats() store.Stats {
	return w.state.Stats
}

// Resumed reports whether the worker restored a persisted state document.
func (w *Worker) Resumed() bool {
	return w.resumed
}

// Step runs one bounded protocol step: at most one inbox receive, the
// phase's actions with at most one outbox send and one output append, then a
// persist of the full state. It reports whether work remains. Once the
// worker has verified completion, Step mutates nothing and returns false.
func (w *Worker) Step() (bool, error) {
	if w.state.Phase == store.PhaseDone {
		if w.completionVerified() {
			return false, nil
		}
		// Output short of the declared total. Reopen the merge phase and
		// keep draining.
		w.logger.Warn("output incomplete on completion check, resuming merge",
			zap.Int("output", w.state.OutputCount))
		w.state.Phase = store.PhaseMerge
	}
	stepsTotal.WithLabelValues(string(w.cfg.Role)).Inc()

	if err := w.receive(); err != nil {
		return false, err
	}

	switch w.state.Phase {
	case store.PhaseInit:
		if err := w.stepInit(); err != nil {
			return false, err
		}
	case store.PhaseMerge:
		if err := w.stepMerge(); err != nil {
			return false, err
		}
	}

	if err := w.states.Save(w.state); err != nil {
		return false, err
	}
	return !(w.state.Phase == store.PhaseDone && w.completionVerified()), nil
}

// receive consumes at most one message and folds it into the state. Failures
// to read the slot are transient; violations of the protocol order are not.
func (w *Worker) receive() error {
	msg, err := w.inbox.Receive()
	if err != nil {
		w.logger.Warn("inbox receive failed, treating as empty", zap.Error(err))
		return nil
	}
	if msg == nil {
		return nil
	}
	w.state.Stats.MessagesReceived++
	messagesReceived.WithLabelValues(string(w.cfg.Role), string(msg.Kind)).Inc()
	w.logger.Debug("received message", zap.Object("message", msg))

	switch msg.Kind {
	case wire.KindMeta:
		if w.state.Partner == nil {
			min, max, count, err := msg.MetaValues()
			if err != nil {
				return err
			}
			w.state.Partner = &merge.Range{Min: min, Max: max, Count: count}
		}
		w.state.MetaReceived = true
	case wire.KindData:
		if w.state.Partner == nil {
			return fmt.Errorf("%w: DATA before partner META", ErrInvariant)
		}
		if w.state.DoneReceived {
			return fmt.Errorf("%w: DATA after partner DONE", ErrInvariant)
		}
		if got := len(w.state.Buffer) + len(msg.Values); got > w.state.Partner.Count {
			return fmt.Errorf("%w: partner sent %d values but declared %d",
				ErrInvariant, got, w.state.Partner.Count)
		}
		if err := w.checkAscending(msg.Values); err != nil {
			return err
		}
		w.state.Buffer = append(w.state.Buffer, msg.Values...)
	case wire.KindDone:
		w.state.DoneReceived = true
	}
	return nil
}

// checkAscending verifies that a DATA chunk continues the partner's sorted
// stream. A violation would silently corrupt the merged output.
func (w *Worker) checkAscending(values []int64) error {
	prev, have := int64(0), false
	if n := len(w.state.Buffer); n > 0 {
		prev, have = w.state.Buffer[n-1], true
	}
	for _, v := range values {
		if have && v < prev {
			return fmt.Errorf("%w: partner stream not ascending: %d after %d", ErrInvariant, v, prev)
		}
		prev, have = v, true
	}
	return nil
}

func (w *Worker) stepInit() error {
	if !w.state.MetaSent {
		r := w.state.Own
		sent, err := w.outbox.TrySend(wire.NewMeta(r.Min, r.Max, r.Count))
		if err != nil {
			return err
		}
		if sent {
			w.state.MetaSent = true
			w.noteSent(wire.KindMeta)
		}
	}
	if w.state.MetaSent && w.state.MetaReceived {
		w.state.Phase = store.PhaseMerge
		w.logger.Debug("metadata exchanged",
			zap.Int64("partner_min", w.state.Partner.Min),
			zap.Int64("partner_max", w.state.Partner.Max),
			zap.Int("partner_count", w.state.Partner.Count),
		)
	}
	return nil
}

func (w *Worker) stepMerge() error {
	if err := w.send(); err != nil {
		return err
	}
	if w.cfg.Role == RoleSink {
		if err := w.produce(); err != nil {
			return err
		}
	}
	if w.finished() {
		w.state.Phase = store.PhaseDone
		w.logger.Info("worker done",
			zap.String("role", string(w.cfg.Role)),
			zap.Object("stats", w.state.Stats),
		)
	}
	return nil
}

// send transmits the next pending message, if any: DATA chunks while the
// sequence lasts, then DONE on a later step. A busy outbox slot defers the
// send; progress advances only when the slot accepted the message.
func (w *Worker) send() error {
	switch {
	case !w.state.DataSent:
		end := min(w.state.SendIndex+w.cfg.ChunkSize, len(w.seq))
		sent, err := w.outbox.TrySend(wire.NewData(w.seq[w.state.SendIndex:end]))
		if err != nil {
			return err
		}
		if sent {
			w.state.SendIndex = end
			if end == len(w.seq) {
				w.state.DataSent = true
			}
			w.noteSent(wire.KindData)
		}
	case !w.state.DoneSent:
		sent, err := w.outbox.TrySend(wire.NewDone())
		if err != nil {
			return err
		}
		if sent {
			w.state.DoneSent = true
			w.noteSent(wire.KindDone)
		}
	}
	return nil
}

// produce appends the next safe output chunk. Only the sink calls it.
func (w *Worker) produce() error {
	if w.state.OutputCount >= w.total() {
		return nil
	}
	rel := merge.Classify(w.state.Own, *w.state.Partner)
	step := merge.Next(
		rel,
		merge.Cursor{Own: w.state.MergeOwn, Partner: w.state.MergePartner},
		w.seq,
		w.state.Buffer,
		w.partnerComplete(),
		w.cfg.ChunkSize,
	)
	if len(step.Values) == 0 {
		return nil
	}
	if _, err := w.sink.append(w.state.OutputCount, step.Values); err != nil {
		return err
	}
	w.state.MergeOwn = step.Cursor.Own
	w.state.MergePartner = step.Cursor.Partner
	w.state.OutputCount += len(step.Values)
	w.state.Stats.Comparisons += step.Comparisons
	w.state.Stats.ValuesOutput += len(step.Values)
	comparisonsTotal.WithLabelValues(string(w.cfg.Role)).Add(float64(step.Comparisons))
	valuesOutput.WithLabelValues(string(w.cfg.Role)).Add(float64(len(step.Values)))
	w.logger.Debug("appended output chunk",
		zap.String("relation", rel.String()),
		zap.Int("values", len(step.Values)),
		zap.Int("comparisons", step.Comparisons),
		zap.Int("output_count", w.state.OutputCount),
	)
	return nil
}

func (w *Worker) noteSent(kind wire.Kind) {
	w.state.Stats.MessagesSent++
	messagesSent.WithLabelValues(string(w.cfg.Role), string(kind)).Inc()
}

// partnerComplete reports whether every partner value has been buffered:
// either the partner said DONE, or the buffer reached its declared count.
func (w *Worker) partnerComplete() bool {
	p := w.state.Partner
	return p != nil && (w.state.DoneReceived || len(w.state.Buffer) == p.Count)
}

func (w *Worker) total() int {
	return w.state.Own.Count + w.state.Partner.Count
}

// finished decides the MERGE to DONE transition: everything sent including
// DONE, every partner value accounted for, and, on the sink, every value of
// both sequences appended to the output.
func (w *Worker) finished() bool {
	if !w.state.DoneSent || !w.partnerComplete() {
		return false
	}
	if w.cfg.Role == RoleSink {
		return w.state.OutputCount == w.total()
	}
	return true
}

// completionVerified re-checks, in the DONE phase, that nothing is left to
// drain. The sink verifies the output against both declared counts.
func (w *Worker) completionVerified() bool {
	if w.cfg.Role == RoleSink {
		return w.state.Partner != nil && w.state.OutputCount == w.total()
	}
	return true
}
