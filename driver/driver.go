// Package driver advances merge workers until their run completes. Alternate
// drives both workers of a run in-process, stepping them in turns the way two
// cooperating processes would interleave. Poll drives a single worker on a
// fixed interval so each side of a run can live in its own process.
package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/stepmerge/stepmerge/store"
	"github.com/stepmerge/stepmerge/worker"
)

// ErrStalled is returned when neither worker makes any progress for
// StallLimit consecutive rounds, which means the run can never finish.
var ErrStalled = errors.New("driver: run stalled")

// DefaultStallLimit is the number of consecutive no-progress rounds Alternate
// tolerates before giving up.
const DefaultStallLimit = 8

// Worker is the stepping surface the driver needs from a merge worker.
type Worker interface {
	// Step runs one bounded protocol step and reports whether work remains.
	Step() (bool, error)
	Role() worker.Role
	Phase() store.Phase
	Stats() store.Stats
}

type options struct {
	logger     *zap.Logger
	clock      clockwork.Clock
	stallLimit int
}

func newOptions(opts []Opt) *options {
	o := &options{
		logger:     zap.NewNop(),
		clock:      clockwork.NewRealClock(),
		stallLimit: DefaultStallLimit,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Opt modifies driver behavior.
type Opt func(*options)

// WithLogger sets the driver logger.
func WithLogger(logger *zap.Logger) Opt {
	return func(o *options) {
		o.logger = logger
	}
}

// WithClock substitutes the clock used for interval sleeps.
func WithClock(clock clockwork.Clock) Opt {
	return func(o *options) {
		o.clock = clock
	}
}

// WithStallLimit overrides DefaultStallLimit.
func WithStallLimit(rounds int) Opt {
	return func(o *options) {
		o.stallLimit = rounds
	}
}

// Result summarizes a completed run.
type Result struct {
	// Rounds is the number of step rounds the driver executed.
	Rounds int `json:"rounds"`
	// Source and Sink carry each worker's final statistics.
	Source store.Stats `json:"source"`
	Sink   store.Stats `json:"sink"`
}

// MarshalLogObject implements logging encoding.
func (r *Result) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt("rounds", r.Rounds)
	if err := enc.AddObject("source", r.Source); err != nil {
		return err
	}
	return enc.AddObject("sink", r.Sink)
}

// progress is the observable state the stall detector compares across rounds.
type progress struct {
	sourceStats store.Stats
	sinkStats   store.Stats
	sourcePhase store.Phase
	sinkPhase   store.Phase
}

func snapshot(source, sink Worker) progress {
	return progress{
		sourceStats: source.Stats(),
		sinkStats:   sink.Stats(),
		sourcePhase: source.Phase(),
		sinkPhase:   sink.Phase(),
	}
}

// Alternate steps source and sink in turns until both report no more work.
// The single-slot channels make the outcome independent of the interleaving,
// so strict alternation is just the simplest fair schedule. A round that
// moves neither statistics nor phase on either side counts toward the stall
// limit; hitting the limit aborts the run with ErrStalled.
func Alternate(ctx context.Context, source, sink Worker, opts ...Opt) (Result, error) {
	o := newOptions(opts)
	var res Result
	if source.Role() == sink.Role() {
		return res, fmt.Errorf("both workers claim role %q", source.Role())
	}
	idle := 0
	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		before := snapshot(source, sink)
		sourceMore, err := source.Step()
		if err != nil {
			return res, fmt.Errorf("source step: %w", err)
		}
		sinkMore, err := sink.Step()
		if err != nil {
			return res, fmt.Errorf("sink step: %w", err)
		}
		res.Rounds++
		res.Source, res.Sink = source.Stats(), sink.Stats()
		if !sourceMore && !sinkMore {
			o.logger.Info("run complete", zap.Object("result", &res))
			return res, nil
		}
		if snapshot(source, sink) == before {
			idle++
			if idle >= o.stallLimit {
				return res, fmt.Errorf("%w: no progress in the last %d rounds", ErrStalled, idle)
			}
			continue
		}
		idle = 0
	}
}

// Poll steps a single worker every interval until it reports no more work or
// the context is canceled. Waiting on the partner is normal here, so unlike
// Alternate there is no stall detection; cancellation is the only way out of
// a run whose partner never shows up.
func Poll(ctx context.Context, w Worker, interval time.Duration, opts ...Opt) (store.Stats, error) {
	o := newOptions(opts)
	for steps := 1; ; steps++ {
		more, err := w.Step()
		if err != nil {
			return w.Stats(), fmt.Errorf("step %d: %w", steps, err)
		}
		if !more {
			o.logger.Info("worker complete",
				zap.String("role", string(w.Role())),
				zap.Int("steps", steps),
				zap.Object("stats", w.Stats()),
			)
			return w.Stats(), nil
		}
		select {
		case <-ctx.Done():
			return w.Stats(), ctx.Err()
		case <-o.clock.After(interval):
		}
	}
}
