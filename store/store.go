// Package store persists a worker's complete protocol state as a single JSON
// document. A save replaces the document atomically, so a reader never sees
// a half-written state; a load validates the document and reports anything
// unusable, leaving the fall-back decision to the caller.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/afero"
	"go.uber.org/zap/zapcore"

	"github.com/stepmerge/stepmerge/atomicfile"
	"github.com/stepmerge/stepmerge/merge"
)

// Phase is the protocol stage a worker is in.
type Phase string

const (
	// PhaseInit exchanges range metadata.
	PhaseInit Phase = "INIT"
	// PhaseMerge streams data and, on the sink role, produces output.
	PhaseMerge Phase = "MERGE"
	// PhaseDone marks verified completion.
	PhaseDone Phase = "DONE"
)

// Stats counts a worker's externally observable work. It is derived state:
// only the worker state machine increments it.
type Stats struct {
	Comparisons      int `json:"comparisons"`
	MessagesSent     int `json:"messages_sent"`
	MessagesReceived int `json:"messages_received"`
	ValuesOutput     int `json:"values_output"`
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (s Stats) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt("comparisons", s.Comparisons)
	enc.AddInt("messages_sent", s.MessagesSent)
	enc.AddInt("messages_received", s.MessagesReceived)
	enc.AddInt("values_output", s.ValuesOutput)
	return nil
}

// State is the complete externalized state of one worker. Every field a step
// mutates lives here, so reloading the document resumes a run exactly where
// it stopped.
type State struct {
	Role         string       `json:"role"`
	Phase        Phase        `json:"phase"`
	Own          merge.Range  `json:"own"`
	Partner      *merge.Range `json:"partner"`
	SendIndex    int          `json:"send_index"`
	MergeOwn     int          `json:"merge_own_index"`
	MergePartner int          `json:"merge_partner_index"`
	Buffer       []int64      `json:"partner_buffer"`
	MetaSent     bool         `json:"metadata_sent"`
	MetaReceived bool         `json:"metadata_received"`
	DataSent     bool         `json:"data_sent"`
	DoneSent     bool         `json:"done_sent"`
	DoneReceived bool         `json:"done_received"`
	OutputCount  int          `json:"output_count"`
	Stats        Stats        `json:"stats"`
}

// Validate cross-checks the document's indices against its declared counts.
// A violation means the document cannot have been produced by a correct
// worker and must not be resumed from.
func (s *State) Validate() error {
	switch s.Phase {
	case PhaseInit, PhaseMerge, PhaseDone:
	default:
		return fmt.Errorf("unknown phase %q", s.Phase)
	}
	if s.Own.Count < 0 {
		return fmt.Errorf("own count %d is negative", s.Own.Count)
	}
	if s.SendIndex < 0 || s.SendIndex > s.Own.Count {
		return fmt.Errorf("send index %d outside own count %d", s.SendIndex, s.Own.Count)
	}
	if s.MergeOwn < 0 || s.MergeOwn > s.Own.Count {
		return fmt.Errorf("own merge index %d outside own count %d", s.MergeOwn, s.Own.Count)
	}
	if s.MergePartner < 0 || s.MergePartner > len(s.Buffer) {
		return fmt.Errorf("partner merge index %d outside buffer length %d", s.MergePartner, len(s.Buffer))
	}
	if s.DataSent && s.SendIndex != s.Own.Count {
		return fmt.Errorf("data marked sent at send index %d of %d", s.SendIndex, s.Own.Count)
	}
	if s.DoneSent && !s.DataSent {
		return errors.New("DONE sent before data was fully sent")
	}
	if s.Phase != PhaseInit && (s.Partner == nil || !s.MetaSent || !s.MetaReceived) {
		return fmt.Errorf("phase %s without a completed metadata exchange", s.Phase)
	}
	if s.Partner == nil {
		if len(s.Buffer) > 0 {
			return fmt.Errorf("%d buffered values without partner metadata", len(s.Buffer))
		}
		if s.OutputCount > 0 {
			return fmt.Errorf("output count %d without partner metadata", s.OutputCount)
		}
		return nil
	}
	if s.Partner.Count < 0 {
		return fmt.Errorf("partner count %d is negative", s.Partner.Count)
	}
	if len(s.Buffer) > s.Partner.Count {
		return fmt.Errorf("buffer holds %d values, partner declared %d", len(s.Buffer), s.Partner.Count)
	}
	if total := s.Own.Count + s.Partner.Count; s.OutputCount > total {
		return fmt.Errorf("output count %d exceeds declared total %d", s.OutputCount, total)
	}
	return nil
}

// Store saves and loads the state document at a fixed path.
type Store struct {
	fs   afero.Fs
	path string
}

// New creates a store for the document at path.
func New(fs afero.Fs, path string) *Store {
	return &Store{fs: fs, path: path}
}

// Path returns the document path.
func (s *Store) Path() string {
	return s.path
}

// Save persists st, replacing any previous document in one atomic step.
func (s *Store) Save(st *State) error {
	if err := st.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid state: %w", err)
	}
	doc := *st
	if doc.Buffer == nil {
		doc.Buffer = []int64{}
	}
	data, err := json.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if err := atomicfile.WriteFile(s.fs, s.path, data); err != nil {
		return fmt.Errorf("persist state %s: %w", s.path, err)
	}
	return nil
}

// Load returns the last successfully saved state, or (nil, nil) when no
// document exists yet. An unreadable, malformed or inconsistent document is
// returned as an error; callers treat it as "no usable state" and fall back
// to fresh initialization.
func (s *Store) Load() (*State, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state %s: %w", s.path, err)
	}
	if err := validateSchema(data); err != nil {
		return nil, fmt.Errorf("state document %s: %w", s.path, err)
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("unmarshal state %s: %w", s.path, err)
	}
	if err := st.Validate(); err != nil {
		return nil, fmt.Errorf("state document %s: %w", s.path, err)
	}
	return &st, nil
}
