// Package mailbox implements the single-slot file channel that two merge
// workers communicate through. Each channel file holds at most one encoded
// message. The writer owns the slot until the reader consumes it: TrySend
// refuses to replace an unconsumed message, and Receive deletes the file
// once its content has been read. Exactly one party writes a given slot and
// exactly one party reads it, which is the only synchronization the channel
// needs.
package mailbox

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/stepmerge/stepmerge/atomicfile"
	"github.com/stepmerge/stepmerge/wire"
)

// Opt modifies a Mailbox.
type Opt func(*Mailbox)

// WithLogger sets the logger used for dropped-content warnings.
func WithLogger(logger *zap.Logger) Opt {
	return func(m *Mailbox) {
		m.logger = logger
	}
}

// Mailbox is one end of a single-slot file channel.
type Mailbox struct {
	fs     afero.Fs
	path   string
	logger *zap.Logger
}

// New creates a mailbox over the slot file at path.
func New(fs afero.Fs, path string, opts ...Opt) *Mailbox {
	m := &Mailbox{
		fs:     fs,
		path:   path,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Path returns the slot file path.
func (m *Mailbox) Path() string {
	return m.path
}

// TrySend writes msg into the slot. It reports false without writing when
// the previous message has not been consumed yet. Encoding failures indicate
// a protocol bug and are returned as errors.
func (m *Mailbox) TrySend(msg *wire.Message) (bool, error) {
	busy, err := afero.Exists(m.fs, m.path)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", m.path, err)
	}
	if busy {
		return false, nil
	}
	data, err := wire.Encode(msg)
	if err != nil {
		return false, err
	}
	// The rename publishes the message in one shot, so a reader on the other
	// side of the channel never observes a partially written slot.
	if err := atomicfile.WriteFile(m.fs, m.path, data); err != nil {
		return false, fmt.Errorf("write %s: %w", m.path, err)
	}
	return true, nil
}

// Receive consumes and returns the pending message, or nil when the slot is
// empty. Content that does not decode is consumed and dropped with a warning
// so a bad write cannot wedge the slot.
func (m *Mailbox) Receive() (*wire.Message, error) {
	data, err := afero.ReadFile(m.fs, m.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", m.path, err)
	}
	// Remove before decoding. If the removal fails the content stays put and
	// nothing has been processed, so the next receive simply retries.
	if err := m.fs.Remove(m.path); err != nil {
		return nil, fmt.Errorf("consume %s: %w", m.path, err)
	}
	msg, err := wire.Decode(data)
	if err != nil {
		m.logger.Warn("dropping undecodable message",
			zap.String("path", m.path),
			zap.Error(err),
		)
		return nil, nil
	}
	return msg, nil
}
