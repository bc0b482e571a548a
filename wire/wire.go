// Package wire defines the messages two merge workers exchange through their
// channel files, and the codec that puts them on disk.
//
// Three kinds exist. META announces the sender's sequence range as
// [min, max, count]. DATA carries a chunk of at most ChunkCap sequence
// values. DONE signals that the sender will transmit nothing further.
package wire

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap/zapcore"
)

// Kind identifies a message type on the wire.
type Kind string

const (
	// KindMeta announces the sender's range as values [min, max, count].
	KindMeta Kind = "META"
	// KindData carries a chunk of sequence values.
	KindData Kind = "DATA"
	// KindDone signals that the sender has nothing further to transmit.
	KindDone Kind = "DONE"
)

const (
	// ChunkCap bounds the number of values a single message may carry.
	ChunkCap = 10
	// KindCap bounds the encoded kind length in characters.
	KindCap = 5

	metaLen = 3
)

// ErrInvariant marks protocol violations that indicate a bug in the sender
// rather than a transient condition. Callers must not retry after it.
var ErrInvariant = errors.New("wire: invariant violation")

// Message is a single protocol message.
type Message struct {
	Kind   Kind    `json:"kind"`
	Values []int64 `json:"values"`
}

// NewMeta builds a META message for a sequence of count values spanning
// [min, max]. Empty sequences declare [0, 0, 0].
func NewMeta(min, max int64, count int) *Message {
	return &Message{Kind: KindMeta, Values: []int64{min, max, int64(count)}}
}

// NewData builds a DATA message carrying chunk.
func NewData(chunk []int64) *Message {
	return &Message{Kind: KindData, Values: chunk}
}

// NewDone builds a DONE message.
func NewDone() *Message {
	return &Message{Kind: KindDone, Values: []int64{}}
}

// MetaValues unpacks a META payload into its min, max and count parts.
func (m *Message) MetaValues() (min, max int64, count int, err error) {
	if m.Kind != KindMeta {
		return 0, 0, 0, fmt.Errorf("%w: %s message has no range", ErrInvariant, m.Kind)
	}
	if err := m.validate(); err != nil {
		return 0, 0, 0, err
	}
	return m.Values[0], m.Values[1], int(m.Values[2]), nil
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (m *Message) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("kind", string(m.Kind))
	enc.AddInt("values", len(m.Values))
	return nil
}

func (m *Message) validate() error {
	if len(m.Kind) > KindCap {
		return fmt.Errorf("%w: kind %q exceeds %d characters", ErrInvariant, m.Kind, KindCap)
	}
	switch m.Kind {
	case KindMeta:
		if len(m.Values) != metaLen {
			return fmt.Errorf("%w: META carries %d values, want %d", ErrInvariant, len(m.Values), metaLen)
		}
		if m.Values[2] < 0 {
			return fmt.Errorf("%w: META count %d is negative", ErrInvariant, m.Values[2])
		}
	case KindData:
		if len(m.Values) == 0 {
			return fmt.Errorf("%w: DATA carries no values", ErrInvariant)
		}
		if len(m.Values) > ChunkCap {
			return fmt.Errorf("%w: DATA carries %d values, cap is %d", ErrInvariant, len(m.Values), ChunkCap)
		}
	case KindDone:
		if len(m.Values) != 0 {
			return fmt.Errorf("%w: DONE carries %d values", ErrInvariant, len(m.Values))
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvariant, m.Kind)
	}
	return nil
}

// Encode renders m in its on-disk JSON form. Bound violations are
// programming errors and wrap ErrInvariant.
func Encode(m *Message) ([]byte, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}
	enc := *m
	if enc.Values == nil {
		enc.Values = []int64{}
	}
	data, err := json.Marshal(&enc)
	if err != nil {
		return nil, fmt.Errorf("marshal message: %w", err)
	}
	return data, nil
}

// Decode parses a message from its on-disk form. Any failure means the data
// does not hold a usable message; the caller treats it as an empty slot.
func Decode(data []byte) (*Message, error) {
	if err := validateSchema(data); err != nil {
		return nil, err
	}
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal message: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}
