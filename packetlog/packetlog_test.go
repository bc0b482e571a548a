package packetlog_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/stepmerge/stepmerge/packetlog"
)

const (
	logPath   = "packets.jsonl"
	statePath = "packetlog.state.json"
)

func newLogger(t *testing.T, fs afero.Fs) *packetlog.Logger {
	t.Helper()
	l, err := packetlog.New(logPath, statePath,
		packetlog.WithFilesystem(fs), packetlog.WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	return l
}

func loggedSeqs(t *testing.T, fs afero.Fs) []uint64 {
	t.Helper()
	data, err := afero.ReadFile(fs, logPath)
	if err != nil {
		return nil
	}
	var seqs []uint64
	for _, raw := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if raw == "" {
			continue
		}
		var entry struct {
			Seq uint64 `json:"seq"`
		}
		require.NoError(t, json.Unmarshal([]byte(raw), &entry))
		seqs = append(seqs, entry.Seq)
	}
	return seqs
}

func TestLogWritesConsecutivePackets(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	l := newLogger(t, fs)

	require.NoError(t, l.Log(packetlog.NewPacket(0, 1.5, []byte{0xde, 0xad})))
	require.NoError(t, l.Log(packetlog.NewPacket(1, 2.5, []byte{0xbe, 0xef})))
	require.NoError(t, l.Log(packetlog.NewPacket(2, 3.5, []byte{0x01})))

	require.Equal(t, []uint64{0, 1, 2}, loggedSeqs(t, fs))
	require.Equal(t, packetlog.Stats{Received: 3, Written: 3}, l.Stats())

	data, err := afero.ReadFile(fs, logPath)
	require.NoError(t, err)
	first := strings.SplitN(string(data), "\n", 2)[0]
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(first), &entry))
	require.Equal(t, map[string]any{"seq": 0.0, "ts": 1.5, "data": "dead"}, entry)
}

func TestLogBuffersOutOfOrderPackets(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	l := newLogger(t, fs)

	require.NoError(t, l.Log(packetlog.NewPacket(2, 3, []byte("c"))))
	require.Nil(t, loggedSeqs(t, fs), "nothing written until the run is consecutive")
	require.Equal(t, 1, l.Pending())

	require.NoError(t, l.Log(packetlog.NewPacket(0, 1, []byte("a"))))
	require.Equal(t, []uint64{0}, loggedSeqs(t, fs))

	require.NoError(t, l.Log(packetlog.NewPacket(1, 2, []byte("b"))))
	require.Equal(t, []uint64{0, 1, 2}, loggedSeqs(t, fs))
	require.Zero(t, l.Pending())
	require.Equal(t, packetlog.Stats{Received: 3, Written: 3}, l.Stats())
}

func TestLogDropsCorruptedPackets(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	l := newLogger(t, fs)

	bad := packetlog.NewPacket(0, 1, []byte("payload"))
	bad.Checksum++
	require.NoError(t, l.Log(bad))
	require.Nil(t, loggedSeqs(t, fs))

	require.NoError(t, l.Log(packetlog.NewPacket(0, 1, []byte("payload"))))
	require.Equal(t, []uint64{0}, loggedSeqs(t, fs))
	require.Equal(t, packetlog.Stats{Received: 2, Corrupted: 1, Written: 1}, l.Stats())
}

func TestLogDropsDuplicatePackets(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	l := newLogger(t, fs)

	require.NoError(t, l.Log(packetlog.NewPacket(0, 1, []byte("a"))))
	// Replay of an already written sequence.
	require.NoError(t, l.Log(packetlog.NewPacket(0, 1, []byte("a"))))
	// Two copies of a packet still waiting in the buffer.
	require.NoError(t, l.Log(packetlog.NewPacket(2, 3, []byte("c"))))
	require.NoError(t, l.Log(packetlog.NewPacket(2, 3, []byte("c"))))

	require.Equal(t, []uint64{0}, loggedSeqs(t, fs))
	require.Equal(t, packetlog.Stats{Received: 4, Duplicates: 2, Written: 1}, l.Stats())
}

func TestFlushAdmitsLostRange(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	l := newLogger(t, fs)

	require.NoError(t, l.Log(packetlog.NewPacket(0, 1, []byte("a"))))
	require.NoError(t, l.Log(packetlog.NewPacket(12, 2, []byte("m"))))
	require.NoError(t, l.Log(packetlog.NewPacket(13, 3, []byte("n"))))
	require.Equal(t, []uint64{0}, loggedSeqs(t, fs))

	// 1..11 are declared lost: the oldest buffered packet is further than
	// the tolerated gap beyond the watermark.
	require.NoError(t, l.Flush(10))
	require.Equal(t, []uint64{0, 12, 13}, loggedSeqs(t, fs))
	require.Zero(t, l.Pending())
	require.Equal(t, packetlog.Stats{Received: 3, Written: 3}, l.Stats())
}

func TestFlushKeepsWaitingWithinTolerance(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	l := newLogger(t, fs)

	require.NoError(t, l.Log(packetlog.NewPacket(0, 1, []byte("a"))))
	require.NoError(t, l.Log(packetlog.NewPacket(5, 2, []byte("f"))))

	require.NoError(t, l.Flush(10))
	require.Equal(t, []uint64{0}, loggedSeqs(t, fs))
	require.Equal(t, 1, l.Pending(), "the gap is still within tolerance")

	require.NoError(t, l.Flush(0))
	require.Equal(t, []uint64{0, 5}, loggedSeqs(t, fs), "zero tolerance admits any hole")
}

func TestResumeMatchesUninterruptedRun(t *testing.T) {
	t.Parallel()
	// Sequences 3 and 7 swap arrival slots, so 4..7 pile up in the buffer
	// until the last arrival fills the hole.
	feed := func(l *packetlog.Logger, from, to int) {
		for i := from; i < to; i++ {
			switch i {
			case 3:
				require.NoError(t, l.Log(packetlog.NewPacket(7, float64(i), []byte("early"))))
			case 7:
				require.NoError(t, l.Log(packetlog.NewPacket(3, float64(i), []byte("late"))))
			default:
				require.NoError(t, l.Log(packetlog.NewPacket(uint64(i), float64(i), []byte{byte(i)})))
			}
		}
	}

	reference := afero.NewMemMapFs()
	ref := newLogger(t, reference)
	feed(ref, 0, 8)

	fs := afero.NewMemMapFs()
	first := newLogger(t, fs)
	require.False(t, first.Resumed())
	feed(first, 0, 4)

	second := newLogger(t, fs)
	require.True(t, second.Resumed())
	require.Equal(t, first.Stats(), second.Stats())
	feed(second, 4, 8)

	require.Equal(t, ref.Stats(), second.Stats())
	require.Equal(t, []uint64{0, 1, 2, 3, 4, 5, 6, 7}, loggedSeqs(t, fs))
	want, err := afero.ReadFile(reference, logPath)
	require.NoError(t, err)
	got, err := afero.ReadFile(fs, logPath)
	require.NoError(t, err)
	require.Equal(t, string(want), string(got))
}

func TestNewIgnoresCorruptState(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, statePath, []byte("{not a docu"), 0o600))

	l := newLogger(t, fs)
	require.False(t, l.Resumed())
	require.NoError(t, l.Log(packetlog.NewPacket(0, 1, []byte("a"))))
	require.Equal(t, []uint64{0}, loggedSeqs(t, fs))
}

func TestNewRequiresPaths(t *testing.T) {
	t.Parallel()
	_, err := packetlog.New("", statePath, packetlog.WithFilesystem(afero.NewMemMapFs()))
	require.Error(t, err)
}
