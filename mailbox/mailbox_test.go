package mailbox_test

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/stepmerge/stepmerge/mailbox"
	"github.com/stepmerge/stepmerge/wire"
)

func TestSendReceive(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	box := mailbox.New(fs, "channel/a_to_b.json", mailbox.WithLogger(zaptest.NewLogger(t)))

	got, err := box.Receive()
	require.NoError(t, err)
	require.Nil(t, got, "empty slot yields no message")

	sent, err := box.TrySend(wire.NewData([]int64{1, 2, 3}))
	require.NoError(t, err)
	require.True(t, sent)

	got, err = box.Receive()
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, wire.KindData, got.Kind)
	require.Equal(t, []int64{1, 2, 3}, got.Values)

	got, err = box.Receive()
	require.NoError(t, err)
	require.Nil(t, got, "receive consumes the slot")
}

func TestTrySendRefusesOccupiedSlot(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	box := mailbox.New(fs, "slot.json")

	sent, err := box.TrySend(wire.NewMeta(0, 9, 10))
	require.NoError(t, err)
	require.True(t, sent)

	sent, err = box.TrySend(wire.NewDone())
	require.NoError(t, err)
	require.False(t, sent, "unconsumed message must not be replaced")

	got, err := box.Receive()
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, wire.KindMeta, got.Kind, "first message survives the refused send")

	sent, err = box.TrySend(wire.NewDone())
	require.NoError(t, err)
	require.True(t, sent, "slot frees up once consumed")
}

func TestReceiveDropsMalformedContent(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "slot.json", []byte("not a message"), 0o600))
	box := mailbox.New(fs, "slot.json", mailbox.WithLogger(zaptest.NewLogger(t)))

	got, err := box.Receive()
	require.NoError(t, err)
	require.Nil(t, got)

	exists, err := afero.Exists(fs, "slot.json")
	require.NoError(t, err)
	require.False(t, exists, "malformed content is consumed so the slot frees up")
}

func TestTrySendRejectsInvalidMessage(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	box := mailbox.New(fs, "slot.json")

	oversized := make([]int64, wire.ChunkCap+1)
	_, err := box.TrySend(wire.NewData(oversized))
	require.ErrorIs(t, err, wire.ErrInvariant)

	exists, err := afero.Exists(fs, "slot.json")
	require.NoError(t, err)
	require.False(t, exists)
}
