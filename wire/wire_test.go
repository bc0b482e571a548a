package wire_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stepmerge/stepmerge/wire"
)

func TestEncodeDecodeRoundtrip(t *testing.T) {
	t.Parallel()
	tcs := []struct {
		desc string
		msg  *wire.Message
	}{
		{
			desc: "meta",
			msg:  wire.NewMeta(7, 4213, 100),
		},
		{
			desc: "meta empty sequence",
			msg:  wire.NewMeta(0, 0, 0),
		},
		{
			desc: "data",
			msg:  wire.NewData([]int64{1, 2, 3, 5, 8}),
		},
		{
			desc: "data full chunk",
			msg:  wire.NewData([]int64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}),
		},
		{
			desc: "done",
			msg:  wire.NewDone(),
		},
	}
	for _, tc := range tcs {
		tc := tc
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()
			data, err := wire.Encode(tc.msg)
			require.NoError(t, err)
			got, err := wire.Decode(data)
			require.NoError(t, err)
			require.Equal(t, tc.msg.Kind, got.Kind)
			require.Equal(t, tc.msg.Values, got.Values)
		})
	}
}

func TestEncodeRejectsInvariantViolations(t *testing.T) {
	t.Parallel()
	tcs := []struct {
		desc string
		msg  *wire.Message
	}{
		{
			desc: "oversized data chunk",
			msg:  wire.NewData([]int64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}),
		},
		{
			desc: "empty data chunk",
			msg:  wire.NewData(nil),
		},
		{
			desc: "meta with wrong arity",
			msg:  &wire.Message{Kind: wire.KindMeta, Values: []int64{1, 2}},
		},
		{
			desc: "meta with negative count",
			msg:  &wire.Message{Kind: wire.KindMeta, Values: []int64{1, 2, -1}},
		},
		{
			desc: "done with payload",
			msg:  &wire.Message{Kind: wire.KindDone, Values: []int64{1}},
		},
		{
			desc: "unknown kind",
			msg:  &wire.Message{Kind: "PING", Values: []int64{}},
		},
		{
			desc: "oversized kind",
			msg:  &wire.Message{Kind: "METADATA", Values: []int64{1, 2, 3}},
		},
	}
	for _, tc := range tcs {
		tc := tc
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()
			_, err := wire.Encode(tc.msg)
			require.ErrorIs(t, err, wire.ErrInvariant)
		})
	}
}

func TestDecodeRejectsUnusableData(t *testing.T) {
	t.Parallel()
	tcs := []struct {
		desc string
		data string
	}{
		{
			desc: "empty",
			data: "",
		},
		{
			desc: "truncated json",
			data: `{"kind":"DATA","values":[1,2`,
		},
		{
			desc: "not an object",
			data: `[1,2,3]`,
		},
		{
			desc: "unknown kind",
			data: `{"kind":"PING","values":[]}`,
		},
		{
			desc: "fractional value",
			data: `{"kind":"DATA","values":[1.5]}`,
		},
		{
			desc: "oversized chunk",
			data: `{"kind":"DATA","values":[1,2,3,4,5,6,7,8,9,10,11]}`,
		},
		{
			desc: "unexpected field",
			data: `{"kind":"DONE","values":[],"extra":true}`,
		},
		{
			desc: "missing values",
			data: `{"kind":"DONE"}`,
		},
	}
	for _, tc := range tcs {
		tc := tc
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()
			_, err := wire.Decode([]byte(tc.data))
			require.Error(t, err)
		})
	}
}

func TestMetaValues(t *testing.T) {
	t.Parallel()
	min, max, count, err := wire.NewMeta(-3, 999, 42).MetaValues()
	require.NoError(t, err)
	require.Equal(t, int64(-3), min)
	require.Equal(t, int64(999), max)
	require.Equal(t, 42, count)

	_, _, _, err = wire.NewData([]int64{1}).MetaValues()
	require.ErrorIs(t, err, wire.ErrInvariant)
}

func TestDoneEncodesEmptyArray(t *testing.T) {
	t.Parallel()
	data, err := wire.Encode(wire.NewDone())
	require.NoError(t, err)
	require.JSONEq(t, `{"kind":"DONE","values":[]}`, string(data))
}
