package merge_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stepmerge/stepmerge/merge"
)

func TestClassify(t *testing.T) {
	t.Parallel()
	tcs := []struct {
		desc         string
		own, partner merge.Range
		want         merge.Relation
	}{
		{
			desc:    "own strictly before partner",
			own:     merge.Range{Min: 0, Max: 999, Count: 1000},
			partner: merge.Range{Min: 1000, Max: 5999, Count: 5000},
			want:    merge.DisjointBefore,
		},
		{
			desc:    "own strictly after partner",
			own:     merge.Range{Min: 1000, Max: 5999, Count: 5000},
			partner: merge.Range{Min: 0, Max: 999, Count: 1000},
			want:    merge.DisjointAfter,
		},
		{
			desc:    "interleaved",
			own:     merge.Range{Min: 1, Max: 999, Count: 500},
			partner: merge.Range{Min: 0, Max: 998, Count: 500},
			want:    merge.Overlapping,
		},
		{
			desc:    "touching boundary overlaps",
			own:     merge.Range{Min: 1, Max: 5, Count: 2},
			partner: merge.Range{Min: 5, Max: 9, Count: 2},
			want:    merge.Overlapping,
		},
		{
			desc:    "contained range overlaps",
			own:     merge.Range{Min: 10, Max: 20, Count: 5},
			partner: merge.Range{Min: 0, Max: 100, Count: 5},
			want:    merge.Overlapping,
		},
		{
			desc:    "own empty",
			own:     merge.Range{Count: 0},
			partner: merge.Range{Min: 3, Max: 9, Count: 4},
			want:    merge.DisjointBefore,
		},
		{
			desc:    "partner empty",
			own:     merge.Range{Min: 3, Max: 9, Count: 4},
			partner: merge.Range{Count: 0},
			want:    merge.DisjointBefore,
		},
		{
			desc:    "both empty",
			own:     merge.Range{Count: 0},
			partner: merge.Range{Count: 0},
			want:    merge.DisjointBefore,
		},
	}
	for _, tc := range tcs {
		tc := tc
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, merge.Classify(tc.own, tc.partner))
		})
	}
}

func TestNextDisjointBefore(t *testing.T) {
	t.Parallel()
	own := []int64{1, 2, 3}
	partner := []int64{10, 11, 12, 13}

	step := merge.Next(merge.DisjointBefore, merge.Cursor{}, own, partner[:2], false, 10)
	require.Equal(t, []int64{1, 2, 3, 10, 11}, step.Values,
		"own values first, then the buffered partner prefix, before the partner finished sending")
	require.Zero(t, step.Comparisons)
	require.Equal(t, merge.Cursor{Own: 3, Partner: 2}, step.Cursor)

	step = merge.Next(merge.DisjointBefore, step.Cursor, own, partner, true, 10)
	require.Equal(t, []int64{12, 13}, step.Values)
	require.Zero(t, step.Comparisons)
	require.Equal(t, merge.Cursor{Own: 3, Partner: 4}, step.Cursor)
}

func TestNextDisjointAfter(t *testing.T) {
	t.Parallel()
	own := []int64{10, 11, 12}
	partner := []int64{1, 2, 3, 4}

	step := merge.Next(merge.DisjointAfter, merge.Cursor{}, own, partner[:3], false, 10)
	require.Equal(t, []int64{1, 2, 3}, step.Values)
	require.Zero(t, step.Comparisons)
	require.Equal(t, merge.Cursor{Partner: 3}, step.Cursor,
		"own values wait until the partner declares completion")

	step = merge.Next(merge.DisjointAfter, step.Cursor, own, partner, true, 10)
	require.Equal(t, []int64{4, 10, 11, 12}, step.Values)
	require.Zero(t, step.Comparisons)
	require.Equal(t, merge.Cursor{Own: 3, Partner: 4}, step.Cursor)
}

func TestNextHonorsLimit(t *testing.T) {
	t.Parallel()
	own := make([]int64, 25)
	for i := range own {
		own[i] = int64(i)
	}

	cur := merge.Cursor{}
	var got []int64
	for i := 0; i < 3; i++ {
		step := merge.Next(merge.DisjointBefore, cur, own, nil, true, 10)
		require.LessOrEqual(t, len(step.Values), 10)
		got = append(got, step.Values...)
		cur = step.Cursor
	}
	require.Equal(t, own, got)

	step := merge.Next(merge.DisjointBefore, cur, own, nil, true, 10)
	require.Empty(t, step.Values, "exhausted plan yields empty steps")
}

func TestNextOverlapping(t *testing.T) {
	t.Parallel()
	tcs := []struct {
		desc            string
		own, partner    []int64
		partnerComplete bool
		want            []int64
		wantComparisons int
		wantCursor      merge.Cursor
	}{
		{
			desc:            "interleaved pair counting",
			own:             []int64{1, 3, 5, 7, 9},
			partner:         []int64{0, 2, 4, 6, 8},
			partnerComplete: true,
			want:            []int64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
			wantComparisons: 5,
			wantCursor:      merge.Cursor{Own: 5, Partner: 5},
		},
		{
			desc:            "ties emit the own value first without a charge",
			own:             []int64{1, 5},
			partner:         []int64{5, 9},
			partnerComplete: true,
			want:            []int64{1, 5, 5, 9},
			wantComparisons: 0,
			wantCursor:      merge.Cursor{Own: 2, Partner: 2},
		},
		{
			desc:            "own exhaustion drains the partner freely",
			own:             []int64{2},
			partner:         []int64{1, 3, 4, 5},
			partnerComplete: false,
			want:            []int64{1, 2, 3, 4, 5},
			wantComparisons: 1,
			wantCursor:      merge.Cursor{Own: 1, Partner: 4},
		},
		{
			desc:            "incomplete partner holds back the own tail",
			own:             []int64{4, 6},
			partner:         []int64{3, 5},
			partnerComplete: false,
			want:            []int64{3, 4, 5},
			wantComparisons: 2,
			wantCursor:      merge.Cursor{Own: 1, Partner: 2},
		},
		{
			desc:            "empty buffer with incomplete partner emits nothing",
			own:             []int64{4, 6},
			partner:         nil,
			partnerComplete: false,
			want:            []int64{},
			wantComparisons: 0,
			wantCursor:      merge.Cursor{},
		},
		{
			desc:            "complete partner lets the own tail drain",
			own:             []int64{4, 6, 8},
			partner:         []int64{3, 5},
			partnerComplete: true,
			want:            []int64{3, 4, 5, 6, 8},
			wantComparisons: 2,
			wantCursor:      merge.Cursor{Own: 3, Partner: 2},
		},
	}
	for _, tc := range tcs {
		tc := tc
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()
			step := merge.Next(merge.Overlapping, merge.Cursor{}, tc.own, tc.partner, tc.partnerComplete, 10)
			require.Equal(t, tc.want, step.Values)
			require.Equal(t, tc.wantComparisons, step.Comparisons)
			require.Equal(t, tc.wantCursor, step.Cursor)
		})
	}
}

// The charge per step accumulates to one comparison per interleaved pair over
// a whole run, no matter how the partner data trickles in.
func TestNextIncrementalArrival(t *testing.T) {
	t.Parallel()
	var own, partner []int64
	for v := int64(1); v < 20; v += 2 {
		own = append(own, v) // 1 3 5 ... 19
	}
	for v := int64(0); v < 20; v += 2 {
		partner = append(partner, v) // 0 2 4 ... 18
	}

	var (
		got         []int64
		comparisons int
		cur         merge.Cursor
	)
	for received := 2; received <= len(partner); received += 2 {
		complete := received == len(partner)
		for {
			step := merge.Next(merge.Overlapping, cur, own, partner[:received], complete, 3)
			got = append(got, step.Values...)
			comparisons += step.Comparisons
			cur = step.Cursor
			if len(step.Values) == 0 {
				break
			}
		}
	}

	var want []int64
	for v := int64(0); v < 20; v++ {
		want = append(want, v)
	}
	require.Equal(t, want, got)
	require.Equal(t, 10, comparisons)
	require.Equal(t, merge.Cursor{Own: 10, Partner: 10}, cur)
}
