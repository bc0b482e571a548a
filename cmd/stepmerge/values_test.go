package main

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/stepmerge/stepmerge/worker"
)

func TestLoadValues(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "values.txt", []byte("1\n2\n\n 3 \n3\n10\n"), 0o644))

	values, err := loadValues(fs, "values.txt")
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2, 3, 3, 10}, values)
}

func TestLoadValuesEmptyFile(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "values.txt", nil, 0o644))

	values, err := loadValues(fs, "values.txt")
	require.NoError(t, err)
	require.Empty(t, values)
}

func TestLoadValuesErrors(t *testing.T) {
	t.Parallel()
	tcs := []struct {
		desc    string
		content string
		errMsg  string
	}{
		{
			desc:    "not an integer",
			content: "1\ntwo\n3\n",
			errMsg:  "values.txt:2: \"two\" is not an integer",
		},
		{
			desc:    "descending pair",
			content: "5\n4\n",
			errMsg:  "values.txt:2: 4 breaks ascending order",
		},
	}
	for _, tc := range tcs {
		tc := tc
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, "values.txt", []byte(tc.content), 0o644))

			_, err := loadValues(fs, "values.txt")
			require.ErrorContains(t, err, tc.errMsg)
		})
	}
}

func TestLoadValuesMissingFile(t *testing.T) {
	t.Parallel()
	_, err := loadValues(afero.NewMemMapFs(), "nope.txt")
	require.Error(t, err)
}

func TestWorkerConfigsCrossChannels(t *testing.T) {
	t.Parallel()
	paths := pathsIn("run")

	source := workerConfig(worker.RoleSource, paths, 10)
	sink := workerConfig(worker.RoleSink, paths, 10)

	require.Equal(t, source.Outbox, sink.Inbox, "a's outbox is b's inbox")
	require.Equal(t, source.Inbox, sink.Outbox, "b's outbox is a's inbox")
	require.Empty(t, source.Output)
	require.Equal(t, paths.Output, sink.Output)
	require.NotEqual(t, source.StateFile, sink.StateFile)
}
