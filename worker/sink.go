package worker

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/spf13/afero"
)

// sink appends merged values to the shared output file, one integer per
// line. Appends are addressed by global output position: positions below the
// file's current line count were written by an earlier incarnation of the
// run and are skipped, which makes replaying a persisted step idempotent.
type sink struct {
	fs     afero.Fs
	path   string
	lines  int
	loaded bool
}

func newSink(fs afero.Fs, path string) *sink {
	return &sink{fs: fs, path: path}
}

func (s *sink) load() error {
	if s.loaded {
		return nil
	}
	data, err := afero.ReadFile(s.fs, s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.loaded = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("read output %s: %w", s.path, err)
	}
	s.lines = bytes.Count(data, []byte("\n"))
	s.loaded = true
	return nil
}

// append writes values starting at global output position start. It returns
// the number of values physically written, which is smaller than len(values)
// when a prefix of the chunk already reached the file.
func (s *sink) append(start int, values []int64) (int, error) {
	if err := s.load(); err != nil {
		return 0, err
	}
	if start > s.lines {
		return 0, fmt.Errorf("%w: output file %s holds %d lines, state expects at least %d",
			ErrInvariant, s.path, s.lines, start)
	}
	skip := s.lines - start
	if skip >= len(values) {
		return 0, nil
	}
	fresh := values[skip:]
	f, err := s.fs.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return 0, fmt.Errorf("open output %s: %w", s.path, err)
	}
	var buf bytes.Buffer
	for _, v := range fresh {
		buf.WriteString(strconv.FormatInt(v, 10))
		buf.WriteByte('\n')
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return 0, fmt.Errorf("append output %s: %w", s.path, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return 0, fmt.Errorf("sync output %s: %w", s.path, err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("close output %s: %w", s.path, err)
	}
	s.lines += len(fresh)
	return len(fresh), nil
}
