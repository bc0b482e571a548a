// Package atomicfile replaces files without ever exposing a partial write:
// content goes to a temporary file in the destination directory, is flushed
// and synced, and only then renamed over the destination.
package atomicfile

import (
	"bufio"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// WriteFile atomically replaces the file at path with data. The destination
// directory is created if it does not exist yet. On error the destination is
// left untouched.
func WriteFile(fs afero.Fs, path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}
	tmp, err := afero.TempFile(fs, dir, filepath.Base(path)+".tmp")
	if err != nil {
		return fmt.Errorf("create temporary file in %s: %w", dir, err)
	}
	name := tmp.Name()
	wr := bufio.NewWriter(tmp)
	if _, err := wr.Write(data); err != nil {
		tmp.Close()
		fs.Remove(name)
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := wr.Flush(); err != nil {
		tmp.Close()
		fs.Remove(name)
		return fmt.Errorf("flush %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		fs.Remove(name)
		return fmt.Errorf("sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		fs.Remove(name)
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := fs.Rename(name, path); err != nil {
		fs.Remove(name)
		return fmt.Errorf("rename %s to %s: %w", name, path, err)
	}
	return nil
}
