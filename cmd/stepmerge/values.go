package main

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/afero"
)

// loadValues reads one integer per line, skipping blank lines, and verifies
// ascending order. Order violations are reported with the offending line so
// the user can fix the input before any protocol step runs.
func loadValues(fs afero.Fs, path string) ([]int64, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var values []int64
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		v, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %q is not an integer", path, line, text)
		}
		if len(values) > 0 && v < values[len(values)-1] {
			return nil, fmt.Errorf("%s:%d: %d breaks ascending order", path, line, v)
		}
		values = append(values, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return values, nil
}
