package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stepmerge/stepmerge/worker"
)

var (
	logLevel    string
	metricsAddr string
)

func init() {
	root.PersistentFlags().StringVar(&logLevel, "level", "info", "logging level")
	root.PersistentFlags().StringVar(&metricsAddr, "metrics-address", "",
		"expose prometheus metrics on this address (empty disables the endpoint)")
}

var root = &cobra.Command{
	Use:   "stepmerge",
	Short: "merge two sorted sequences across single-slot file channels",
}

func buildLogger() (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(strings.ToLower(logLevel))
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", logLevel, err)
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = lvl
	return cfg.Build()
}

// runPaths is the file layout of one run directory. Both processes of a
// two-process run derive the same layout, so they meet on the same channel
// and output files.
type runPaths struct {
	SourceToSink string
	SinkToSource string
	Output       string
	SourceState  string
	SinkState    string
	Summary      string
}

func pathsIn(dir string) runPaths {
	return runPaths{
		SourceToSink: filepath.Join(dir, "a_to_b.json"),
		SinkToSource: filepath.Join(dir, "b_to_a.json"),
		Output:       filepath.Join(dir, "merged.txt"),
		SourceState:  filepath.Join(dir, "state_a.json"),
		SinkState:    filepath.Join(dir, "state_b.json"),
		Summary:      filepath.Join(dir, "summary.json"),
	}
}

func workerConfig(role worker.Role, paths runPaths, chunk int) worker.Config {
	cfg := worker.DefaultConfig()
	cfg.Role = role
	cfg.ChunkSize = chunk
	switch role {
	case worker.RoleSource:
		cfg.Inbox = paths.SinkToSource
		cfg.Outbox = paths.SourceToSink
		cfg.StateFile = paths.SourceState
	case worker.RoleSink:
		cfg.Inbox = paths.SourceToSink
		cfg.Outbox = paths.SinkToSource
		cfg.Output = paths.Output
		cfg.StateFile = paths.SinkState
	}
	return cfg
}

func acquireLock(path string) (*flock.Flock, error) {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return nil, fmt.Errorf("creating dir for lock %s: %w", path, err)
	}
	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("flock %s: %w", path, err)
	} else if !locked {
		return nil, fmt.Errorf("another stepmerge process is already running (locking file %s)", fl.Path())
	}
	return fl, nil
}

func main() {
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
