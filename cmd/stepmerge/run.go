package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/natefinch/atomic"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stepmerge/stepmerge/driver"
	"github.com/stepmerge/stepmerge/metrics"
	"github.com/stepmerge/stepmerge/worker"
)

var (
	runDir     string
	aValues    string
	bValues    string
	configFile string
	chunkSize  int
)

func init() {
	runCmd.Flags().StringVar(&runDir, "dir", "", "run directory for channel, state and output files")
	runCmd.Flags().StringVar(&aValues, "a-values", "", "file with worker a's sorted values, one per line")
	runCmd.Flags().StringVar(&bValues, "b-values", "", "file with worker b's sorted values, one per line")
	runCmd.Flags().StringVar(&configFile, "config", "", "load run configuration from file")
	runCmd.Flags().IntVar(&chunkSize, "chunk", worker.DefaultConfig().ChunkSize,
		"values per DATA message and per output append")
	root.AddCommand(runCmd)
}

// runConfig is the file-loadable part of the CLI configuration. Both
// subcommands accept the same file, so the two processes of a split run can
// share one config in the run directory. Explicitly set flags override it.
type runConfig struct {
	ChunkSize    int           `mapstructure:"chunk-size"`
	StallLimit   int           `mapstructure:"stall-limit"`
	PollInterval time.Duration `mapstructure:"poll-interval"`
}

func defaultRunConfig() runConfig {
	return runConfig{
		ChunkSize:    worker.DefaultConfig().ChunkSize,
		StallLimit:   driver.DefaultStallLimit,
		PollInterval: 50 * time.Millisecond,
	}
}

func loadRunConfig(path string) (runConfig, error) {
	cfg := defaultRunConfig()
	if path == "" {
		return cfg, nil
	}
	vip := viper.New()
	vip.SetConfigFile(path)
	if err := vip.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	hook := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
	)
	if err := vip.Unmarshal(&cfg, viper.DecodeHook(hook)); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "run both workers to completion in a single process",
	RunE: func(cmd *cobra.Command, args []string) error {
		if runDir == "" {
			return errors.New("run directory not specified via --dir")
		}
		if aValues == "" || bValues == "" {
			return errors.New("both value files must be specified via --a-values and --b-values")
		}
		logger, err := buildLogger()
		if err != nil {
			return err
		}
		defer logger.Sync()

		cfg, err := loadRunConfig(configFile)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("chunk") {
			cfg.ChunkSize = chunkSize
		}

		fs := afero.NewOsFs()
		aSeq, err := loadValues(fs, aValues)
		if err != nil {
			return fmt.Errorf("load a values: %w", err)
		}
		bSeq, err := loadValues(fs, bValues)
		if err != nil {
			return fmt.Errorf("load b values: %w", err)
		}

		lock, err := acquireLock(filepath.Join(runDir, "run.lock"))
		if err != nil {
			return err
		}
		defer lock.Unlock()

		paths := pathsIn(runDir)
		source, err := worker.New(workerConfig(worker.RoleSource, paths, cfg.ChunkSize), aSeq,
			worker.WithLogger(logger.Named("worker-a")))
		if err != nil {
			return fmt.Errorf("build source: %w", err)
		}
		sink, err := worker.New(workerConfig(worker.RoleSink, paths, cfg.ChunkSize), bSeq,
			worker.WithLogger(logger.Named("worker-b")))
		if err != nil {
			return fmt.Errorf("build sink: %w", err)
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		if metricsAddr != "" {
			metrics.StartServer(ctx, logger.Named("metrics"), metricsAddr)
		}

		res, err := driver.Alternate(ctx, source, sink,
			driver.WithLogger(logger.Named("driver")),
			driver.WithStallLimit(cfg.StallLimit),
		)
		if err != nil {
			return err
		}

		summary, err := json.MarshalIndent(&res, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal summary: %w", err)
		}
		if err := atomic.WriteFile(paths.Summary, bytes.NewReader(summary)); err != nil {
			return fmt.Errorf("write summary %s: %w", paths.Summary, err)
		}
		fmt.Println(string(summary))
		return nil
	},
}
