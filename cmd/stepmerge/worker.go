package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/stepmerge/stepmerge/driver"
	"github.com/stepmerge/stepmerge/metrics"
	"github.com/stepmerge/stepmerge/worker"
)

var (
	workerDir    string
	workerRole   string
	valuesFile   string
	pollInterval time.Duration
)

func init() {
	workerCmd.Flags().StringVar(&workerDir, "dir", "", "run directory shared with the partner process")
	workerCmd.Flags().StringVar(&workerRole, "role", "", "protocol role, a or b")
	workerCmd.Flags().StringVar(&valuesFile, "values", "", "file with this worker's sorted values, one per line")
	workerCmd.Flags().StringVar(&configFile, "config", "", "load run configuration from file")
	workerCmd.Flags().DurationVar(&pollInterval, "interval", defaultRunConfig().PollInterval,
		"delay between steps while waiting for the partner")
	root.AddCommand(workerCmd)
}

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "run a single role against a shared run directory",
	Long: `Runs one side of a two-process merge. Start one process with --role a
and one with --role b against the same directory; either side may be killed
and restarted at any step boundary and resumes from its state file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if workerDir == "" {
			return errors.New("run directory not specified via --dir")
		}
		if valuesFile == "" {
			return errors.New("value file not specified via --values")
		}
		role := worker.Role(workerRole)
		if role != worker.RoleSource && role != worker.RoleSink {
			return fmt.Errorf("unknown role %q (want %q or %q)", workerRole, worker.RoleSource, worker.RoleSink)
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
		if cmd.Flags().Changed("interval") {
			cfg.PollInterval = pollInterval
		}

		seq, err := loadValues(afero.NewOsFs(), valuesFile)
		if err != nil {
			return fmt.Errorf("load values: %w", err)
		}

		lock, err := acquireLock(filepath.Join(workerDir, fmt.Sprintf("worker_%s.lock", role)))
		if err != nil {
			return err
		}
		defer lock.Unlock()

		w, err := worker.New(workerConfig(role, pathsIn(workerDir), cfg.ChunkSize), seq,
			worker.WithLogger(logger.Named("worker-"+string(role))))
		if err != nil {
			return fmt.Errorf("build worker: %w", err)
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		if metricsAddr != "" {
			metrics.StartServer(ctx, logger.Named("metrics"), metricsAddr)
		}

		stats, err := driver.Poll(ctx, w, cfg.PollInterval, driver.WithLogger(logger.Named("driver")))
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal stats: %w", err)
		}
		fmt.Println(string(out))
		return nil
	},
}
