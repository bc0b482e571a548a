package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/natefinch/atomic"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stepmerge/stepmerge/fetcher"
)

var (
	urlsFile      string
	retries       int
	baseDelay     time.Duration
	maxDelay      time.Duration
	timeout       time.Duration
	slowThreshold time.Duration
	eventLog      string
	summaryPath   string
	logLevel      string
)

func init() {
	defaults := fetcher.DefaultConfig()
	cmd.PersistentFlags().StringVar(&urlsFile, "urls", "",
		"file with one url per line (blank lines and # comments are skipped)")
	cmd.PersistentFlags().IntVar(&retries, "retries", defaults.MaxRetries,
		"additional attempts after the first")
	cmd.PersistentFlags().DurationVar(&baseDelay, "base-delay", defaults.BaseDelay,
		"backoff delay before the first retry, doubling per retry")
	cmd.PersistentFlags().DurationVar(&maxDelay, "max-delay", defaults.MaxDelay, "backoff delay cap")
	cmd.PersistentFlags().DurationVar(&timeout, "timeout", defaults.Timeout, "per attempt timeout")
	cmd.PersistentFlags().DurationVar(&slowThreshold, "slow-threshold", defaults.SlowThreshold,
		"latency above which a successful response is reported slow")
	cmd.PersistentFlags().StringVar(&eventLog, "log", "events.jsonl", "event log path, truncated at start")
	cmd.PersistentFlags().StringVar(&summaryPath, "summary", "summary.json", "summary path")
	cmd.PersistentFlags().StringVar(&logLevel, "level", "info", "logging level")
}

var cmd = &cobra.Command{
	Use:   "urlfetch",
	Short: "fetch a list of urls with retries and a structured event log",
	RunE: func(cmd *cobra.Command, args []string) error {
		if urlsFile == "" {
			return errors.New("no url file specified via --urls")
		}
		lvl, err := zap.ParseAtomicLevel(strings.ToLower(logLevel))
		if err != nil {
			return fmt.Errorf("parse log level %q: %w", logLevel, err)
		}
		zapCfg := zap.NewDevelopmentConfig()
		zapCfg.Level = lvl
		logger, err := zapCfg.Build()
		if err != nil {
			return err
		}
		defer logger.Sync()

		fs := afero.NewOsFs()
		urls, err := loadURLs(fs, urlsFile)
		if err != nil {
			return fmt.Errorf("load urls: %w", err)
		}

		handler, err := fetcher.NewLogHandler(fs, eventLog)
		if err != nil {
			return fmt.Errorf("open event log: %w", err)
		}

		cfg := fetcher.Config{
			MaxRetries:    retries,
			BaseDelay:     baseDelay,
			MaxDelay:      maxDelay,
			Timeout:       timeout,
			SlowThreshold: slowThreshold,
		}
		f := fetcher.New(cfg, handler, fetcher.WithLogger(logger.Named("fetch")))

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		successful := f.FetchAll(ctx, fetcher.NewListProvider(urls...))
		if err := handler.Close(); err != nil {
			logger.Warn("close event log", zap.Error(err))
		}

		summary, err := json.MarshalIndent(handler.Summary(), "", "  ")
		if err != nil {
			return fmt.Errorf("marshal summary: %w", err)
		}
		if err := atomic.WriteFile(summaryPath, bytes.NewReader(summary)); err != nil {
			return fmt.Errorf("write summary %s: %w", summaryPath, err)
		}
		fmt.Println(string(summary))

		logger.Info("fetch finished",
			zap.Int("successful", successful),
			zap.Int("total", len(urls)),
		)
		return ctx.Err()
	},
}

// loadURLs reads one url per line. It does not validate the urls; a
// malformed url is reported as a connection error event during the run.
func loadURLs(fs afero.Fs, path string) ([]string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		urls = append(urls, text)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("%s contains no urls", path)
	}
	return urls, nil
}

func main() {
	if err := cmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
