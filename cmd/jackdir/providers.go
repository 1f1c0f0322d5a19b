package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/golang-cz/devslog"

	"github.com/hayeah/jackdir/export"
	"github.com/hayeah/jackdir/internal/history"
	"github.com/hayeah/jackdir/internal/metrics"
	"github.com/hayeah/jackdir/internal/session"
	"github.com/hayeah/jackdir/scan"
	"github.com/hayeah/jackdir/server"
)

func ProvideConfig(args *Args) (*Config, error) {
	return LoadConfig(args)
}

// ProvideLogger builds the process logger. Logs go to stderr so stdout
// stays pipeable.
func ProvideLogger(cfg *Config) (*slog.Logger, error) {
	level, err := parseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if cfg.Log.Pretty {
		h = devslog.NewHandler(os.Stderr, &devslog.Options{
			HandlerOptions:  opts,
			NewLineAfterLog: true,
		})
	} else {
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(h), nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

func ProvideScanner() *scan.Scanner {
	return scan.New()
}

func ProvideSession(scanner session.Scanner, logger *slog.Logger) *session.Session {
	return session.New(scanner, logger)
}

func ProvideCounter(cfg *Config, logger *slog.Logger) (metrics.Counter, error) {
	c, err := metrics.NewCounter(cfg.TokenEstimator)
	return fallbackCounter(c, err, logger)
}

// fallbackCounter swaps an unavailable tokenizer for the bytes/4 estimate
// and warns that token counts are approximate.
func fallbackCounter(c metrics.Counter, err error, logger *slog.Logger) (metrics.Counter, error) {
	if errors.Is(err, metrics.ErrTokenizerUnavailable) {
		logger.Warn("tiktoken unavailable, estimating tokens as bytes/4", "err", err)
		return metrics.SimpleCounter{}, nil
	}
	return c, err
}

// ProvideHistory opens the export log. An empty history_db disables it and
// yields a nil store.
func ProvideHistory(cfg *Config, logger *slog.Logger) (*history.Store, func(), error) {
	if cfg.HistoryDB == "" {
		return nil, func() {}, nil
	}
	store, err := history.Open(cfg.HistoryDB, logger)
	if err != nil {
		return nil, nil, err
	}
	return store, func() { store.Close() }, nil
}

func ProvideDelivery(args *Args) export.Delivery {
	return export.NewDelivery(args.Output())
}

// ProvideExporterFactory returns a factory of exporters reading from the
// local filesystem.
func ProvideExporterFactory(delivery export.Delivery, counter metrics.Counter, hist *history.Store, logger *slog.Logger) server.ExporterFactory {
	return func(root string) (session.Exporter, error) {
		fs, err := scan.OSOpener(root)
		if err != nil {
			return nil, err
		}
		e := &export.Exporter{
			FS:       fs,
			RootName: scan.RootName(root),
			Delivery: delivery,
			Counter:  counter,
			Logger:   logger,
		}
		if hist != nil {
			e.Recorder = hist
		}
		return e, nil
	}
}
