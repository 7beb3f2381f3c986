// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.


// Package logging builds the slog logger used by the fma command.
//
// Records always go to stderr in text or JSON form. When a directory is
// configured they are also appended, as JSON, to a per-day file named
// {service}_{YYYY-MM-DD}.log, so long bench runs leave a machine-readable
// trail:
//
//	lg, err := logging.New(logging.Config{Level: "info", Dir: "~/.fma/logs"}, os.Stderr)
//	if err != nil {
//	    return err
//	}
//	defer lg.Close()
//	slog.SetDefault(lg.Slog())
//
// Nothing is redacted. Callers log automaton sources and counters, never
// file contents.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level names accepted by ParseLevel.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// ErrUnknownLevel is returned by ParseLevel.
var ErrUnknownLevel = errors.New("unknown log level")

// ParseLevel maps a level name to its slog level. Matching ignores case.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case LevelDebug:
		return slog.LevelDebug, nil
	case LevelInfo, "":
		return slog.LevelInfo, nil
	case LevelWarn, "warning":
		return slog.LevelWarn, nil
	case LevelError:
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrUnknownLevel, name)
	}
}

// Config configures New. The zero value logs Info and above to stderr as
// text.
type Config struct {
	// Level is a ParseLevel name. Empty means info.
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`

	// Dir enables the JSON file sink. A leading ~ is expanded.
	Dir string `yaml:"dir"`

	// Service prefixes the file name and is attached to every record.
	// Empty means "fma".
	Service string `yaml:"service"`

	// JSON switches the stderr sink from text to JSON.
	JSON bool `yaml:"json"`

	// Quiet drops the stderr sink. Ignored when Dir is empty.
	Quiet bool `yaml:"quiet"`
}

// Logger owns the slog logger and the optional log file.
//
// Thread Safety: Safe for concurrent use.
type Logger struct {
	slog *slog.Logger

	mu   sync.Mutex
	file *os.File
}

// New builds a Logger writing to stderr and, if configured, to a file.
//
// Inputs:
//   - cfg: Sinks and level.
//   - stderr: The console sink, usually os.Stderr.
//
// Outputs:
//   - *Logger: Must be closed when the file sink is enabled.
//   - error: ErrUnknownLevel, or the directory or file could not be opened.
func New(cfg Config, stderr io.Writer) (*Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	service := cfg.Service
	if service == "" {
		service = "fma"
	}
	opts := &slog.HandlerOptions{Level: level}

	l := &Logger{}
	var sinks []slog.Handler
	if cfg.Dir != "" {
		dir := expandHome(cfg.Dir)
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		name := fmt.Sprintf("%s_%s.log", service, time.Now().Format(time.DateOnly))
		f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		l.file = f
		sinks = append(sinks, slog.NewJSONHandler(f, opts))
	}
	if !cfg.Quiet || len(sinks) == 0 {
		if cfg.JSON {
			sinks = append(sinks, slog.NewJSONHandler(stderr, opts))
		} else {
			sinks = append(sinks, slog.NewTextHandler(stderr, opts))
		}
	}

	var h slog.Handler = fanout(sinks)
	if len(sinks) == 1 {
		h = sinks[0]
	}
	if cfg.Dir != "" {
		h = h.WithAttrs([]slog.Attr{slog.String("service", service)})
	}
	l.slog = slog.New(h)
	return l, nil
}

// Slog returns the underlying logger.
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}

// Close syncs and closes the log file. Safe to call twice.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := errors.Join(l.file.Sync(), l.file.Close())
	l.file = nil
	return err
}

// fanout sends each record to every sink that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
