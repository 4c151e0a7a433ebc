/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package log provides the slog setup shared by the CLI and all internal packages.
// Records carry app/version attributes, an optional component and op, and, when the
// context was tagged with WithDesign, the path of the design file being edited.
package log

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"impactstudio/internal/version"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Options controls logger initialization.
// Environment variables read by FromEnv:
//   - IMS_LOG_LEVEL=debug|info|warn|error
//   - IMS_LOG_FORMAT=console|json
//   - IMS_LOG_FILE=<path> (adds a rotating JSON file sink)
//   - IMS_LOG_SOURCE=true|false
type Options struct {
	Level     string
	Format    string // "console" or "json"
	AddSource bool
	File      string
	// MaxSizeMB is the rotation threshold of the file sink; 0 means 10.
	MaxSizeMB int
}

var (
	defaultLoggerMu sync.RWMutex
	defaultLogger   *slog.Logger
	consoleOut      io.Writer = os.Stderr
)

// L returns the default application logger, initializing from env if needed.
func L() *slog.Logger {
	defaultLoggerMu.RLock()
	l := defaultLogger
	defaultLoggerMu.RUnlock()
	if l != nil {
		return l
	}
	Init(FromEnv())
	defaultLoggerMu.RLock()
	l = defaultLogger
	defaultLoggerMu.RUnlock()
	return l
}

// Init configures the global logger and installs it as slog.Default.
func Init(opts Options) {
	lvl := parseLevel(opts.Level)
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}

	var hs []slog.Handler
	if format == "json" {
		hs = append(hs, slog.NewJSONHandler(consoleOut, &slog.HandlerOptions{Level: lvl, AddSource: opts.AddSource}))
	} else {
		hs = append(hs, slog.NewTextHandler(consoleOut, &slog.HandlerOptions{Level: lvl, AddSource: opts.AddSource, ReplaceAttr: compactConsole}))
	}
	if strings.TrimSpace(opts.File) != "" {
		size := opts.MaxSizeMB
		if size <= 0 {
			size = 10
		}
		w := &lj.Logger{Filename: opts.File, MaxSize: size, MaxBackups: 3, MaxAge: 28, Compress: true}
		hs = append(hs, slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl, AddSource: opts.AddSource}))
	}
	h := &sinks{hs: hs}

	logger := slog.New(h).With(
		slog.String("app", "impactstudio"),
		slog.String("ver", version.Version),
		slog.Time("ts_init", time.Now()),
	)

	defaultLoggerMu.Lock()
	defaultLogger = logger
	defaultLoggerMu.Unlock()
	slog.SetDefault(logger)
}

// FromEnv builds Options from environment variables.
func FromEnv() Options {
	return Options{
		Level:     getenv("IMS_LOG_LEVEL", "info"),
		Format:    getenv("IMS_LOG_FORMAT", "console"),
		AddSource: strings.EqualFold(getenv("IMS_LOG_SOURCE", "false"), "true"),
		File:      os.Getenv("IMS_LOG_FILE"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// WithComponent returns a logger with the component attribute pre-set.
func WithComponent(name string) *slog.Logger { return L().With(slog.String("component", name)) }

// WithOperation annotates the logger with an operation name.
func WithOperation(l *slog.Logger, op string) *slog.Logger { return l.With(slog.String("op", op)) }

type designKey struct{}

// WithDesign tags ctx with the design file path; records logged with that
// context (InfoContext etc.) get a "design" attribute.
func WithDesign(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, designKey{}, path)
}

func designFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	s, _ := ctx.Value(designKey{}).(string)
	return s
}

func parseLevel(s string) slog.Leveler {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// sinks tags records with the design from the context and hands them to
// every enabled handler.
type sinks struct{ hs []slog.Handler }

func (s *sinks) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range s.hs {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (s *sinks) Handle(ctx context.Context, r slog.Record) error {
	if p := designFrom(ctx); p != "" {
		r = r.Clone()
		r.AddAttrs(slog.String("design", p))
	}
	var errs []error
	for _, h := range s.hs {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (s *sinks) WithAttrs(attrs []slog.Attr) slog.Handler {
	return s.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (s *sinks) WithGroup(name string) slog.Handler {
	return s.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (s *sinks) each(fn func(slog.Handler) slog.Handler) *sinks {
	out := make([]slog.Handler, len(s.hs))
	for i, h := range s.hs {
		out[i] = fn(h)
	}
	return &sinks{hs: out}
}

// compactConsole shortens the text handler's time, level and source for terminals.
func compactConsole(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}
	switch a.Key {
	case slog.TimeKey:
		return slog.String(slog.TimeKey, a.Value.Time().Format(time.TimeOnly))
	case slog.LevelKey:
		if l, ok := a.Value.Any().(slog.Level); ok {
			return slog.String(slog.LevelKey, shortLevel(l))
		}
	case slog.SourceKey:
		if src, ok := a.Value.Any().(*slog.Source); ok && src != nil {
			return slog.String(slog.SourceKey, filepath.Base(src.File)+":"+strconv.Itoa(src.Line))
		}
	}
	return a
}

func shortLevel(l slog.Level) string {
	switch l {
	case slog.LevelDebug:
		return "DBG"
	case slog.LevelInfo:
		return "INF"
	case slog.LevelWarn:
		return "WRN"
	case slog.LevelError:
		return "ERR"
	}
	return l.String()
}
