// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logger provides heapfs's structural-mutation debug log: a
// slog.Logger whose level tracks cfg.LogSeverity and whose output,
// when a file path is configured, rotates via lumberjack and is
// written through an AsyncLogger so a slow disk never stalls the
// caller taking the file-store lock.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/heapfs-project/heapfs/cfg"
)

// Custom slog levels bracketing the standard four so TRACE and OFF have
// somewhere to live.
const (
	LevelTrace = slog.Level(-8)
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
	LevelOff   = slog.Level(12)
)

var severityLevel = map[cfg.LogSeverity]slog.Level{
	cfg.TraceLogSeverity:   LevelTrace,
	cfg.DebugLogSeverity:   LevelDebug,
	cfg.InfoLogSeverity:    LevelInfo,
	cfg.WarningLogSeverity: LevelWarn,
	cfg.ErrorLogSeverity:   LevelError,
	cfg.OffLogSeverity:     LevelOff,
}

func levelString(l slog.Level) string {
	switch {
	case l < LevelDebug:
		return "TRACE"
	case l < LevelInfo:
		return "DEBUG"
	case l < LevelWarn:
		return "INFO"
	case l < LevelError:
		return "WARNING"
	default:
		return "ERROR"
	}
}

// textHandler renders `time="..." severity=LEVEL message="..."` lines,
// matching the shape the teacher's loggerFactory produces for its
// "text" format.
type textHandler struct {
	mu       *sync.Mutex
	w        io.Writer
	minLevel *slog.LevelVar
}

func newTextHandler(w io.Writer, minLevel *slog.LevelVar) *textHandler {
	return &textHandler{mu: &sync.Mutex{}, w: w, minLevel: minLevel}
}

func (h *textHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.minLevel.Level()
}
func (h *textHandler) WithAttrs(_ []slog.Attr) slog.Handler { return h }
func (h *textHandler) WithGroup(_ string) slog.Handler      { return h }

func (h *textHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintf(h.w, "time=%q severity=%s message=%q\n", r.Time.Format(time.RFC3339Nano), levelString(r.Level), r.Message)
	return err
}

// jsonHandler renders `{"timestamp":{"seconds":N,"nanos":N},"severity":"LEVEL","message":"..."}` lines.
type jsonHandler struct {
	mu       *sync.Mutex
	w        io.Writer
	minLevel *slog.LevelVar
}

func newJSONHandler(w io.Writer, minLevel *slog.LevelVar) *jsonHandler {
	return &jsonHandler{mu: &sync.Mutex{}, w: w, minLevel: minLevel}
}

func (h *jsonHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.minLevel.Level()
}
func (h *jsonHandler) WithAttrs(_ []slog.Attr) slog.Handler { return h }
func (h *jsonHandler) WithGroup(_ string) slog.Handler      { return h }

func (h *jsonHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintf(h.w, "{\"timestamp\":{\"seconds\":%d,\"nanos\":%d},\"severity\":%q,\"message\":%q}\n",
		r.Time.Unix(), r.Time.Nanosecond(), levelString(r.Level), r.Message)
	return err
}

// loggerFactory holds the state needed to rebuild the logger when its
// configuration changes (level, destination, rotation), the same role
// the teacher's loggerFactory plays.
type loggerFactory struct {
	mu         sync.Mutex
	programLvl *slog.LevelVar
	closer     io.Closer
}

var (
	defaultFactory = &loggerFactory{programLvl: new(slog.LevelVar)}
	defaultLogger  = slog.New(newTextHandler(os.Stderr, defaultFactory.programLvl))
)

// Init (re)configures the package-level default logger from c, rendering
// lines in c.Format ("json", or text otherwise). If c.FilePath is empty,
// logs go to stderr. Otherwise they
// rotate through lumberjack at c.LogRotate's settings, written via an
// AsyncLogger so rotation and disk I/O never block the caller. The
// returned io.Closer should be closed on shutdown to flush pending
// writes.
func Init(c cfg.LoggingConfig) (io.Closer, error) {
	defaultFactory.mu.Lock()
	defer defaultFactory.mu.Unlock()

	if defaultFactory.closer != nil {
		defaultFactory.closer.Close()
		defaultFactory.closer = nil
	}

	level, ok := severityLevel[c.Severity]
	if !ok {
		level = LevelInfo
	}
	defaultFactory.programLvl.Set(level)

	var w io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}
	if c.FilePath != "" {
		lj := &lumberjack.Logger{
			Filename:   c.FilePath,
			MaxSize:    c.LogRotate.MaxFileSizeMB,
			MaxBackups: c.LogRotate.BackupFileCount,
			Compress:   c.LogRotate.Compress,
		}
		async := NewAsyncLogger(lj, 4096)
		w = async
		closer = async
	}

	var handler slog.Handler
	if c.Format == "json" {
		handler = newJSONHandler(w, defaultFactory.programLvl)
	} else {
		handler = newTextHandler(w, defaultFactory.programLvl)
	}
	defaultLogger = slog.New(handler)
	defaultFactory.closer = closer
	return closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// SetLevel updates the running logger's minimum severity without
// rebuilding its destination.
func SetLevel(sev cfg.LogSeverity) {
	if level, ok := severityLevel[sev]; ok {
		defaultFactory.programLvl.Set(level)
	}
}

func logf(level slog.Level, format string, args ...any) {
	ctx := context.Background()
	if !defaultLogger.Enabled(ctx, level) {
		return
	}
	defaultLogger.Log(ctx, level, fmt.Sprintf(format, args...))
}

func Tracef(format string, args ...any) { logf(LevelTrace, format, args...) }
func Debugf(format string, args ...any) { logf(LevelDebug, format, args...) }
func Infof(format string, args ...any)  { logf(LevelInfo, format, args...) }
func Warnf(format string, args ...any)  { logf(LevelWarn, format, args...) }
func Errorf(format string, args ...any) { logf(LevelError, format, args...) }
