// SPDX-License-Identifier: GPL-3.0-or-later

package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
)

// Logger is a thin printf style wrapper around slog.Logger.
// A nil *Logger is usable and writes through the default logger.
type Logger struct {
	muted atomic.Bool
	sl    *slog.Logger
}

// New returns a logger that shares the default handler.
func New() *Logger {
	return &Logger{sl: defaultLogger.sl}
}

// NewWriter returns a logger writing plain text records to w. Used by tests and
// by callers that redirect diagnostics.
func NewWriter(w io.Writer) *Logger {
	return &Logger{sl: slog.New(newTextHandler(w))}
}

func (l *Logger) Error(a ...any)   { l.log(slog.LevelError, fmt.Sprint(a...)) }
func (l *Logger) Warning(a ...any) { l.log(slog.LevelWarn, fmt.Sprint(a...)) }
func (l *Logger) Notice(a ...any)  { l.log(levelNotice, fmt.Sprint(a...)) }
func (l *Logger) Info(a ...any)    { l.log(slog.LevelInfo, fmt.Sprint(a...)) }
func (l *Logger) Debug(a ...any)   { l.log(slog.LevelDebug, fmt.Sprint(a...)) }

func (l *Logger) Errorf(format string, a ...any)   { l.log(slog.LevelError, fmt.Sprintf(format, a...)) }
func (l *Logger) Warningf(format string, a ...any) { l.log(slog.LevelWarn, fmt.Sprintf(format, a...)) }
func (l *Logger) Noticef(format string, a ...any)  { l.log(levelNotice, fmt.Sprintf(format, a...)) }
func (l *Logger) Infof(format string, a ...any)    { l.log(slog.LevelInfo, fmt.Sprintf(format, a...)) }
func (l *Logger) Debugf(format string, a ...any)   { l.log(slog.LevelDebug, fmt.Sprintf(format, a...)) }

// With returns a child logger carrying the given slog attributes.
func (l *Logger) With(args ...any) *Logger {
	if l.isNil() {
		return &Logger{sl: defaultLogger.sl.With(args...)}
	}

	ll := &Logger{sl: l.sl.With(args...)}
	ll.muted.Store(l.muted.Load())

	return ll
}

func (l *Logger) Mute() {
	if l.isNil() {
		return
	}
	l.muted.Store(true)
}

func (l *Logger) Unmute() {
	if l.isNil() {
		return
	}
	l.muted.Store(false)
}

func (l *Logger) log(level slog.Level, msg string) {
	if l.isNil() {
		defaultLogger.sl.Log(context.Background(), level, msg)
		return
	}

	if !l.muted.Load() {
		l.sl.Log(context.Background(), level, msg)
	}
}

func (l *Logger) isNil() bool { return l == nil || l.sl == nil }
