// SPDX-License-Identifier: GPL-3.0-or-later

package logger

import (
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/netdata/optprobe/pkg/executable"
)

var isJournal = isStderrConnectedToJournal()

func newDefaultLogger() *Logger {
	if isatty.IsTerminal(os.Stderr.Fd()) {
		return &Logger{sl: slog.New(newTerminalHandler(os.Stderr))}
	}
	return &Logger{sl: slog.New(newTextHandler(os.Stderr)).With(slog.String("app", executable.Name))}
}

var defaultLogger = newDefaultLogger()

func Error(a ...any)                   { defaultLogger.Error(a...) }
func Warning(a ...any)                 { defaultLogger.Warning(a...) }
func Notice(a ...any)                  { defaultLogger.Notice(a...) }
func Info(a ...any)                    { defaultLogger.Info(a...) }
func Debug(a ...any)                   { defaultLogger.Debug(a...) }
func Errorf(format string, a ...any)   { defaultLogger.Errorf(format, a...) }
func Warningf(format string, a ...any) { defaultLogger.Warningf(format, a...) }
func Noticef(format string, a ...any)  { defaultLogger.Noticef(format, a...) }
func Infof(format string, a ...any)    { defaultLogger.Infof(format, a...) }
func Debugf(format string, a ...any)   { defaultLogger.Debugf(format, a...) }
func With(args ...any) *Logger         { return defaultLogger.With(args...) }
