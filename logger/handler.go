// SPDX-License-Identifier: GPL-3.0-or-later

package logger

import (
	"io"
	"log/slog"
	"runtime"
	"strings"

	"github.com/lmittmann/tint"
)

// newTextHandler writes logfmt records. The timestamp is dropped under
// journald, which stamps every line itself.
func newTextHandler(w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: Level.lvl,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && isJournal {
				return slog.Attr{}
			}
			if a.Key == slog.LevelKey {
				return slog.String(a.Key, strings.ToLower(levelName(a.Value)))
			}
			return a
		},
	}
	return slog.NewTextHandler(w, opts)
}

// newTerminalHandler writes colored records without timestamps for interactive use.
func newTerminalHandler(w io.Writer) slog.Handler {
	opts := &tint.Options{
		Level:   Level.lvl,
		NoColor: runtime.GOOS == "windows",
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == levelNotice {
					return slog.String(a.Key, noticeTerm)
				}
			}
			return a
		},
	}
	return tint.NewHandler(w, opts)
}
