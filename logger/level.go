// SPDX-License-Identifier: GPL-3.0-or-later

package logger

import (
	"log/slog"
	"strings"
)

const (
	levelNotice  = slog.Level(2)
	levelDisable = slog.Level(99)
)

// noticeTerm is the blue short label tint uses for the notice level.
const noticeTerm = "\u001B[34m" + "NTC" + "\u001B[0m"

func levelName(v slog.Value) string {
	lvl, ok := v.Any().(slog.Level)
	if !ok {
		return v.String()
	}
	if lvl == levelNotice {
		return "NOTICE"
	}
	return lvl.String()
}

var Level = &level{lvl: &slog.LevelVar{}}

type level struct {
	lvl *slog.LevelVar
}

func (l *level) Set(level slog.Level) {
	l.lvl.Set(level)
}

// SetByName accepts syslog style names. Unknown names leave the level unchanged.
func (l *level) SetByName(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "err", "error":
		l.lvl.Set(slog.LevelError)
	case "warn", "warning":
		l.lvl.Set(slog.LevelWarn)
	case "notice":
		l.lvl.Set(levelNotice)
	case "info":
		l.lvl.Set(slog.LevelInfo)
	case "debug":
		l.lvl.Set(slog.LevelDebug)
	case "emergency", "alert", "critical", "off", "none":
		l.lvl.Set(levelDisable)
	default:
		return false
	}
	return true
}
