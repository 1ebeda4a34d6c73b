// SPDX-License-Identifier: GPL-3.0-or-later

// Package strmutil shortens captured process output for logs and reports.
package strmutil

import (
	"strings"
	"unicode/utf8"
)

const ellipsis = "..."

// TruncateText limits text to maxLen bytes, ellipsis included, without
// splitting a multi-byte character.
func TruncateText(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	if maxLen <= len(ellipsis) {
		return ellipsis[:max(maxLen, 0)]
	}

	cut := maxLen - len(ellipsis)
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + ellipsis
}

// Excerpt trims surrounding whitespace and truncates to maxLen.
// Empty or whitespace-only input yields "".
func Excerpt(b []byte, maxLen int) string {
	return TruncateText(strings.TrimSpace(string(b)), maxLen)
}

// FirstLine returns the first non-empty line of s, trimmed.
func FirstLine(s string) string {
	for line := range strings.Lines(s) {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
