// SPDX-License-Identifier: GPL-3.0-or-later

// Package option models CLI option tokens such as "-e" or "--metric-groups".
package option

import (
	"regexp"
	"strings"
	"unicode"
)

// trailingJunk is stripped from the right end of a token along with any
// whitespace: punctuation picked up from prose, shell quoting and grep context.
const trailingJunk = ")'\",.:;/[]"

var reShortWithDigits = regexp.MustCompile(`^(-[a-zA-Z])\d+$`)

// Normalize reduces a raw token to its canonical option form.
//
//	"--foo=bar"  -> "--foo"
//	"-G/cgroup"  -> "-G"
//	"-j64"       -> "-j"
//	"--pid),"    -> "--pid"
//	"--foo.=x"   -> "--foo"
//
// The value part is cut off before trailing punctuation is stripped.
// It returns false when the token is not an option or nothing but dashes remains.
// Normalize is idempotent.
func Normalize(token string) (string, bool) {
	s := strings.TrimSpace(token)
	if !strings.HasPrefix(s, "-") {
		return "", false
	}

	if i := strings.IndexAny(s, "=/"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimRightFunc(s, isTrailingJunk)

	if m := reShortWithDigits.FindStringSubmatch(s); m != nil {
		s = m[1]
	}

	if strings.TrimLeft(s, "-") == "" {
		return "", false
	}
	return s, true
}

// HasValueSyntax reports whether a raw token carried an attached value with '='.
func HasValueSyntax(token string) bool {
	return strings.Contains(token, "=")
}

func isTrailingJunk(r rune) bool {
	return unicode.IsSpace(r) || strings.ContainsRune(trailingJunk, r)
}
