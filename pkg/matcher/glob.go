// SPDX-License-Identifier: GPL-3.0-or-later

package matcher

import (
	"errors"

	"github.com/bmatcuk/doublestar/v4"
)

type globMatcher string

// NewGlobMatcher creates a glob matcher. A pattern without meta characters
// degrades to an exact string matcher.
func NewGlobMatcher(expr string) (Matcher, error) {
	switch expr {
	case "":
		return stringFullMatcher(""), nil
	case "*", "**":
		return TRUE(), nil
	}

	if !doublestar.ValidatePattern(expr) {
		return nil, errors.New("invalid glob pattern")
	}
	if !hasGlobMeta(expr) {
		return stringFullMatcher(expr), nil
	}
	return globMatcher(expr), nil
}

func (m globMatcher) Match(b []byte) bool {
	return m.MatchString(string(b))
}

func (m globMatcher) MatchString(line string) bool {
	ok, err := doublestar.Match(string(m), line)
	return err == nil && ok
}

func hasGlobMeta(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '*', '?', '[', '{', '\\':
			return true
		}
	}
	return false
}
