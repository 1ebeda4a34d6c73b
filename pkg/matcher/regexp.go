// SPDX-License-Identifier: GPL-3.0-or-later

package matcher

import (
	"regexp"
	"strings"
)

// NewRegExpMatcher compiles expr. An expression that is a plain string apart
// from its anchors becomes a string matcher.
func NewRegExpMatcher(expr string) (Matcher, error) {
	body, start := strings.CutPrefix(expr, "^")
	body, end := strings.CutSuffix(body, "$")

	if body != "" && regexp.QuoteMeta(body) == body {
		return NewStringMatcher(body, start, end)
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	return re, nil
}
