// SPDX-License-Identifier: GPL-3.0-or-later

// Package matcher implements the small expression language used by profile
// deny lists and companion lists.
//
// Short syntax
//
//	<line>   ::= [ '!' ] <format> ' ' <expr>
//	<format> ::= '=' | '*' | '~'
//
// Long syntax
//
//	<line>   ::= [ '!' ] <format> ':' <expr>
//	<format> ::= 'string' | 'glob' | 'regexp'
//
// A line without a format is a glob, so "--bpf" matches exactly and
// "*cgroup*" matches any option containing "cgroup".
package matcher

import (
	"errors"
	"fmt"
	"strings"
)

// Matcher matches a string or a byte slice.
type Matcher interface {
	Match(b []byte) bool
	MatchString(string) bool
}

const (
	FmtString = "string"
	FmtGlob   = "glob"
	FmtRegExp = "regexp"
)

var ErrEmptyExpr = errors.New("empty expression")

var shortFormats = map[byte]string{
	'=': FmtString,
	'*': FmtGlob,
	'~': FmtRegExp,
}

// Parse parses a single matcher line.
func Parse(line string) (Matcher, error) {
	if line == "" {
		return nil, ErrEmptyExpr
	}

	neg := strings.HasPrefix(line, "!")
	if neg {
		line = line[1:]
	}

	format, expr := splitFormat(line)
	if expr == "" && format != FmtString {
		return nil, ErrEmptyExpr
	}

	m, err := New(format, expr)
	if err != nil {
		return nil, err
	}
	if neg {
		m = Not(m)
	}
	return m, nil
}

// Must is like Parse but panics on error.
func Must(line string) Matcher {
	m, err := Parse(line)
	if err != nil {
		panic(err)
	}
	return m
}

// ParseList parses every line and returns a matcher that matches when any of them does.
// An empty list never matches.
func ParseList(lines []string) (Matcher, error) {
	ms := make([]Matcher, 0, len(lines))
	for _, line := range lines {
		m, err := Parse(line)
		if err != nil {
			return nil, fmt.Errorf("parse matcher %q error: %v", line, err)
		}
		ms = append(ms, m)
	}
	return Or(ms...), nil
}

// New creates a matcher of the given format.
func New(format, expr string) (Matcher, error) {
	switch format {
	case FmtString:
		return NewStringMatcher(expr, true, true)
	case FmtGlob:
		return NewGlobMatcher(expr)
	case FmtRegExp:
		return NewRegExpMatcher(expr)
	default:
		return nil, fmt.Errorf("unsupported matcher format: '%s'", format)
	}
}

func splitFormat(line string) (format, expr string) {
	if len(line) >= 2 && line[1] == ' ' {
		if f, ok := shortFormats[line[0]]; ok {
			return f, line[2:]
		}
	}
	for _, f := range []string{FmtString, FmtGlob, FmtRegExp} {
		if v, ok := strings.CutPrefix(line, f+":"); ok {
			return f, v
		}
	}
	return FmtGlob, line
}
