// SPDX-License-Identifier: GPL-3.0-or-later

package matcher

type (
	constMatcher bool
	orMatcher    []Matcher
	negMatcher   struct{ m Matcher }
)

// TRUE matches everything.
func TRUE() Matcher { return constMatcher(true) }

// FALSE matches nothing. It is the identity of Or.
func FALSE() Matcher { return constMatcher(false) }

// Not inverts m.
func Not(m Matcher) Matcher {
	if c, ok := m.(constMatcher); ok {
		return !c
	}
	if n, ok := m.(negMatcher); ok {
		return n.m
	}
	return negMatcher{m}
}

// Or matches when any of ms matches. Constant operands are folded.
func Or(ms ...Matcher) Matcher {
	var res orMatcher
	for _, m := range ms {
		switch v := m.(type) {
		case constMatcher:
			if v {
				return TRUE()
			}
		case orMatcher:
			res = append(res, v...)
		default:
			res = append(res, m)
		}
	}
	switch len(res) {
	case 0:
		return FALSE()
	case 1:
		return res[0]
	}
	return res
}

func (c constMatcher) Match(_ []byte) bool       { return bool(c) }
func (c constMatcher) MatchString(_ string) bool { return bool(c) }

func (o orMatcher) Match(b []byte) bool {
	for _, m := range o {
		if m.Match(b) {
			return true
		}
	}
	return false
}

func (o orMatcher) MatchString(s string) bool {
	for _, m := range o {
		if m.MatchString(s) {
			return true
		}
	}
	return false
}

func (n negMatcher) Match(b []byte) bool       { return !n.m.Match(b) }
func (n negMatcher) MatchString(s string) bool { return !n.m.MatchString(s) }
