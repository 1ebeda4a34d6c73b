// SPDX-License-Identifier: GPL-3.0-or-later

package option

import (
	"encoding/json"
	"slices"
	"strings"
)

// Set is a set of normalized option tokens.
type Set map[string]struct{}

// NewSet returns a set holding the given options as is.
func NewSet(opts ...string) Set {
	s := make(Set, len(opts))
	for _, o := range opts {
		s.Add(o)
	}
	return s
}

// FromTokens normalizes raw tokens and keeps the valid ones.
func FromTokens(tokens ...string) Set {
	s := make(Set, len(tokens))
	for _, tok := range tokens {
		if o, ok := Normalize(tok); ok {
			s.Add(o)
		}
	}
	return s
}

func (s Set) Add(opt string) {
	s[opt] = struct{}{}
}

func (s Set) Has(opt string) bool {
	_, ok := s[opt]
	return ok
}

func (s Set) Len() int {
	return len(s)
}

func (s Set) String() string {
	return strings.Join(s.Sorted(), " ")
}

func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// Sorted returns the members in lexicographic order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for o := range s {
		out = append(out, o)
	}
	slices.Sort(out)
	return out
}

// Difference returns the options in a that are not in b.
func Difference(a, b Set) Set {
	out := make(Set)
	for o := range a {
		if !b.Has(o) {
			out.Add(o)
		}
	}
	return out
}
