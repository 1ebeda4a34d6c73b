// SPDX-License-Identifier: GPL-3.0-or-later

package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := map[string]struct {
		line     string
		match    []string
		notMatch []string
		wantErr  bool
	}{
		"bare exact option": {
			line:     "--bpf",
			match:    []string{"--bpf"},
			notMatch: []string{"--bpf-counters", "-b"},
		},
		"bare glob substring": {
			line:     "*cgroup*",
			match:    []string{"--cgroup", "--for-each-cgroup"},
			notMatch: []string{"--bpf"},
		},
		"short string": {
			line:     "= -S",
			match:    []string{"-S"},
			notMatch: []string{"-s"},
		},
		"short glob": {
			line:     "* --bpf*",
			match:    []string{"--bpf", "--bpf-prog"},
			notMatch: []string{"-b"},
		},
		"short regexp": {
			line:     "~ ^--(vm|k)",
			match:    []string{"--vmlinux", "--kcore"},
			notMatch: []string{"--snapshot"},
		},
		"long regexp": {
			line:     "regexp:smi-cost|interval-clear",
			match:    []string{"--smi-cost", "--interval-clear"},
			notMatch: []string{"--interval-print"},
		},
		"long string": {
			line:     "string:--gtk",
			match:    []string{"--gtk"},
			notMatch: []string{"--gtk2"},
		},
		"negation": {
			line:     "!*cgroup*",
			match:    []string{"--bpf"},
			notMatch: []string{"--cgroup"},
		},
		"empty":            {line: "", wantErr: true},
		"empty after neg":  {line: "!* ", wantErr: true},
		"invalid regexp":   {line: "~ (", wantErr: true},
		"invalid glob":     {line: "--[a", wantErr: true},
		"regexp plain str": {line: "~ ^--pid$", match: []string{"--pid"}, notMatch: []string{"--pidx"}},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			m, err := Parse(test.line)

			if test.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			for _, s := range test.match {
				assert.Truef(t, m.MatchString(s), "expected %q to match %q", test.line, s)
				assert.Truef(t, m.Match([]byte(s)), "expected %q to match %q", test.line, s)
			}
			for _, s := range test.notMatch {
				assert.Falsef(t, m.MatchString(s), "expected %q not to match %q", test.line, s)
			}
		})
	}
}

func TestParseList(t *testing.T) {
	m, err := ParseList([]string{"*cgroup*", "--bpf", "~ ^--vmlinux$"})
	require.NoError(t, err)

	assert.True(t, m.MatchString("--for-each-cgroup"))
	assert.True(t, m.MatchString("--bpf"))
	assert.True(t, m.MatchString("--vmlinux"))
	assert.False(t, m.MatchString("--bpf-prog"))

	empty, err := ParseList(nil)
	require.NoError(t, err)
	assert.False(t, empty.MatchString("--anything"))

	_, err = ParseList([]string{"--ok", "~ ("})
	assert.Error(t, err)
}

func TestMust(t *testing.T) {
	assert.Panics(t, func() { Must("") })
	assert.NotPanics(t, func() { Must("--x") })
}

func TestLogical(t *testing.T) {
	a := Must("= a")
	b := Must("= b")

	assert.True(t, Or(a, b).MatchString("b"))
	assert.False(t, Or(a, b).MatchString("c"))
	assert.True(t, Not(a).MatchString("b"))
	assert.True(t, Not(Not(a)).MatchString("a"))
	assert.Equal(t, FALSE(), Not(TRUE()))
	assert.Equal(t, a, Or(FALSE(), a))
	assert.Equal(t, TRUE(), Or(a, TRUE()))
	assert.Equal(t, FALSE(), Or())
}
