// SPDX-License-Identifier: GPL-3.0-or-later

// Package optscan collects option tokens from help text and from a corpus of
// existing tool usages.
package optscan

import (
	"regexp"
	"strings"

	"github.com/netdata/optprobe/pkg/option"
)

var (
	reHelpToken   = regexp.MustCompile(`^-{1,2}[A-Za-z0-9]`)
	reCorpusToken = regexp.MustCompile(`-{1,2}[a-zA-Z0-9][\w-]*`)
)

// Advertised returns the options a tool lists in its help text.
// Blank lines and separator lines made only of dashes are ignored.
func Advertised(helpText string) option.Set {
	opts := option.NewSet()
	scanHelp(helpText, func(_, opt string) {
		opts.Add(opt)
	})
	return opts
}

// Attached returns the advertised options whose help entry shows an attached
// value, e.g. "--field-separator=<sep>". Such options are probed as "opt=value".
func Attached(helpText string) option.Set {
	opts := option.NewSet()
	scanHelp(helpText, func(tok, opt string) {
		if option.HasValueSyntax(tok) {
			opts.Add(opt)
		}
	})
	return opts
}

func scanHelp(helpText string, fn func(tok, opt string)) {
	for line := range strings.Lines(helpText) {
		line = strings.TrimSpace(line)
		if line == "" || isSeparator(line) {
			continue
		}
		for _, tok := range strings.Fields(line) {
			if !reHelpToken.MatchString(tok) {
				continue
			}
			if opt, ok := option.Normalize(tok); ok {
				fn(tok, opt)
			}
		}
	}
}

// Covered returns the options found on corpus lines that contain keyword.
// An empty keyword selects every line.
//
// The extraction is a heuristic: it misses options passed through variables
// and picks up stray dashes inside unrelated words.
func Covered(corpus, keyword string) option.Set {
	opts := option.NewSet()

	for line := range strings.Lines(corpus) {
		if !strings.Contains(line, keyword) {
			continue
		}
		for _, tok := range reCorpusToken.FindAllString(line, -1) {
			if opt, ok := option.Normalize(tok); ok {
				opts.Add(opt)
			}
		}
	}

	return opts
}

func isSeparator(line string) bool {
	return strings.Trim(line, "-") == ""
}
