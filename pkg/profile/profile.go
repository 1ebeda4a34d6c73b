// SPDX-License-Identifier: GPL-3.0-or-later

// Package profile describes how to discover and probe the options of one tool.
package profile

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/netdata/optprobe/pkg/confopt"
	"github.com/netdata/optprobe/pkg/option"
)

const (
	defaultUnknownExitCode = 129
	defaultUnknownMarker   = "unknown option"
)

// Profile is a tool profile (e.g. "perf stat"): where its help text and
// corpus come from and how each untested option is probed.
type Profile struct {
	SourceFile string `yaml:"-" hash:"ignore"`

	Name        string `yaml:"name"`
	Description string `yaml:"description"`

	Binary     string   `yaml:"binary" jsonschema:"required"`
	Subcommand []string `yaml:"subcommand"`
	HelpArgs   []string `yaml:"help_args"`

	// VersionArgs are passed to the binary alone, e.g. "perf --version".
	VersionArgs []string `yaml:"version_args"`
	MinVersion  string   `yaml:"min_version"`

	// Keyword selects corpus lines that invoke the tool, e.g. "perf stat".
	Keyword string   `yaml:"keyword"`
	Corpus  []string `yaml:"corpus"`

	FixedArgs []string         `yaml:"fixed_args"`
	Workload  []string         `yaml:"workload"`
	Timeout   confopt.Duration `yaml:"timeout"`

	Deny        []string    `yaml:"deny"`
	Unsupported Unsupported `yaml:"unsupported"`
	Companion   Companion   `yaml:"companion"`

	Values map[string]ValueSpec `yaml:"values"`
	Stage  map[string]StageSpec `yaml:"stage"`

	Artifact    string     `yaml:"artifact"`
	Setup       [][]string `yaml:"setup"`
	BaselineKey string     `yaml:"baseline_key"`
}

type (
	// Unsupported tells how the tool rejects an option it does not know.
	Unsupported struct {
		ExitCodes []int    `yaml:"exit_codes"`
		Markers   []string `yaml:"markers"`
	}
	// Companion arguments are added for options that only work next to them,
	// e.g. "-e cycles" for "--metric-only".
	Companion struct {
		Args    []string `yaml:"args"`
		Options []string `yaml:"options"`
	}
	// StageSpec is a scratch input file written before an option is probed.
	StageSpec struct {
		File    string           `yaml:"file"`
		Content string           `yaml:"content"`
		Mode    confopt.FileMode `yaml:"mode"`
	}
)

// Command returns binary followed by the subcommand.
func (p *Profile) Command() []string {
	return append([]string{p.Binary}, p.Subcommand...)
}

// HelpCommand returns the argv that prints the advertised options.
func (p *Profile) HelpCommand() []string {
	return append(p.Command(), p.HelpArgs...)
}

// BaselineCommand returns the plain invocation used when there is nothing to probe.
func (p *Profile) BaselineCommand() []string {
	argv := append(p.Command(), p.FixedArgs...)
	return append(argv, p.Workload...)
}

// Configured reports whether option level guidance was supplied.
// With a baseline key set only that key counts, otherwise any value does.
func (p *Profile) Configured() bool {
	if p.BaselineKey != "" {
		_, ok := p.Values[p.BaselineKey]
		return ok
	}
	return len(p.Values) > 0
}

// SetValue sets a literal value for opt, replacing any configured spec.
func (p *Profile) SetValue(opt, value string) error {
	name, ok := option.Normalize(opt)
	if !ok {
		return fmt.Errorf("invalid option '%s'", opt)
	}
	if p.Values == nil {
		p.Values = make(map[string]ValueSpec)
	}
	p.Values[name] = ValueSpec{Value: value}
	return nil
}

func (p *Profile) applyDefaults() {
	if p.HelpArgs == nil {
		p.HelpArgs = []string{"--help"}
	}
	if p.Keyword == "" && p.Binary != "" {
		p.Keyword = strings.Join(p.Command(), " ")
	}
	if p.Unsupported.ExitCodes == nil {
		p.Unsupported.ExitCodes = []int{defaultUnknownExitCode}
	}
	if p.Unsupported.Markers == nil {
		p.Unsupported.Markers = []string{defaultUnknownMarker}
	}
}

// Clone returns a deep enough copy for callers that modify values.
func (p *Profile) Clone() *Profile {
	cp := *p
	cp.Values = maps.Clone(p.Values)
	cp.Stage = maps.Clone(p.Stage)
	cp.Corpus = slices.Clone(p.Corpus)
	return &cp
}
