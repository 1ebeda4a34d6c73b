// SPDX-License-Identifier: GPL-3.0-or-later

package probe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/netdata/optprobe/pkg/profile"
)

// ErrNoValue is returned by a generator that found nothing to offer on this
// system, e.g. no TopdownL1 metric group. The option is then skipped.
var ErrNoValue = errors.New("no value available")

const metricGroupsHeader = "Metric Groups"

// resolveValue returns the value for opt: a configured literal first, then a
// generator. ok is false when the option is probed bare.
func (p *Prober) resolveValue(ctx context.Context, opt string) (value string, ok bool, err error) {
	spec, found := p.prof.Values[opt]
	if !found {
		return "", false, nil
	}

	switch spec.Generator {
	case "":
		return spec.Value, spec.Value != "", nil
	case profile.GeneratorPID:
		return strconv.Itoa(p.getpid()), true, nil
	case profile.GeneratorTID:
		return p.firstTID(), true, nil
	case profile.GeneratorMetricGroup:
		v, err := p.metricGroup(ctx, spec)
		if err != nil {
			return "", false, err
		}
		return v, true, nil
	default:
		return "", false, fmt.Errorf("unknown generator '%s'", spec.Generator)
	}
}

func (p *Prober) firstTID() string {
	entries, err := os.ReadDir(p.taskDir)
	if err != nil || len(entries) == 0 {
		return strconv.Itoa(p.getpid())
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	slices.Sort(names)
	return names[0]
}

// metricGroup runs the query (e.g. "perf list metricgroup") and returns the
// first listed group, optionally the first one matching spec.Match.
func (p *Prober) metricGroup(ctx context.Context, spec profile.ValueSpec) (string, error) {
	var re *regexp.Regexp
	if spec.Match != "" {
		var err error
		if re, err = regexp.Compile(spec.Match); err != nil {
			return "", err
		}
	}

	res, err := p.runner.Run(ctx, spec.Query...)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoValue, err)
	}
	if res.Failed() {
		return "", fmt.Errorf("%w: '%s' exited with status %d", ErrNoValue, res.Command, res.ExitCode)
	}

	for line := range strings.Lines(string(res.Stdout)) {
		line = strings.TrimSpace(line)
		if line == "" || strings.Contains(line, metricGroupsHeader) {
			continue
		}
		if re != nil && !re.MatchString(line) {
			continue
		}
		return strings.TrimSuffix(strings.Fields(line)[0], ":"), nil
	}

	if re != nil {
		return "", fmt.Errorf("%w: no metric group matches '%s'", ErrNoValue, spec.Match)
	}
	return "", fmt.Errorf("%w: no metric groups listed", ErrNoValue)
}
