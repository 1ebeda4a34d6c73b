// SPDX-License-Identifier: GPL-3.0-or-later

package coverage

import (
	"time"

	"github.com/netdata/optprobe/pkg/option"
	"github.com/netdata/optprobe/pkg/probe"
)

// Report is the result of one run. It is built once at the end of Run and
// not modified afterwards.
type Report struct {
	RunID   string   `json:"run_id"`
	Profile string   `json:"profile"`
	Command []string `json:"command"`
	DryRun  bool     `json:"dry_run,omitempty"`

	// ProfileHash fingerprints the effective profile, --set overrides included,
	// so reports of runs with different settings can be told apart.
	ProfileHash uint64 `json:"profile_hash"`
	ToolVersion string `json:"tool_version,omitempty"`

	Advertised  option.Set `json:"advertised"`
	Covered     option.Set `json:"covered"`
	Untested    option.Set `json:"untested"`
	CorpusFiles int        `json:"corpus_files"`

	// Baseline is set when the run degraded to a single plain invocation.
	Baseline *probe.Outcome `json:"baseline,omitempty"`
	// Outcomes holds one entry per untested option, in sorted option order.
	Outcomes []probe.Outcome `json:"outcomes,omitempty"`

	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
}

// Passed reports the overall result: the baseline exit status when there was
// one, otherwise no probe failed. Skipped options never fail a run.
func (r *Report) Passed() bool {
	if r.Baseline != nil {
		return r.Baseline.Status == probe.StatusSuccess
	}
	return len(r.Failed()) == 0
}

func (r *Report) Failed() []probe.Outcome    { return r.filter(probe.StatusFailed) }
func (r *Report) Skipped() []probe.Outcome   { return r.filter(probe.StatusSkipped) }
func (r *Report) Succeeded() []probe.Outcome { return r.filter(probe.StatusSuccess) }

func (r *Report) filter(status probe.Status) []probe.Outcome {
	var out []probe.Outcome
	for _, o := range r.Outcomes {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return out
}
