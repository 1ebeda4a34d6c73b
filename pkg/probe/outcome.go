// SPDX-License-Identifier: GPL-3.0-or-later

package probe

import (
	"fmt"
	"time"

	"github.com/netdata/optprobe/pkg/ndexec"
)

type Status int

const (
	// StatusNone marks a token that did not normalize to an option; nothing was run.
	StatusNone Status = iota
	StatusSuccess
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusNone:
		return "none"
	case StatusSuccess:
		return "success"
	case StatusSkipped:
		return "skipped-unsupported"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Outcome is the classified result of probing one option.
type Outcome struct {
	Option   string               `json:"option"`
	Status   Status               `json:"status"`
	ExitCode int                  `json:"exit_code"`
	Command  string               `json:"command,omitempty"`
	Stdout   string               `json:"stdout,omitempty"`
	Stderr   string               `json:"stderr,omitempty"`
	Reason   string               `json:"reason,omitempty"`
	Duration time.Duration        `json:"duration_ns,omitempty"`
	Usage    ndexec.ResourceUsage `json:"usage"`
}
