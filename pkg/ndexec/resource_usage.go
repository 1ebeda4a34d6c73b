// SPDX-License-Identifier: GPL-3.0-or-later

package ndexec

import (
	"os"
	"time"
)

// ResourceUsage holds what the OS reported for a finished process.
type ResourceUsage struct {
	User        time.Duration `json:"user"`
	System      time.Duration `json:"system"`
	MaxRSSBytes int64         `json:"max_rss_bytes,omitempty"`
}

func (u ResourceUsage) CPU() time.Duration {
	return u.User + u.System
}

func extractUsage(ps *os.ProcessState) ResourceUsage {
	if ps == nil {
		return ResourceUsage{}
	}
	return ResourceUsage{
		User:        ps.UserTime(),
		System:      ps.SystemTime(),
		MaxRSSBytes: maxRSS(ps),
	}
}
