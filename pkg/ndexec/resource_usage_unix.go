// SPDX-License-Identifier: GPL-3.0-or-later

//go:build !windows

package ndexec

import (
	"os"
	"runtime"
	"syscall"
)

// maxRSS returns the peak resident set size in bytes. Darwin reports bytes,
// the other unixes KiB.
func maxRSS(ps *os.ProcessState) int64 {
	ru, ok := ps.SysUsage().(*syscall.Rusage)
	if !ok || ru == nil {
		return 0
	}
	if runtime.GOOS == "darwin" || runtime.GOOS == "ios" {
		return int64(ru.Maxrss)
	}
	return int64(ru.Maxrss) * 1024
}
