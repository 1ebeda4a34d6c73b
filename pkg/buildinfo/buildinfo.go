// SPDX-License-Identifier: GPL-3.0-or-later

package buildinfo

import (
	"fmt"
	"runtime"
)

// ProfilesDir is the directory searched for tool profiles referenced by name.
// This value is set during the build process using build flags.
var ProfilesDir = ""

// Info returns a one-line build summary for logs.
func Info() string {
	return fmt.Sprintf("version=%s, go=%s, os=%s, arch=%s", Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
