// SPDX-License-Identifier: GPL-3.0-or-later

package executable

import (
	"os"
	"path/filepath"
	"strings"
)

// Name is the base name of the running binary. Test binaries report "test".
var Name = detectName()

func detectName() string {
	path, err := os.Executable()
	if err != nil || path == "" {
		return "optprobe"
	}

	name := strings.TrimSuffix(filepath.Base(path), ".exe")
	if strings.HasSuffix(name, ".test") {
		return "test"
	}
	return name
}
