// SPDX-License-Identifier: GPL-3.0-or-later

package coverage

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/netdata/optprobe/logger"
	"github.com/netdata/optprobe/pkg/probe"
	"github.com/netdata/optprobe/pkg/profile"

	"github.com/blang/semver/v4"
)

// ErrToolTooOld is returned when the tool is older than the profile's min_version.
var ErrToolTooOld = errors.New("tool version below profile minimum")

// "perf version 6.8.0-rc3.g2a1b", "tool 1.2"
var reVersionCore = regexp.MustCompile(`\d+\.\d+(?:\.\d+)?`)

func parseVersion(output string) (*semver.Version, error) {
	s := reVersionCore.FindString(output)
	if s == "" {
		return nil, fmt.Errorf("no version found in '%s'", output)
	}
	ver, err := semver.ParseTolerant(s)
	if err != nil {
		return nil, err
	}
	return &ver, nil
}

// checkVersion reads the tool version when the profile says how to. The
// version is informational unless min_version is set.
func checkVersion(ctx context.Context, runner probe.Runner, prof *profile.Profile, log *logger.Logger) (string, error) {
	if len(prof.VersionArgs) == 0 {
		return "", nil
	}

	argv := append([]string{prof.Binary}, prof.VersionArgs...)

	res, err := runner.Run(ctx, argv...)
	if err == nil && res.Failed() {
		err = fmt.Errorf("'%s' exited with status %d", res.Command, res.ExitCode)
	}

	var ver *semver.Version
	if err == nil {
		ver, err = parseVersion(string(res.Stdout) + string(res.Stderr))
	}
	if err != nil {
		if prof.MinVersion != "" {
			return "", fmt.Errorf("reading tool version: %w", err)
		}
		log.Warningf("reading tool version: %v", err)
		return "", nil
	}

	log.Infof("tool version %s", ver)

	if prof.MinVersion != "" {
		minVer, err := semver.ParseTolerant(prof.MinVersion)
		if err != nil {
			return "", fmt.Errorf("invalid min_version '%s': %v", prof.MinVersion, err)
		}
		if ver.LT(minVer) {
			return ver.String(), fmt.Errorf("%w: %s < %s", ErrToolTooOld, ver, minVer)
		}
	}

	return ver.String(), nil
}
