// SPDX-License-Identifier: GPL-3.0-or-later

package profile

import (
	"errors"
	"fmt"

	"github.com/netdata/optprobe/pkg/matcher"
	"github.com/netdata/optprobe/pkg/option"

	"github.com/blang/semver/v4"
	"github.com/bmatcuk/doublestar/v4"
)

// Validate checks the profile for errors that would only show up mid-run.
func (p *Profile) Validate() error {
	if p.Binary == "" {
		return errors.New("'binary' not set")
	}

	if p.MinVersion != "" {
		if len(p.VersionArgs) == 0 {
			return errors.New("'min_version' requires 'version_args'")
		}
		if _, err := semver.ParseTolerant(p.MinVersion); err != nil {
			return fmt.Errorf("invalid min_version '%s': %v", p.MinVersion, err)
		}
	}

	if _, err := matcher.ParseList(p.Deny); err != nil {
		return fmt.Errorf("deny: %v", err)
	}
	if _, err := matcher.ParseList(p.Companion.Options); err != nil {
		return fmt.Errorf("companion options: %v", err)
	}
	if len(p.Companion.Options) > 0 && len(p.Companion.Args) == 0 {
		return errors.New("companion options set but no companion args")
	}

	for opt, v := range p.Values {
		if name, ok := option.Normalize(opt); !ok || name != opt {
			return fmt.Errorf("values: '%s' is not a normalized option", opt)
		}
		if err := v.validate(); err != nil {
			return fmt.Errorf("values: '%s': %v", opt, err)
		}
	}

	for opt, st := range p.Stage {
		if name, ok := option.Normalize(opt); !ok || name != opt {
			return fmt.Errorf("stage: '%s' is not a normalized option", opt)
		}
		if st.File == "" {
			if v, ok := p.Values[opt]; !ok || !v.IsLiteral() || v.Value == "" {
				return fmt.Errorf("stage: '%s' needs a 'file' or a literal value naming the file", opt)
			}
		}
	}

	if p.Artifact != "" && !doublestar.ValidatePathPattern(p.Artifact) {
		return fmt.Errorf("invalid artifact pattern '%s'", p.Artifact)
	}
	for _, pattern := range p.Corpus {
		if !doublestar.ValidatePathPattern(pattern) {
			return fmt.Errorf("invalid corpus pattern '%s'", pattern)
		}
	}

	for i, cmd := range p.Setup {
		if len(cmd) == 0 || cmd[0] == "" {
			return fmt.Errorf("setup[%d]: empty command", i)
		}
	}

	if p.BaselineKey != "" {
		if _, ok := option.Normalize(p.BaselineKey); !ok {
			return fmt.Errorf("invalid baseline_key '%s'", p.BaselineKey)
		}
	}

	return nil
}
