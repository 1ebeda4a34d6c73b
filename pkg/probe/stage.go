// SPDX-License-Identifier: GPL-3.0-or-later

package probe

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/netdata/optprobe/pkg/profile"
)

const defaultStageMode = 0o644

// stage writes the scratch input an option needs and returns the value to pass
// when none was configured. An existing file is left untouched.
func (p *Prober) stage(opt string, spec profile.StageSpec, value string) (string, error) {
	name := spec.File
	if name == "" {
		name = value
	}
	if value == "" {
		value = name
	}

	path := p.abs(name)

	if _, err := os.Stat(path); err == nil {
		return value, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}

	if top := firstMissingDir(filepath.Dir(path)); top != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return "", err
		}
		p.staged = append(p.staged, top)
	}

	mode := spec.Mode.FileMode()
	if mode == 0 {
		mode = defaultStageMode
	}
	if err := os.WriteFile(path, []byte(spec.Content), mode); err != nil {
		return "", err
	}
	// WriteFile mode is subject to umask; scripts must stay executable
	if err := os.Chmod(path, mode); err != nil {
		return "", err
	}
	p.staged = append(p.staged, path)

	p.Debugf("staged '%s' for option '%s'", path, opt)

	return value, nil
}

func (p *Prober) removeStaged() error {
	var errs []error
	// newest first, files before their directories
	for i := len(p.staged) - 1; i >= 0; i-- {
		if err := os.RemoveAll(p.staged[i]); err != nil {
			errs = append(errs, fmt.Errorf("remove '%s': %v", p.staged[i], err))
		}
	}
	p.staged = nil
	return errors.Join(errs...)
}

func (p *Prober) abs(name string) string {
	if filepath.IsAbs(name) || p.dir == "" {
		return name
	}
	return filepath.Join(p.dir, name)
}

// firstMissingDir returns the outermost ancestor of dir (dir included) that does
// not exist yet, or "" when dir exists.
func firstMissingDir(dir string) string {
	missing := ""
	for {
		if _, err := os.Stat(dir); err == nil {
			return missing
		}
		missing = dir
		parent := filepath.Dir(dir)
		if parent == dir {
			return missing
		}
		dir = parent
	}
}
