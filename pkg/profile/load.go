// SPDX-License-Identifier: GPL-3.0-or-later

package profile

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/netdata/optprobe/logger"
	"github.com/netdata/optprobe/pkg/buildinfo"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v2"
)

// ErrUnknownProfile is returned when a named profile is neither a file in the
// profiles directory nor built in.
var ErrUnknownProfile = errors.New("unknown profile")

var log = logger.New().With("component", "profile")

//go:embed profiles/*.yaml
var builtinFS embed.FS

// Load reads, defaults and validates a profile file.
func Load(filename string) (*Profile, error) {
	filename, err := homedir.Expand(filename)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	prof, err := Parse(content)
	if err != nil {
		return nil, fmt.Errorf("profile '%s': %w", filename, err)
	}

	prof.SourceFile, _ = filepath.Abs(filename)
	if prof.Name == "" {
		prof.Name = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	}

	return prof, nil
}

// Parse decodes, defaults and validates a profile document.
func Parse(content []byte) (*Profile, error) {
	var prof Profile
	if err := yaml.Unmarshal(content, &prof); err != nil {
		return nil, err
	}

	prof.applyDefaults()

	if err := prof.Validate(); err != nil {
		return nil, err
	}
	return &prof, nil
}

// Builtin returns a copy of an embedded profile.
func Builtin(name string) (*Profile, error) {
	content, err := builtinFS.ReadFile(path.Join("profiles", name+".yaml"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: '%s'", ErrUnknownProfile, name)
		}
		return nil, err
	}

	prof, err := Parse(content)
	if err != nil {
		return nil, fmt.Errorf("builtin profile '%s': %w", name, err)
	}
	if prof.Name == "" {
		prof.Name = name
	}
	prof.SourceFile = "builtin:" + name

	return prof, nil
}

// BuiltinNames lists the embedded profiles in sorted order.
func BuiltinNames() []string {
	entries, err := builtinFS.ReadDir("profiles")
	if err != nil {
		return nil
	}

	var names []string
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".yaml"); ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)

	return names
}

// Find resolves a profile by name. A file "<name>.yaml" in the profiles
// directory takes precedence over the built-in profile of the same name.
func Find(name string) (*Profile, error) {
	if dir := buildinfo.ProfilesDir; dir != "" {
		for _, ext := range []string{".yaml", ".yml"} {
			filename := filepath.Join(dir, name+ext)
			if _, err := os.Stat(filename); err == nil {
				log.Debugf("using profile '%s' from '%s'", name, filename)
				return Load(filename)
			}
		}
	}
	return Builtin(name)
}
