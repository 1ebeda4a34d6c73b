// SPDX-License-Identifier: GPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/netdata/optprobe/pkg/executable"

	"github.com/jessevdk/go-flags"
)

// Option defines command line options.
type Option struct {
	Profile    string        `short:"p" long:"profile" value-name:"FILE" description:"tool profile file"`
	Builtin    string        `short:"b" long:"builtin" value-name:"NAME" description:"installed or built-in profile name"`
	List       bool          `short:"l" long:"list" description:"list built-in profiles and exit"`
	Schema     bool          `long:"schema" description:"print the profile JSON schema and exit"`
	Set        []string      `long:"set" value-name:"OPT=VALUE" description:"value to use for an option, use --set=OPT=VALUE when OPT starts with a dash (repeatable)"`
	Corpus     []string      `short:"c" long:"corpus" value-name:"PATTERN" description:"additional corpus glob pattern (repeatable)"`
	Timeout    time.Duration `short:"t" long:"timeout" description:"per command timeout, overrides the profile"`
	Format     string        `short:"f" long:"format" choice:"text" choice:"json" default:"text" description:"report format"`
	DryRun     bool          `short:"n" long:"dry-run" description:"reconcile only, do not probe"`
	LockDir    string        `long:"lock-dir" value-name:"DIR" description:"run lock directory"`
	ScratchDir string        `long:"scratch-dir" value-name:"DIR" description:"parent of the per-run working directory (default: system temp dir)"`
	Debug      bool          `short:"d" long:"debug" description:"debug mode"`
	Version    bool          `short:"v" long:"version" description:"display the version and exit"`
}

// Parse returns parsed command-line flags in Option struct
func Parse(args []string) (*Option, error) {
	opt := &Option{}
	parser := flags.NewParser(opt, flags.Default)
	parser.Name = executable.Name
	parser.Usage = "[OPTIONS] (-p FILE | -b NAME)"

	rest, err := parser.ParseArgs(args)
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(rest, " "))
	}
	if err := opt.validate(); err != nil {
		return nil, err
	}
	return opt, nil
}

// IsHelp reports whether err is the help request of the parser.
func IsHelp(err error) bool {
	return flags.WroteHelp(err)
}

func (o *Option) validate() error {
	if o.Version || o.List || o.Schema {
		return nil
	}
	switch {
	case o.Profile == "" && o.Builtin == "":
		return errors.New("one of --profile or --builtin is required")
	case o.Profile != "" && o.Builtin != "":
		return errors.New("--profile and --builtin are mutually exclusive")
	case o.Timeout < 0:
		return errors.New("--timeout must not be negative")
	}
	for _, s := range o.Set {
		if _, _, err := ParseSet(s); err != nil {
			return err
		}
	}
	return nil
}

// ParseSet splits an OPT=VALUE pair at the first '='. The value may be empty
// and may itself contain '='.
func ParseSet(s string) (opt, value string, err error) {
	opt, value, ok := strings.Cut(s, "=")
	opt = strings.TrimSpace(opt)
	if !ok || opt == "" {
		return "", "", fmt.Errorf("invalid --set '%s': want OPT=VALUE", s)
	}
	return opt, value, nil
}
