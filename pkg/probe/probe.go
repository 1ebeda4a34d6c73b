// SPDX-License-Identifier: GPL-3.0-or-later

// Package probe runs a tool once with a single option and classifies the result.
package probe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/netdata/optprobe/logger"
	"github.com/netdata/optprobe/pkg/matcher"
	"github.com/netdata/optprobe/pkg/ndexec"
	"github.com/netdata/optprobe/pkg/option"
	"github.com/netdata/optprobe/pkg/profile"
	"github.com/netdata/optprobe/pkg/strmutil"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/text/cases"
)

const excerptLen = 2048

const (
	reasonDenied      = "requires infrastructure not available for probing"
	reasonUnknown     = "rejected as unknown option"
	reasonNoArtifact  = "output artifact not created"
	reasonExitStatus  = "exited with non-zero status"
	reasonStartFailed = "could not be executed"
)

type Config struct {
	Profile *profile.Profile
	Runner  Runner
	// Dir is the scratch directory: staged inputs and relative artifacts live here.
	Dir    string
	Logger *logger.Logger
}

// Prober probes options of a single tool profile. It is not safe for concurrent use.
type Prober struct {
	*logger.Logger

	prof      *profile.Profile
	runner    Runner
	dir       string
	deny      matcher.Matcher
	companion matcher.Matcher
	fold      cases.Caser
	markers   []string

	getpid  func() int
	taskDir string

	staged []string
}

func New(cfg Config) (*Prober, error) {
	if cfg.Profile == nil {
		return nil, errors.New("no profile")
	}
	if cfg.Runner == nil {
		return nil, errors.New("no runner")
	}

	deny, err := matcher.ParseList(cfg.Profile.Deny)
	if err != nil {
		return nil, fmt.Errorf("deny list: %v", err)
	}
	companion, err := matcher.ParseList(cfg.Profile.Companion.Options)
	if err != nil {
		return nil, fmt.Errorf("companion options: %v", err)
	}

	p := &Prober{
		Logger:    cfg.Logger,
		prof:      cfg.Profile,
		runner:    cfg.Runner,
		dir:       cfg.Dir,
		deny:      deny,
		companion: companion,
		fold:      cases.Fold(),
		getpid:    os.Getpid,
		taskDir:   "/proc/self/task",
	}

	for _, m := range cfg.Profile.Unsupported.Markers {
		if m != "" {
			p.markers = append(p.markers, p.fold.String(m))
		}
	}

	return p, nil
}

// Probe runs the tool once with token and classifies the result. Tokens that
// carry an attached value ("--sep=x") are rendered as "opt=value".
// Errors never escape: they are part of the returned Outcome.
func (p *Prober) Probe(ctx context.Context, token string) Outcome {
	opt, ok := option.Normalize(token)
	if !ok {
		return Outcome{Option: token, Status: StatusNone}
	}

	log := p.With("option", opt)

	if p.deny.MatchString(opt) {
		log.Infof("skipping option '%s': %s", opt, reasonDenied)
		return Outcome{Option: opt, Status: StatusSkipped, Reason: reasonDenied}
	}

	value, hasValue, err := p.resolveValue(ctx, opt)
	if err != nil {
		if errors.Is(err, ErrNoValue) {
			log.Infof("skipping option '%s': %v", opt, err)
			return Outcome{Option: opt, Status: StatusSkipped, Reason: err.Error()}
		}
		return p.failed(log, opt, -1, fmt.Sprintf("resolving value: %v", err))
	}
	if hasValue {
		log.Debugf("using value '%s' for option '%s'", value, opt)
	}

	if spec, ok := p.prof.Stage[opt]; ok {
		if value, err = p.stage(opt, spec, value); err != nil {
			return p.failed(log, opt, -1, fmt.Sprintf("staging input: %v", err))
		}
		hasValue = value != ""
	}

	argv := p.command(opt, value, hasValue, option.HasValueSyntax(token))

	if err := p.removeArtifact(); err != nil {
		log.Warningf("removing stale artifact: %v", err)
	}

	res, err := p.runner.Run(ctx, argv...)

	out := Outcome{
		Option:   opt,
		ExitCode: res.ExitCode,
		Command:  res.Command,
		Stdout:   strmutil.Excerpt(res.Stdout, excerptLen),
		Stderr:   strmutil.Excerpt(res.Stderr, excerptLen),
		Duration: res.Duration,
		Usage:    res.Usage,
	}
	if out.Command == "" {
		out.Command = strings.Join(argv, " ")
	}

	if err != nil {
		out.Status = StatusFailed
		out.ExitCode = -1
		out.Reason = fmt.Sprintf("%s: %v", reasonStartFailed, err)
		log.Warningf("option '%s' %s", opt, out.Reason)
		return out
	}

	p.classify(&out, res)

	switch out.Status {
	case StatusSuccess:
		log.Infof("option '%s' ran successfully", opt)
	case StatusSkipped:
		log.Infof("skipping option '%s': %s", opt, out.Reason)
	default:
		log.Warningf("option '%s' failed with exit code %d", opt, out.ExitCode)
	}

	return out
}

func (p *Prober) classify(out *Outcome, res ndexec.Result) {
	if res.ExitCode == 0 {
		if p.prof.Artifact != "" && !p.artifactExists() {
			out.Status = StatusFailed
			out.Reason = reasonNoArtifact
			return
		}
		out.Status = StatusSuccess
		return
	}

	if p.isUnsupported(res) {
		out.Status = StatusSkipped
		out.Reason = reasonUnknown
		return
	}

	out.Status = StatusFailed
	out.Reason = reasonExitStatus
}

func (p *Prober) isUnsupported(res ndexec.Result) bool {
	if slices.Contains(p.prof.Unsupported.ExitCodes, res.ExitCode) {
		return true
	}
	if len(p.markers) == 0 {
		return false
	}
	stderr := p.fold.String(string(res.Stderr))
	for _, m := range p.markers {
		if strings.Contains(stderr, m) {
			return true
		}
	}
	return false
}

func (p *Prober) command(opt, value string, hasValue, attached bool) []string {
	argv := p.prof.Command()
	argv = append(argv, p.prof.FixedArgs...)

	if p.companion.MatchString(opt) {
		argv = append(argv, p.prof.Companion.Args...)
	}

	switch {
	case hasValue && attached:
		argv = append(argv, opt+"="+value)
	case hasValue:
		argv = append(argv, opt, value)
	default:
		argv = append(argv, opt)
	}

	return append(argv, p.prof.Workload...)
}

func (p *Prober) artifactExists() bool {
	matches, err := doublestar.FilepathGlob(p.abs(p.prof.Artifact))
	return err == nil && len(matches) > 0
}

func (p *Prober) removeArtifact() error {
	if p.prof.Artifact == "" {
		return nil
	}
	matches, err := doublestar.FilepathGlob(p.abs(p.prof.Artifact))
	if err != nil {
		return err
	}
	var errs []error
	for _, m := range matches {
		if err := os.RemoveAll(m); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Cleanup removes staged inputs and the artifact left by the last probe.
// Failures are logged, not returned.
func (p *Prober) Cleanup() {
	if err := p.removeStaged(); err != nil {
		p.Warningf("cleanup: %v", err)
	}
	if err := p.removeArtifact(); err != nil {
		p.Warningf("cleanup: removing artifact '%s': %v", filepath.Clean(p.prof.Artifact), err)
	}
}

func (p *Prober) failed(log *logger.Logger, opt string, code int, reason string) Outcome {
	log.Warningf("option '%s' failed: %s", opt, reason)
	return Outcome{Option: opt, Status: StatusFailed, ExitCode: code, Reason: reason}
}
