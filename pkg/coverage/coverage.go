// SPDX-License-Identifier: GPL-3.0-or-later

// Package coverage reconciles a tool's advertised options with the options a
// corpus already exercises and probes the rest.
package coverage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/netdata/optprobe/logger"
	"github.com/netdata/optprobe/pkg/filelock"
	"github.com/netdata/optprobe/pkg/ndexec"
	"github.com/netdata/optprobe/pkg/option"
	"github.com/netdata/optprobe/pkg/optscan"
	"github.com/netdata/optprobe/pkg/probe"
	"github.com/netdata/optprobe/pkg/profile"
	"github.com/netdata/optprobe/pkg/strmutil"

	"github.com/gohugoio/hashstructure"
	"github.com/google/uuid"
)

// lockName is shared by all profiles: they may use the same fixed artifact paths.
const lockName = "run"

const excerptLen = 2048

type Config struct {
	Profile *profile.Profile
	// Runner executes every command of the run. Nil means child processes
	// started in the scratch directory with the profile timeout.
	Runner probe.Runner
	Logger *logger.Logger

	// LockDir holds the run lock file; empty means the system temp directory.
	LockDir string
	// ScratchDir is the parent of the per-run working directory that holds
	// staged inputs and setup outputs. Empty means the system temp directory.
	// The per-run directory is removed when the run ends.
	ScratchDir string
	// DryRun stops after reconciliation: nothing is set up or probed.
	DryRun bool
	// CorpusConcurrency bounds parallel corpus file reads.
	CorpusConcurrency int
}

// Run performs one complete run. Per-option problems are part of the report;
// an error means the run itself could not be carried out.
func Run(ctx context.Context, cfg Config) (*Report, error) {
	prof := cfg.Profile
	if prof == nil {
		return nil, errors.New("no profile")
	}

	log := cfg.Logger.With("component", "coverage", "tool", prof.Name)

	var err error
	rep := &Report{
		RunID:     uuid.NewString(),
		Profile:   prof.Name,
		Command:   prof.Command(),
		DryRun:    cfg.DryRun,
		StartedAt: time.Now(),
	}

	if rep.ProfileHash, err = hashstructure.Hash(prof, nil); err != nil {
		log.Warningf("hashing profile: %v", err)
	}

	log.Infof("run %s started", rep.RunID)

	locker := filelock.New(cfg.LockDir)
	if err := locker.Lock(lockName); err != nil {
		return nil, err
	}
	defer locker.UnlockAll()

	scratch, removeScratch, err := scratchDir(cfg.ScratchDir)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := removeScratch(); err != nil {
			log.Warningf("removing scratch directory '%s': %v", scratch, err)
		}
	}()

	runner := cfg.Runner
	if runner == nil {
		runner = probe.NewExecRunner(scratch, prof.Timeout.Duration(), log)
	}

	if rep.ToolVersion, err = checkVersion(ctx, runner, prof, log); err != nil {
		return nil, err
	}

	helpText, err := readHelp(ctx, runner, prof)
	if err != nil {
		return nil, err
	}

	advertised := optscan.Advertised(helpText)
	attached := optscan.Attached(helpText)
	log.Infof("advertised options (%d): %s", advertised.Len(), advertised)

	loader := optscan.CorpusLoader{Logger: log, Concurrency: cfg.CorpusConcurrency}
	corpus, err := loader.Load(ctx, prof.Corpus)
	if err != nil {
		return nil, err
	}
	if len(corpus.Files) == 0 && len(prof.Corpus) > 0 {
		log.Warning("corpus is empty, covered options set will be empty")
	}

	covered := optscan.Covered(corpus.Text, prof.Keyword)
	log.Infof("covered options (%d): %s", covered.Len(), covered)

	untested := option.Difference(advertised, covered)
	log.Infof("untested options (%d): %s", untested.Len(), untested)

	rep.Advertised = advertised
	rep.Covered = covered
	rep.Untested = untested
	rep.CorpusFiles = len(corpus.Files)

	if cfg.DryRun {
		rep.Duration = time.Since(rep.StartedAt)
		return rep, nil
	}

	if err := runSetup(ctx, runner, prof); err != nil {
		return nil, err
	}

	switch {
	case untested.Len() == 0:
		log.Info("no untested options, running a plain invocation")
		rep.Baseline = runBaseline(ctx, runner, prof)
	case !prof.Configured():
		log.Info("no option values configured, running a plain invocation")
		rep.Baseline = runBaseline(ctx, runner, prof)
	default:
		outcomes, err := probeAll(ctx, runner, prof, scratch, log, untested, attached)
		if err != nil {
			return nil, err
		}
		rep.Outcomes = outcomes
	}

	if rep.Baseline != nil {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run interrupted during plain invocation: %w", err)
		}
	}

	rep.Duration = time.Since(rep.StartedAt)

	logSummary(log, rep)

	return rep, nil
}

// probeAll probes every untested option exactly once, in sorted order.
func probeAll(ctx context.Context, runner probe.Runner, prof *profile.Profile, dir string, log *logger.Logger,
	untested, attached option.Set) ([]probe.Outcome, error) {

	prober, err := probe.New(probe.Config{
		Profile: prof,
		Runner:  runner,
		Dir:     dir,
		Logger:  log,
	})
	if err != nil {
		return nil, err
	}
	defer prober.Cleanup()

	opts := untested.Sorted()
	outcomes := make([]probe.Outcome, 0, len(opts))

	for i, opt := range opts {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run interrupted after %d of %d options: %w", i, len(opts), err)
		}

		token := opt
		if attached.Has(opt) {
			token += "="
		}

		log.Debugf("testing option %s (%d/%d)", opt, i+1, len(opts))
		outcomes = append(outcomes, prober.Probe(ctx, token))

		// a probe killed by cancellation is not a verdict on the option
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run interrupted while testing option %s (%d of %d): %w", opt, i+1, len(opts), err)
		}
	}

	return outcomes, nil
}

func readHelp(ctx context.Context, runner probe.Runner, prof *profile.Profile) (string, error) {
	res, err := runner.Run(ctx, prof.HelpCommand()...)
	if err != nil {
		return "", fmt.Errorf("reading help text: %w", err)
	}

	// exit status is ignored: some tools exit non-zero after printing usage
	text := string(res.Stdout)
	if strings.TrimSpace(text) == "" {
		text = string(res.Stderr)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("reading help text: '%s' printed nothing (exit status %d)", res.Command, res.ExitCode)
	}
	return text, nil
}

func runSetup(ctx context.Context, runner probe.Runner, prof *profile.Profile) error {
	for _, argv := range prof.Setup {
		res, err := runner.Run(ctx, argv...)
		if err != nil {
			return fmt.Errorf("setup: %w", err)
		}
		if res.Failed() {
			return fmt.Errorf("setup: '%s' exited with status %d: %s",
				res.Command, res.ExitCode, strmutil.Excerpt(res.Stderr, excerptLen))
		}
	}
	return nil
}

func runBaseline(ctx context.Context, runner probe.Runner, prof *profile.Profile) *probe.Outcome {
	argv := prof.BaselineCommand()

	res, err := runner.Run(ctx, argv...)

	out := baselineOutcome(res)
	if out.Command == "" {
		out.Command = strings.Join(argv, " ")
	}

	switch {
	case err != nil:
		out.Status = probe.StatusFailed
		out.ExitCode = -1
		out.Reason = err.Error()
	case res.Failed():
		out.Status = probe.StatusFailed
		out.Reason = "plain invocation exited with non-zero status"
	default:
		out.Status = probe.StatusSuccess
	}

	return &out
}

func baselineOutcome(res ndexec.Result) probe.Outcome {
	return probe.Outcome{
		ExitCode: res.ExitCode,
		Command:  res.Command,
		Stdout:   strmutil.Excerpt(res.Stdout, excerptLen),
		Stderr:   strmutil.Excerpt(res.Stderr, excerptLen),
		Duration: res.Duration,
		Usage:    res.Usage,
	}
}

func logSummary(log *logger.Logger, rep *Report) {
	if b := rep.Baseline; b != nil {
		if b.Status == probe.StatusSuccess {
			log.Infof("plain invocation succeeded: %s", b.Command)
		} else {
			log.Errorf("plain invocation failed with exit code %d: %s", b.ExitCode, b.Stderr)
		}
		return
	}

	if skipped := rep.Skipped(); len(skipped) > 0 {
		names := make([]string, 0, len(skipped))
		for _, o := range skipped {
			names = append(names, o.Option)
		}
		log.Infof("unsupported options skipped: %s", strings.Join(names, ", "))
	}

	failed := rep.Failed()
	if len(failed) == 0 {
		log.Infof("all %d probed options passed", len(rep.Outcomes))
		return
	}

	log.Error("failed options and their exit codes:")
	for _, o := range failed {
		log.Errorf("  %s -> %d: %s", o.Option, o.ExitCode, strmutil.FirstLine(o.Stderr))
	}
	log.Errorf("%d options failed", len(failed))
}

func scratchDir(parent string) (string, func() error, error) {
	if parent != "" {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return "", nil, fmt.Errorf("scratch directory: %v", err)
		}
	}

	dir, err := os.MkdirTemp(parent, "optprobe-*")
	if err != nil {
		return "", nil, fmt.Errorf("scratch directory: %v", err)
	}
	return dir, func() error { return os.RemoveAll(dir) }, nil
}
