// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/netdata/optprobe/logger"
	"github.com/netdata/optprobe/pkg/buildinfo"
	"github.com/netdata/optprobe/pkg/cli"
	"github.com/netdata/optprobe/pkg/confopt"
	"github.com/netdata/optprobe/pkg/coverage"
	"github.com/netdata/optprobe/pkg/executable"
	"github.com/netdata/optprobe/pkg/profile"
	"github.com/netdata/optprobe/pkg/report"

	"go.uber.org/automaxprocs/maxprocs"
)

const (
	exitPass  = 0
	exitFail  = 1
	exitError = 2
)

func init() {
	// https://github.com/netdata/netdata/issues/8949#issuecomment-638294959
	if v := os.Getenv("TZ"); strings.HasPrefix(v, ":") {
		_ = os.Unsetenv("TZ")
	}
}

func main() {
	_, _ = maxprocs.Set(maxprocs.Logger(func(s string, args ...interface{}) {}))
	os.Exit(run())
}

func run() int {
	opts, err := cli.Parse(os.Args[1:])
	if err != nil {
		if cli.IsHelp(err) {
			return exitPass
		}
		return exitError
	}

	if opts.Version {
		fmt.Printf("%s, version: %s\n", executable.Name, buildinfo.Version)
		return exitPass
	}

	if lvl := os.Getenv("OPTPROBE_LOG_LEVEL"); lvl != "" {
		logger.Level.SetByName(lvl)
	}
	if opts.Debug {
		logger.Level.Set(slog.LevelDebug)
	}

	switch {
	case opts.List:
		for _, name := range profile.BuiltinNames() {
			fmt.Println(name)
		}
		return exitPass
	case opts.Schema:
		bs, err := profile.Schema()
		if err != nil {
			logger.Errorf("generating schema: %v", err)
			return exitError
		}
		fmt.Println(string(bs))
		return exitPass
	}

	log := logger.New().With("component", "main")
	log.Infof("starting %s (%s)", executable.Name, buildinfo.Info())

	prof, err := loadProfile(opts)
	if err != nil {
		log.Error(err)
		return exitError
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rep, err := coverage.Run(ctx, coverage.Config{
		Profile:    prof,
		Logger:     logger.New(),
		LockDir:    opts.LockDir,
		ScratchDir: opts.ScratchDir,
		DryRun:     opts.DryRun,
	})
	if err != nil {
		log.Errorf("run failed: %v", err)
		return exitError
	}

	if err := report.Write(os.Stdout, rep, opts.Format); err != nil {
		log.Errorf("writing report: %v", err)
		return exitError
	}

	if !rep.Passed() {
		return exitFail
	}
	return exitPass
}

func loadProfile(opts *cli.Option) (*profile.Profile, error) {
	var prof *profile.Profile
	var err error

	if opts.Profile != "" {
		prof, err = profile.Load(opts.Profile)
	} else {
		prof, err = profile.Find(opts.Builtin)
	}
	if err != nil {
		return nil, err
	}

	if len(opts.Set) == 0 && len(opts.Corpus) == 0 && opts.Timeout == 0 {
		return prof, nil
	}

	prof = prof.Clone()
	for _, s := range opts.Set {
		opt, value, err := cli.ParseSet(s)
		if err != nil {
			return nil, err
		}
		if err := prof.SetValue(opt, value); err != nil {
			return nil, err
		}
	}
	prof.Corpus = append(prof.Corpus, opts.Corpus...)
	if opts.Timeout > 0 {
		prof.Timeout = confopt.Duration(opts.Timeout)
	}

	if err := prof.Validate(); err != nil {
		return nil, fmt.Errorf("profile '%s' with command line overrides: %w", prof.Name, err)
	}
	return prof, nil
}
