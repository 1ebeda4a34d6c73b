// SPDX-License-Identifier: GPL-3.0-or-later

package coverage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/netdata/optprobe/pkg/filelock"
	"github.com/netdata/optprobe/pkg/ndexec"
	"github.com/netdata/optprobe/pkg/probe"
	"github.com/netdata/optprobe/pkg/profile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTool answers help, setup and probe invocations of a tool named "tool".
type fakeTool struct {
	help         string
	helpToStderr bool
	version      string
	setupCode    int
	exit         func(argv []string) (int, string)
	startErr     error

	calls [][]string
}

func (f *fakeTool) Run(ctx context.Context, argv ...string) (ndexec.Result, error) {
	f.calls = append(f.calls, argv)
	res := ndexec.Result{Command: strings.Join(argv, " ")}

	switch {
	case slices.Contains(argv, "--help"):
		if f.helpToStderr {
			res.Stderr = []byte(f.help)
		} else {
			res.Stdout = []byte(f.help)
		}
	case slices.Contains(argv, "--version"):
		res.Stdout = []byte(f.version)
	case argv[0] == "setup":
		res.ExitCode = f.setupCode
	case f.startErr != nil:
		return res, f.startErr
	case f.exit != nil:
		code, stderr := f.exit(argv)
		res.ExitCode, res.Stderr = code, []byte(stderr)
	}
	return res, nil
}

// probes returns the option and baseline invocations.
func (f *fakeTool) probes() [][]string {
	var out [][]string
	for _, argv := range f.calls {
		if !slices.Contains(argv, "--help") && !slices.Contains(argv, "--version") && argv[0] != "setup" {
			out = append(out, argv)
		}
	}
	return out
}

func exitOn(opt string, code int, stderr string) func([]string) (int, string) {
	return func(argv []string) (int, string) {
		if slices.Contains(argv, opt) {
			return code, stderr
		}
		return 0, ""
	}
}

func newTestConfig(t *testing.T, tool *fakeTool, corpus string) Config {
	dir := t.TempDir()
	if corpus != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "test.sh"), []byte(corpus), 0o644))
	}

	prof := &profile.Profile{
		Name:        "tool-stat",
		Binary:      "tool",
		Subcommand:  []string{"stat"},
		HelpArgs:    []string{"--help"},
		Keyword:     "tool stat",
		Corpus:      []string{filepath.Join(dir, "*.sh")},
		Workload:    []string{"sleep", "1"},
		Unsupported: profile.Unsupported{ExitCodes: []int{129}, Markers: []string{"unknown option"}},
		Values:      map[string]profile.ValueSpec{"--c": {Value: "1"}},
	}

	return Config{
		Profile:    prof,
		Runner:     tool,
		LockDir:    t.TempDir(),
		ScratchDir: t.TempDir(),
	}
}

func TestRun_EndToEnd(t *testing.T) {
	tool := &fakeTool{help: "-a -b --c=1"}
	cfg := newTestConfig(t, tool, "tool stat -a true\n")

	rep, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, []string{"--c", "-a", "-b"}, rep.Advertised.Sorted())
	assert.Equal(t, []string{"-a"}, rep.Covered.Sorted())
	assert.Equal(t, []string{"--c", "-b"}, rep.Untested.Sorted())
	assert.Equal(t, 1, rep.CorpusFiles)
	assert.Nil(t, rep.Baseline)
	assert.NotEmpty(t, rep.RunID)

	require.Len(t, rep.Outcomes, 2)
	assert.Equal(t, "--c", rep.Outcomes[0].Option)
	assert.Equal(t, "-b", rep.Outcomes[1].Option)
	assert.Len(t, rep.Succeeded(), 2)
	assert.True(t, rep.Passed())

	assert.Equal(t, [][]string{
		{"tool", "stat", "--c=1", "sleep", "1"},
		{"tool", "stat", "-b", "sleep", "1"},
	}, tool.probes())
}

func TestRun_SentinelMeansSkipped(t *testing.T) {
	tool := &fakeTool{
		help: "-a -b --c --d",
		exit: func([]string) (int, string) { return 129, "usage: tool stat" },
	}
	cfg := newTestConfig(t, tool, "")

	rep, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	require.Len(t, rep.Outcomes, 4)
	assert.Len(t, rep.Skipped(), 4)
	assert.Empty(t, rep.Failed())
	assert.True(t, rep.Passed())
}

func TestRun_SingleFailure(t *testing.T) {
	tool := &fakeTool{
		help: "-a --bar --foo --baz",
		exit: exitOn("--foo", 2, "something went wrong"),
	}
	cfg := newTestConfig(t, tool, "")

	rep, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	failed := rep.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "--foo", failed[0].Option)
	assert.Equal(t, 2, failed[0].ExitCode)
	assert.Equal(t, "something went wrong", failed[0].Stderr)
	assert.False(t, rep.Passed())

	// a failure does not stop the loop
	assert.Len(t, rep.Outcomes, 4)
	assert.Len(t, rep.Succeeded(), 3)
}

func TestRun_ProbesEachOptionOnceInOrder(t *testing.T) {
	tool := &fakeTool{help: "--zeta -b --alpha -B -b --alpha"}
	cfg := newTestConfig(t, tool, "")

	rep, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	var probed []string
	for _, argv := range tool.probes() {
		probed = append(probed, argv[2])
	}
	assert.Equal(t, []string{"--alpha", "--zeta", "-B", "-b"}, probed)
	assert.Len(t, rep.Outcomes, 4)
}

func TestRun_DeniedOptionsAreSkipped(t *testing.T) {
	tool := &fakeTool{help: "--cgroup --bpf-counters -a"}
	cfg := newTestConfig(t, tool, "")
	cfg.Profile.Deny = []string{"*cgroup*", "*bpf*"}

	rep, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	assert.Len(t, rep.Skipped(), 2)
	assert.Equal(t, [][]string{{"tool", "stat", "-a", "sleep", "1"}}, tool.probes())
	assert.True(t, rep.Passed())
}

func TestRun_Baseline(t *testing.T) {
	tests := map[string]struct {
		help       string
		corpus     string
		prepare    func(*profile.Profile)
		exit       func([]string) (int, string)
		wantPassed bool
	}{
		"nothing untested": {
			help:       "-a -b",
			corpus:     "tool stat -a -b\n",
			wantPassed: true,
		},
		"no values configured": {
			help:       "-a -b",
			prepare:    func(p *profile.Profile) { p.Values = nil },
			wantPassed: true,
		},
		"baseline key missing": {
			help: "-a -b --affinity",
			prepare: func(p *profile.Profile) {
				p.BaselineKey = "--affinity"
			},
			wantPassed: true,
		},
		"baseline fails": {
			help:       "-a",
			corpus:     "tool stat -a\n",
			exit:       func([]string) (int, string) { return 1, "no permission" },
			wantPassed: false,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			tool := &fakeTool{help: test.help, exit: test.exit}
			cfg := newTestConfig(t, tool, test.corpus)
			cfg.Profile.FixedArgs = []string{"-o", "out.data"}
			if test.prepare != nil {
				test.prepare(cfg.Profile)
			}

			rep, err := Run(context.Background(), cfg)
			require.NoError(t, err)

			require.NotNil(t, rep.Baseline)
			assert.Empty(t, rep.Outcomes)
			assert.Equal(t, test.wantPassed, rep.Passed())
			assert.Equal(t, [][]string{{"tool", "stat", "-o", "out.data", "sleep", "1"}}, tool.probes())
		})
	}
}

func TestRun_BaselineStartFailure(t *testing.T) {
	tool := &fakeTool{help: "-a", startErr: errors.New("exec: not found")}
	cfg := newTestConfig(t, tool, "tool stat -a\n")

	rep, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	require.NotNil(t, rep.Baseline)
	assert.Equal(t, -1, rep.Baseline.ExitCode)
	assert.False(t, rep.Passed())
}

func TestRun_DryRun(t *testing.T) {
	tool := &fakeTool{help: "-a -b"}
	cfg := newTestConfig(t, tool, "")
	cfg.DryRun = true
	cfg.Profile.Setup = [][]string{{"setup"}}

	rep, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	assert.True(t, rep.DryRun)
	assert.Equal(t, []string{"-a", "-b"}, rep.Untested.Sorted())
	assert.Len(t, tool.calls, 1, "only the help text is read")
	assert.True(t, rep.Passed())
}

func TestRun_Setup(t *testing.T) {
	tool := &fakeTool{help: "-a"}
	cfg := newTestConfig(t, tool, "")
	cfg.Profile.Setup = [][]string{{"setup", "record"}}

	_, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	require.Len(t, tool.calls, 3)
	assert.Equal(t, []string{"setup", "record"}, tool.calls[1])

	tool = &fakeTool{help: "-a", setupCode: 1}
	cfg = newTestConfig(t, tool, "")
	cfg.Profile.Setup = [][]string{{"setup", "record"}}

	_, err = Run(context.Background(), cfg)
	assert.Error(t, err)
	assert.Empty(t, tool.probes())
}

func TestRun_HelpText(t *testing.T) {
	tool := &fakeTool{help: "-a", helpToStderr: true}
	cfg := newTestConfig(t, tool, "")

	rep, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"-a"}, rep.Advertised.Sorted())

	tool = &fakeTool{help: " \n"}
	cfg = newTestConfig(t, tool, "")

	_, err = Run(context.Background(), cfg)
	assert.Error(t, err)
}

func TestRun_Locked(t *testing.T) {
	tool := &fakeTool{help: "-a"}
	cfg := newTestConfig(t, tool, "")

	other := filelock.New(cfg.LockDir)
	require.NoError(t, other.Lock(lockName))
	defer other.UnlockAll()

	_, err := Run(context.Background(), cfg)

	assert.ErrorIs(t, err, filelock.ErrLocked)
	assert.Empty(t, tool.calls)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	tool := &fakeTool{help: "-a -b -c"}
	tool.exit = func(argv []string) (int, string) {
		cancel()
		return 0, ""
	}
	cfg := newTestConfig(t, tool, "")

	_, err := Run(ctx, cfg)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, tool.probes(), 1)
}

func TestRun_CancelledDuringLastCommand(t *testing.T) {
	tests := map[string]struct {
		values map[string]profile.ValueSpec
	}{
		"last option":      {values: map[string]profile.ValueSpec{"--c": {Value: "1"}}},
		"plain invocation": {values: nil},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			tool := &fakeTool{help: "-a"}
			tool.exit = func([]string) (int, string) {
				cancel()
				return -1, "killed"
			}
			cfg := newTestConfig(t, tool, "")
			cfg.Profile.Values = test.values

			rep, err := Run(ctx, cfg)

			assert.ErrorIs(t, err, context.Canceled)
			assert.Nil(t, rep)
			assert.Len(t, tool.probes(), 1)
		})
	}
}

func TestRun_ScratchDirCleanedUp(t *testing.T) {
	tool := &fakeTool{help: "--input"}
	cfg := newTestConfig(t, tool, "")
	cfg.Profile.Values = map[string]profile.ValueSpec{"--input": {Value: "in.txt"}}
	cfg.Profile.Stage = map[string]profile.StageSpec{"--input": {Content: "x"}}
	cfg.Profile.Setup = [][]string{{"setup", "-o", "./tool.data"}}

	var workDirs []string
	cfg.Runner = runnerFunc(func(ctx context.Context, argv ...string) (ndexec.Result, error) {
		if argv[0] == "setup" {
			dirs, _ := filepath.Glob(filepath.Join(cfg.ScratchDir, "optprobe-*"))
			workDirs = dirs
			if len(dirs) == 1 {
				require.NoError(t, os.WriteFile(filepath.Join(dirs[0], "tool.data"), []byte("x"), 0o644))
			}
		}
		return tool.Run(ctx, argv...)
	})

	rep, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, rep.Outcomes, 1)

	require.Len(t, workDirs, 1)
	assert.NoDirExists(t, workDirs[0])
	assert.DirExists(t, cfg.ScratchDir)

	entries, err := os.ReadDir(cfg.ScratchDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRun_TemporaryScratchDirRemoved(t *testing.T) {
	var staged string

	tool := &fakeTool{help: "--input"}
	cfg := newTestConfig(t, tool, "")
	cfg.ScratchDir = ""
	cfg.Profile.Values = map[string]profile.ValueSpec{"--input": {Value: "in.txt"}}
	cfg.Profile.Stage = map[string]profile.StageSpec{"--input": {Content: "x"}}
	cfg.Runner = runnerFunc(func(ctx context.Context, argv ...string) (ndexec.Result, error) {
		if slices.Contains(argv, "--input") {
			wd, _ := filepath.Glob(filepath.Join(os.TempDir(), "optprobe-*", "in.txt"))
			if len(wd) > 0 {
				staged = wd[0]
			}
		}
		return tool.Run(ctx, argv...)
	})

	rep, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	require.Len(t, rep.Outcomes, 1)
	assert.Equal(t, probe.StatusSuccess, rep.Outcomes[0].Status)
	require.NotEmpty(t, staged)
	assert.NoDirExists(t, filepath.Dir(staged))
}

type runnerFunc func(ctx context.Context, argv ...string) (ndexec.Result, error)

func (fn runnerFunc) Run(ctx context.Context, argv ...string) (ndexec.Result, error) {
	return fn(ctx, argv...)
}

func TestRun_NoProfile(t *testing.T) {
	_, err := Run(context.Background(), Config{})

	assert.Error(t, err)
}

func TestRun_ToolVersion(t *testing.T) {
	tests := map[string]struct {
		version    string
		minVersion string
		want       string
		wantErr    error
	}{
		"not read":          {version: ""},
		"recorded":          {version: "perf version 6.8.0-rc3.g2a1b\n", want: "6.8.0"},
		"two components":    {version: "tool 1.2", want: "1.2.0"},
		"unparsable":        {version: "tool (devel)"},
		"meets minimum":     {version: "perf version 6.8.0", minVersion: "5.10", want: "6.8.0"},
		"below minimum":     {version: "perf version 4.18.0", minVersion: "5.10", wantErr: ErrToolTooOld},
		"unknown with min":  {version: "perf (devel)", minVersion: "5.10", wantErr: errAny},
		"major minor equal": {version: "perf version 5.10", minVersion: "5.10", want: "5.10.0"},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			tool := &fakeTool{help: "-a", version: test.version}
			cfg := newTestConfig(t, tool, "")
			if name != "not read" {
				cfg.Profile.VersionArgs = []string{"--version"}
			}
			cfg.Profile.MinVersion = test.minVersion

			rep, err := Run(context.Background(), cfg)

			switch {
			case test.wantErr == errAny:
				assert.Error(t, err)
			case test.wantErr != nil:
				assert.ErrorIs(t, err, test.wantErr)
			default:
				require.NoError(t, err)
				assert.Equal(t, test.want, rep.ToolVersion)
			}
		})
	}
}

var errAny = errors.New("any error")

func TestRun_ProfileHash(t *testing.T) {
	run := func(value string) uint64 {
		cfg := newTestConfig(t, &fakeTool{help: "-a"}, "")
		cfg.Profile.Corpus = nil
		cfg.Profile.Values["--c"] = profile.ValueSpec{Value: value}
		rep, err := Run(context.Background(), cfg)
		require.NoError(t, err)
		return rep.ProfileHash
	}

	assert.NotZero(t, run("1"))
	assert.Equal(t, run("1"), run("1"))
	assert.NotEqual(t, run("1"), run("2"))
}
