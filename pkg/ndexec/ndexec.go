// SPDX-License-Identifier: GPL-3.0-or-later

// Package ndexec runs external binaries with captured output.
package ndexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/netdata/optprobe/logger"
)

const stderrLimit = 8 << 10 // 8 KiB

// RunOptions tunes a single execution.
type RunOptions struct {
	// Dir is the working directory; empty means the current one.
	Dir string
	// Env is appended to the inherited environment.
	Env []string
	// Timeout bounds the execution; zero means no bound beyond ctx.
	Timeout time.Duration
}

// Result is the captured outcome of a process that ran to completion.
type Result struct {
	Command  string
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Duration time.Duration
	Usage    ResourceUsage
}

// Failed reports whether the process exited with a non-zero status.
func (r Result) Failed() bool { return r.ExitCode != 0 }

// Run executes argv[0] with the remaining arguments, without a shell.
// A non-zero exit status is not an error: it is reported in Result.ExitCode.
// An error is returned only when the process could not be started or the
// context (or timeout) expired.
func Run(ctx context.Context, log *logger.Logger, opts RunOptions, argv ...string) (Result, error) {
	if len(argv) == 0 || argv[0] == "" {
		return Result{}, errors.New("empty command")
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	ex := exec.CommandContext(ctx, argv[0], argv[1:]...) // argv comes from the profile; no shell, args passed separately
	ex.Dir = opts.Dir
	if len(opts.Env) > 0 {
		ex.Env = append(os.Environ(), opts.Env...)
	}

	var stdout, stderr bytes.Buffer
	ex.Stdout = &stdout
	ex.Stderr = &stderr

	res := Result{Command: ex.String()}

	log.Debugf("executing: %s", res.Command)

	start := time.Now()
	err := ex.Run()
	res.Duration = time.Since(start)
	res.Stdout = stdout.Bytes()
	res.Stderr = stderr.Bytes()
	res.Usage = extractUsage(ex.ProcessState)

	if ctx.Err() != nil {
		// Normalize context-related errors so callers can errors.Is(..., context.DeadlineExceeded)
		return res, fmt.Errorf("'%s' execution failed: %w (stderr: %s)", res.Command, ctx.Err(), trimStderr(res.Stderr))
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		res.ExitCode = 0
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	default:
		return res, fmt.Errorf("'%s' execution failed: %w", res.Command, err)
	}

	return res, nil
}

func trimStderr(b []byte) string {
	s := string(b)
	if len(s) > stderrLimit {
		s = s[:stderrLimit] + "… (truncated)"
	}
	return strings.TrimSpace(s)
}
