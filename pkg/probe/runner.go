// SPDX-License-Identifier: GPL-3.0-or-later

package probe

import (
	"context"
	"time"

	"github.com/netdata/optprobe/logger"
	"github.com/netdata/optprobe/pkg/ndexec"
)

// Runner executes one command line. A non-zero exit status is reported in the
// result, not as an error.
type Runner interface {
	Run(ctx context.Context, argv ...string) (ndexec.Result, error)
}

// ExecRunner runs commands as child processes in Dir.
type ExecRunner struct {
	*logger.Logger

	Dir     string
	Timeout time.Duration
}

func NewExecRunner(dir string, timeout time.Duration, log *logger.Logger) *ExecRunner {
	return &ExecRunner{
		Logger:  log,
		Dir:     dir,
		Timeout: timeout,
	}
}

func (r *ExecRunner) Run(ctx context.Context, argv ...string) (ndexec.Result, error) {
	return ndexec.Run(ctx, r.Logger, ndexec.RunOptions{Dir: r.Dir, Timeout: r.Timeout}, argv...)
}
