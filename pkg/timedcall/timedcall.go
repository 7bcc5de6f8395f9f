// Package timedcall runs registered operations in isolated worker
// processes under a hard wall-clock deadline.
//
// Operations are ordinary Go functions registered by name. Call re-executes
// the current binary in a hidden worker mode, ships the arguments over the
// worker's stdin with gob, and waits for the single response frame on its
// stdout. A worker that misses the deadline is killed, process group and
// all, and the caller gets a *TimedOut; a worker whose operation errors or
// panics answers with a failure frame and the caller gets a *WorkerError
// immediately instead of waiting out the deadline.
//
// Host binaries must call WorkerMain at the top of main.
package timedcall

import (
	"context"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/psantana5/timedop/internal/proc"
	"github.com/psantana5/timedop/pkg/logging"
	"github.com/psantana5/timedop/pkg/report"
	"github.com/psantana5/timedop/pkg/timedop"
)

// DefaultTimeout bounds a call when WithTimeout is not given.
const DefaultTimeout = 4 * time.Second

// Option configures a single Call.
type Option func(*config)

type config struct {
	timeout time.Duration
	log     *logging.Logger
	stderr  io.Writer
}

// WithTimeout overrides the deadline for one call.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

// WithLogger makes the call log worker lifecycle events. Without it the
// call is silent.
func WithLogger(l *logging.Logger) Option {
	return func(c *config) { c.log = l }
}

// WithStderr redirects the worker's stderr. Defaults to the parent's
// stderr so operation diagnostics stay visible.
func WithStderr(w io.Writer) Option {
	return func(c *config) { c.stderr = w }
}

// Call runs the named registered operation in a fresh worker process and
// returns its result, waiting at most the configured timeout. On overrun
// the worker is forcibly killed and a *TimedOut is returned. The worker is
// never reused and is always reaped before Call returns.
//
// args and kwargs may be nil; each call builds its own request, so no
// state is shared between calls.
func Call(ctx context.Context, op string, args Args, kwargs Kwargs, opts ...Option) (any, error) {
	cfg := config{timeout: DefaultTimeout, stderr: os.Stderr}
	for _, opt := range opts {
		opt(&cfg)
	}

	if _, ok := lookup(op); !ok {
		return nil, fmt.Errorf("timedcall: unknown operation %q", op)
	}

	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("timedcall: locate executable: %w", err)
	}

	cmd := exec.Command(exe)
	cmd.Env = append(os.Environ(), workerEnv+"=1")
	cmd.Stderr = cfg.stderr
	proc.Isolate(cmd)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("timedcall: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("timedcall: stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("timedcall: spawn worker: %w", err)
	}
	report.Global().CallStarted()
	if cfg.log != nil {
		cfg.log.Debug("worker spawned", map[string]interface{}{
			"op": op, "pid": cmd.Process.Pid, "timeout": cfg.timeout.String(),
		})
	}

	watch := timedop.New("").Start()

	// Ship the request. An encode failure here is a usage error (a value
	// whose type was never registered), not a timing failure.
	reqErr := gob.NewEncoder(stdin).Encode(request{Op: op, Args: args, Kwargs: kwargs})
	stdin.Close()
	if reqErr != nil {
		proc.KillGroup(cmd)
		cmd.Wait()
		report.Global().CallFailed()
		return nil, fmt.Errorf("timedcall: encode request for %q: %w", op, reqErr)
	}

	// One-shot result channel: the decode goroutine is the single writer,
	// this function the single reader, one frame ever.
	type outcome struct {
		resp response
		err  error
	}
	results := make(chan outcome, 1)
	go func() {
		var resp response
		err := gob.NewDecoder(stdout).Decode(&resp)
		results <- outcome{resp: resp, err: err}
	}()

	timer := time.NewTimer(cfg.timeout)
	defer timer.Stop()

	select {
	case out := <-results:
		waitErr := cmd.Wait()
		_ = watch.Stop()
		if out.err != nil {
			// Worker died without answering: killed externally or the
			// response could not cross the boundary.
			report.Global().CallFailed()
			return nil, &WorkerError{Op: op, Reason: proc.Classify(waitErr), Err: out.err}
		}
		if out.resp.Failed {
			report.Global().CallFailed()
			if cfg.log != nil {
				cfg.log.Warn("operation failed in worker", map[string]interface{}{
					"op": op, "panicked": out.resp.Panicked, "error": out.resp.ErrMsg,
				})
			}
			return nil, &WorkerError{Op: op, Message: out.resp.ErrMsg, Panicked: out.resp.Panicked}
		}
		d, _ := watch.Elapsed()
		report.Global().CallCompleted(d)
		if cfg.log != nil {
			cfg.log.Debug("worker completed", map[string]interface{}{
				"op": op, "elapsed": d.String(),
			})
		}
		return out.resp.Value, nil

	case <-timer.C:
		// Sample before the kill so the log can say what the runaway
		// worker was doing.
		usage := proc.Sample(cmd.Process.Pid)
		proc.KillGroup(cmd)
		cmd.Wait()
		report.Global().CallTimedOut()
		if cfg.log != nil {
			fields := map[string]interface{}{
				"op": op, "pid": cmd.Process.Pid, "timeout": cfg.timeout.String(),
			}
			if usage != nil {
				fields["cpu_percent"] = usage.CPUPercent
				fields["rss_bytes"] = usage.RSSBytes
			}
			cfg.log.Warn("worker killed at deadline", fields)
		}
		return nil, &TimedOut{
			Msg:     "Operation timed out.",
			Op:      op,
			Args:    args,
			Kwargs:  kwargs,
			Timeout: cfg.timeout,
		}

	case <-ctx.Done():
		proc.KillGroup(cmd)
		cmd.Wait()
		report.Global().CallFailed()
		return nil, fmt.Errorf("timedcall: %q canceled: %w", op, ctx.Err())
	}
}
