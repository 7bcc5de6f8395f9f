package timedcall

import (
	"fmt"
	"strings"
	"time"

	"github.com/psantana5/timedop/internal/proc"
)

// TimedOut reports that a bounded call exceeded its deadline and the
// worker was killed. It carries everything needed to reconstruct what was
// attempted.
type TimedOut struct {
	Msg     string
	Op      string
	Args    Args
	Kwargs  Kwargs
	Timeout time.Duration
}

// Error renders the message, a best-effort call rendering, and the
// timeout. Without an operation name it falls back to message + timeout.
func (e *TimedOut) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = "Operation timed out."
	}
	secs := formatSeconds(e.Timeout)
	if e.Op == "" {
		return fmt.Sprintf("%s (%s seconds)", msg, secs)
	}

	var args strings.Builder
	for i, a := range e.Args {
		if i > 0 {
			args.WriteString(", ")
		}
		fmt.Fprintf(&args, "%#v", a)
	}
	var kwargs strings.Builder
	for i, kv := range e.Kwargs {
		if i > 0 {
			kwargs.WriteString(", ")
		}
		fmt.Fprintf(&kwargs, "%s=%#v", kv.Key, kv.Value)
	}
	sep := ""
	if args.Len() > 0 && kwargs.Len() > 0 {
		sep = ", "
	}
	return fmt.Sprintf("%s (%s(%s%s%s), %s seconds)",
		msg, e.Op, args.String(), sep, kwargs.String(), secs)
}

func formatSeconds(d time.Duration) string {
	return fmt.Sprintf("%g", d.Seconds())
}

// WorkerError reports that the worker finished without producing a value:
// the operation returned an error, panicked, or the worker process died
// before writing its response frame. The worker is already reaped when
// this error is returned, so the caller never hangs on a crashed worker.
type WorkerError struct {
	Op       string
	Message  string
	Panicked bool
	Reason   proc.ExitReason
	Err      error
}

func (e *WorkerError) Error() string {
	switch {
	case e.Panicked:
		return fmt.Sprintf("timedcall: operation %q panicked in worker: %s", e.Op, e.Message)
	case e.Message != "":
		return fmt.Sprintf("timedcall: operation %q failed in worker: %s", e.Op, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("timedcall: worker for %q died (%s): %v", e.Op, e.Reason, e.Err)
	default:
		return fmt.Sprintf("timedcall: worker for %q died (%s)", e.Op, e.Reason)
	}
}

func (e *WorkerError) Unwrap() error {
	return e.Err
}
