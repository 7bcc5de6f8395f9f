package proc

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"time"
)

// Result describes one bounded external-command execution.
type Result struct {
	PID      int           `json:"pid"`
	ExitCode int           `json:"exit_code"`
	Reason   ExitReason    `json:"reason"`
	Duration time.Duration `json:"duration"`
	TimedOut bool          `json:"timed_out"`

	// Usage is sampled just before a timed-out worker is killed.
	Usage *Usage `json:"usage,omitempty"`
}

// RunBounded spawns command in its own process group, waits up to timeout,
// and kills the whole group on overrun. The returned error covers spawn
// failures only; command outcomes, including timeouts, are in the Result.
func RunBounded(ctx context.Context, timeout time.Duration, stdout, stderr io.Writer, command string, args ...string) (*Result, error) {
	cmd := exec.Command(command, args...)
	Isolate(cmd)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	started := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", command, err)
	}

	res := &Result{PID: cmd.Process.Pid}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		res.Duration = time.Since(started)
		res.Reason = Classify(err)
		if exitErr, ok := err.(*exec.ExitError); ok {
			res.ExitCode = exitErr.ExitCode()
		} else if err != nil {
			res.ExitCode = -1
		}
		return res, nil

	case <-timer.C:
		res.Usage = Sample(cmd.Process.Pid)
		KillGroup(cmd)
		<-done // reap
		res.Duration = time.Since(started)
		res.TimedOut = true
		res.Reason = ReasonKilled
		res.ExitCode = -1
		return res, nil

	case <-ctx.Done():
		KillGroup(cmd)
		<-done
		res.Duration = time.Since(started)
		res.Reason = ReasonKilled
		res.ExitCode = -1
		return res, ctx.Err()
	}
}
