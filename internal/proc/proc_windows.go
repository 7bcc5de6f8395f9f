//go:build windows

package proc

import "os/exec"

// Isolate is a no-op on Windows; there are no process groups to arrange.
func Isolate(cmd *exec.Cmd) {}

// KillGroup terminates the worker process. Children spawned by the worker
// are not tracked on Windows.
func KillGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}
