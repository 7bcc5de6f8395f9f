//go:build unix

package proc

import (
	"os/exec"
	"syscall"
)

// Isolate puts the command in its own process group before it starts, so
// KillGroup can take down the worker and anything it spawned in one shot.
func Isolate(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true, // new process group
		Pgid:    0,    // worker becomes its own group leader
	}
}

// KillGroup forcibly terminates the command's whole process group. No
// cooperative signal is sent first; the worker gets no chance to clean up.
func KillGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	if err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL); err == nil {
		return nil
	}
	// Group kill failed (already reaped, or Isolate was skipped); fall
	// back to killing the single process.
	return cmd.Process.Kill()
}
