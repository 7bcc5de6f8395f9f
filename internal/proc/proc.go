// Package proc supervises worker processes for bounded calls: spawning in
// a kill-safe process group, forcible termination, exit classification,
// and best-effort resource sampling of a live worker.
package proc

import (
	"errors"
	"os/exec"
	"syscall"

	"github.com/shirou/gopsutil/v3/process"
)

// ExitReason classifies how a worker process ended.
type ExitReason string

const (
	ReasonSuccess ExitReason = "success"
	ReasonError   ExitReason = "error"
	ReasonKilled  ExitReason = "killed"
	ReasonUnknown ExitReason = "unknown"
)

// Classify maps the error from (*exec.Cmd).Wait to an ExitReason.
func Classify(err error) ExitReason {
	if err == nil {
		return ReasonSuccess
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
			return ReasonKilled
		}
		return ReasonError
	}
	return ReasonUnknown
}

// Usage is a point-in-time resource sample of a worker process.
type Usage struct {
	CPUPercent float64 `json:"cpu_percent"`
	RSSBytes   uint64  `json:"rss_bytes"`
}

// Sample reads CPU and memory usage for pid. Best effort: a process that
// exits mid-sample yields nil.
func Sample(pid int) *Usage {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return nil
	}
	u := &Usage{}
	if cpu, err := p.CPUPercent(); err == nil {
		u.CPUPercent = cpu
	}
	if mem, err := p.MemoryInfo(); err == nil && mem != nil {
		u.RSSBytes = mem.RSS
	}
	return u
}
