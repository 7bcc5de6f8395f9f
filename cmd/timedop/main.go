package main

import (
	"fmt"
	"os"

	"github.com/psantana5/timedop/cmd/timedop/cmd"
	"github.com/psantana5/timedop/pkg/timedcall"
)

func main() {
	// Worker mode services one bounded-call request and exits before any
	// CLI parsing happens. All operation registration is done in inits,
	// so the worker sees the same registry as the parent.
	timedcall.WorkerMain()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
