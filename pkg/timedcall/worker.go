package timedcall

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"
)

// workerEnv marks a process as a one-shot bounded-call worker.
const workerEnv = "TIMEDOP_WORKER"

// IsWorker reports whether this process was spawned as a bounded-call
// worker.
func IsWorker() bool {
	return os.Getenv(workerEnv) == "1"
}

// WorkerMain services exactly one bounded-call request on stdin/stdout and
// exits. Host binaries must call it at the top of main, after all Register
// calls have run; in the parent process it is a no-op.
func WorkerMain() {
	if !IsWorker() {
		return
	}
	os.Exit(serveWorker(os.Stdin, os.Stdout))
}

// serveWorker decodes one request, runs the operation, and writes the one
// and only response frame. It always writes a frame, so the parent never
// blocks on a worker that crashed instead of answering.
func serveWorker(in io.Reader, out io.Writer) int {
	enc := gob.NewEncoder(out)

	var req request
	if err := gob.NewDecoder(in).Decode(&req); err != nil {
		enc.Encode(response{Failed: true, ErrMsg: fmt.Sprintf("decode request: %v", err)})
		return 1
	}

	fn, ok := lookup(req.Op)
	if !ok {
		enc.Encode(response{Failed: true, ErrMsg: fmt.Sprintf("unknown operation %q", req.Op)})
		return 1
	}

	resp := invoke(fn, req.Args, req.Kwargs)
	if err := enc.Encode(resp); err != nil {
		// Result not encodable: the parent sees the pipe close and
		// surfaces a decode error instead of hanging.
		fmt.Fprintf(os.Stderr, "timedcall worker: encode response for %q: %v\n", req.Op, err)
		return 1
	}
	if resp.Failed {
		return 1
	}
	return 0
}

// invoke runs the operation, converting error returns and panics into a
// failure frame.
func invoke(fn Func, args Args, kwargs Kwargs) (resp response) {
	defer func() {
		if r := recover(); r != nil {
			resp = response{Failed: true, Panicked: true, ErrMsg: fmt.Sprint(r)}
		}
	}()
	value, err := fn(args, kwargs)
	if err != nil {
		return response{Failed: true, ErrMsg: err.Error()}
	}
	return response{Value: value}
}
