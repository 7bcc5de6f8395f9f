//go:build unix

package proc

import (
	"context"
	"io"
	"testing"
	"time"
)

func TestRunBoundedCompletes(t *testing.T) {
	res, err := RunBounded(context.Background(), 10*time.Second, io.Discard, io.Discard, "true")
	if err != nil {
		t.Fatalf("RunBounded failed: %v", err)
	}
	if res.TimedOut {
		t.Fatal("TimedOut = true for an instant command")
	}
	if res.ExitCode != 0 || res.Reason != ReasonSuccess {
		t.Fatalf("result = %+v, want clean exit", res)
	}
}

func TestRunBoundedExitCode(t *testing.T) {
	res, err := RunBounded(context.Background(), 10*time.Second, io.Discard, io.Discard, "sh", "-c", "exit 3")
	if err != nil {
		t.Fatalf("RunBounded failed: %v", err)
	}
	if res.ExitCode != 3 || res.Reason != ReasonError {
		t.Fatalf("result = %+v, want exit code 3", res)
	}
}

func TestRunBoundedKillsOnTimeout(t *testing.T) {
	start := time.Now()
	res, err := RunBounded(context.Background(), 200*time.Millisecond, io.Discard, io.Discard, "sleep", "30")
	if err != nil {
		t.Fatalf("RunBounded failed: %v", err)
	}
	if !res.TimedOut || res.Reason != ReasonKilled {
		t.Fatalf("result = %+v, want timed-out kill", res)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("RunBounded blocked for %v after a 200ms deadline", elapsed)
	}
}

func TestRunBoundedSpawnFailure(t *testing.T) {
	_, err := RunBounded(context.Background(), time.Second, io.Discard, io.Discard, "/no/such/binary")
	if err == nil {
		t.Fatal("RunBounded of a missing binary should fail")
	}
}

func TestRunBoundedContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()
	_, err := RunBounded(ctx, time.Minute, io.Discard, io.Discard, "sleep", "30")
	if err == nil {
		t.Fatal("RunBounded should surface context cancellation")
	}
}
