package timedcall

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"
	"time"
)

// The Call tests re-execute this test binary as the worker, exactly like a
// host binary would: TestMain services the request when the worker marker
// is set, and the init below registers the operations on both sides.
func TestMain(m *testing.M) {
	WorkerMain()
	os.Exit(m.Run())
}

func init() {
	Register("test.value", func(Args, Kwargs) (any, error) {
		return 2600, nil
	})
	Register("test.sum", func(args Args, kwargs Kwargs) (any, error) {
		var sum int64
		for _, a := range args {
			n, ok := a.(int64)
			if !ok {
				return nil, fmt.Errorf("want int64, got %T", a)
			}
			sum += n
		}
		if v, ok := kwargs.Get("offset"); ok {
			sum += v.(int64)
		}
		return sum, nil
	})
	Register("test.spin", func(args Args, kwargs Kwargs) (any, error) {
		stop := args[0].(int64)
		step := int64(1)
		if v, ok := kwargs.Get("increment"); ok {
			step = v.(int64)
		}
		var count int64
		for count < stop {
			count += step
		}
		return count, nil
	})
	Register("test.fail", func(Args, Kwargs) (any, error) {
		return nil, errors.New("deliberate failure")
	})
	Register("test.panic", func(Args, Kwargs) (any, error) {
		panic("deliberate panic")
	})
	Register("test.sleep", func(args Args, kwargs Kwargs) (any, error) {
		d := args[0].(time.Duration)
		time.Sleep(d)
		return d, nil
	})
}

func TestCallReturnsResult(t *testing.T) {
	result, err := Call(context.Background(), "test.value", nil, nil)
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if got, ok := result.(int); !ok || got != 2600 {
		t.Fatalf("result = %v (%T), want 2600", result, result)
	}
}

func TestCallPassesArguments(t *testing.T) {
	result, err := Call(context.Background(), "test.sum",
		Args{int64(40), int64(2)},
		Kwargs{{Key: "offset", Value: int64(100)}},
	)
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if got, ok := result.(int64); !ok || got != 142 {
		t.Fatalf("result = %v (%T), want 142", result, result)
	}
}

func TestCallTimesOut(t *testing.T) {
	result, err := Call(context.Background(), "test.spin",
		Args{int64(100000000000)}, nil,
		WithTimeout(time.Second),
		WithStderr(io.Discard),
	)
	if result != nil {
		t.Fatalf("result = %v, want nil on timeout", result)
	}
	var timedOut *TimedOut
	if !errors.As(err, &timedOut) {
		t.Fatalf("err = %v (%T), want *TimedOut", err, err)
	}
	if timedOut.Op != "test.spin" {
		t.Errorf("Op = %q, want %q", timedOut.Op, "test.spin")
	}
	if timedOut.Timeout != time.Second {
		t.Errorf("Timeout = %v, want 1s", timedOut.Timeout)
	}
	if len(timedOut.Args) != 1 {
		t.Errorf("Args = %v, want the original argument", timedOut.Args)
	}
	if !strings.Contains(err.Error(), "test.spin(100000000000), 1 seconds") {
		t.Errorf("rendering = %q, want call context in it", err.Error())
	}
}

func TestCallSleepTimesOutQuickly(t *testing.T) {
	start := time.Now()
	_, err := Call(context.Background(), "test.sleep",
		Args{30 * time.Second}, nil,
		WithTimeout(300*time.Millisecond),
		WithStderr(io.Discard),
	)
	var timedOut *TimedOut
	if !errors.As(err, &timedOut) {
		t.Fatalf("err = %v, want *TimedOut", err)
	}
	// The call must come back near the deadline, not near the sleep.
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("Call blocked for %v after a 300ms deadline", elapsed)
	}
}

func TestCallOperationError(t *testing.T) {
	_, err := Call(context.Background(), "test.fail", nil, nil, WithStderr(io.Discard))
	var workerErr *WorkerError
	if !errors.As(err, &workerErr) {
		t.Fatalf("err = %v (%T), want *WorkerError", err, err)
	}
	if workerErr.Panicked {
		t.Error("Panicked = true for a plain error return")
	}
	if !strings.Contains(workerErr.Message, "deliberate failure") {
		t.Errorf("Message = %q, want the op's error text", workerErr.Message)
	}
}

func TestCallOperationPanicSurfacesPromptly(t *testing.T) {
	start := time.Now()
	_, err := Call(context.Background(), "test.panic", nil, nil,
		WithTimeout(time.Minute),
		WithStderr(io.Discard),
	)
	var workerErr *WorkerError
	if !errors.As(err, &workerErr) {
		t.Fatalf("err = %v (%T), want *WorkerError", err, err)
	}
	if !workerErr.Panicked {
		t.Error("Panicked = false for a panicking op")
	}
	// Crash delivery must not wait out the deadline.
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Fatalf("crash took %v to surface under a 1m deadline", elapsed)
	}
}

func TestCallUnknownOperation(t *testing.T) {
	_, err := Call(context.Background(), "no.such.op", nil, nil)
	if err == nil || !strings.Contains(err.Error(), "no.such.op") {
		t.Fatalf("err = %v, want unknown-operation error", err)
	}
}

func TestCallUnencodableArgument(t *testing.T) {
	_, err := Call(context.Background(), "test.value",
		Args{make(chan int)}, nil,
		WithStderr(io.Discard),
	)
	if err == nil {
		t.Fatal("Call with a chan argument should fail")
	}
	var timedOut *TimedOut
	if errors.As(err, &timedOut) {
		t.Fatalf("marshaling failure reported as timeout: %v", err)
	}
}

func TestCallContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()
	start := time.Now()
	_, err := Call(ctx, "test.sleep",
		Args{30 * time.Second}, nil,
		WithTimeout(time.Minute),
		WithStderr(io.Discard),
	)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Fatalf("cancellation took %v", elapsed)
	}
}

func TestCallsAreIndependent(t *testing.T) {
	// Two sequential calls must not share request state.
	for i := 0; i < 2; i++ {
		result, err := Call(context.Background(), "test.sum", Args{int64(i)}, nil)
		if err != nil {
			t.Fatalf("call %d failed: %v", i, err)
		}
		if got := result.(int64); got != int64(i) {
			t.Fatalf("call %d = %d, want %d", i, got, i)
		}
	}
}
