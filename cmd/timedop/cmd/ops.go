package cmd

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/psantana5/timedop/pkg/timedcall"
)

// Operation names callable through the bounded-call executor. Registered
// at init time so the worker re-exec sees the same registry.
const (
	opBusyWork = "busy_work"
	opEcho     = "echo"
	opSleep    = "sleep"
)

func init() {
	timedcall.Register(opBusyWork, busyWork)
	timedcall.Register(opEcho, echo)
	timedcall.Register(opSleep, sleepOp)
}

// busyWork burns CPU by counting up to args[0] in steps of the "increment"
// kwarg. A zero or missing target picks a random medium-sized amount of
// work, like a transcoding job of unknown length.
func busyWork(args timedcall.Args, kwargs timedcall.Kwargs) (any, error) {
	var stop int64
	if len(args) > 0 {
		n, err := asInt64(args[0])
		if err != nil {
			return nil, fmt.Errorf("busy_work: target: %w", err)
		}
		stop = n
	}
	if stop == 0 {
		choices := []int64{4000000, 5000000, 7000000}
		stop = choices[rand.Intn(len(choices))]
	}

	step := int64(1)
	if v, ok := kwargs.Get("increment"); ok {
		n, err := asInt64(v)
		if err != nil {
			return nil, fmt.Errorf("busy_work: increment: %w", err)
		}
		if n <= 0 {
			return nil, fmt.Errorf("busy_work: increment must be positive, got %d", n)
		}
		step = n
	}

	var count int64
	for count < stop {
		count += step
	}
	return count, nil
}

// echo returns its first positional argument, or nil without one. Mostly
// useful for checking the worker round trip.
func echo(args timedcall.Args, kwargs timedcall.Kwargs) (any, error) {
	if len(args) == 0 {
		return nil, nil
	}
	return args[0], nil
}

// sleepOp sleeps for the duration in args[0] and returns it. Handy for
// exercising the deadline path deliberately.
func sleepOp(args timedcall.Args, kwargs timedcall.Kwargs) (any, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("sleep: missing duration argument")
	}
	d, ok := args[0].(time.Duration)
	if !ok {
		return nil, fmt.Errorf("sleep: want time.Duration, got %T", args[0])
	}
	time.Sleep(d)
	return d, nil
}

func asInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint:
		return int64(n), nil
	case uint64:
		return int64(n), nil
	case float64:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("want an integer, got %T", v)
	}
}
