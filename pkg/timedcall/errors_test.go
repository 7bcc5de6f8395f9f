package timedcall

import (
	"testing"
	"time"
)

func TestTimedOutRendering(t *testing.T) {
	cases := []struct {
		name string
		err  TimedOut
		want string
	}{
		{
			name: "no operation name",
			err:  TimedOut{Msg: "Operation timed out.", Timeout: 4 * time.Second},
			want: "Operation timed out. (4 seconds)",
		},
		{
			name: "default message",
			err:  TimedOut{Timeout: 2 * time.Second},
			want: "Operation timed out. (2 seconds)",
		},
		{
			name: "args and kwargs",
			err: TimedOut{
				Msg:     "Operation timed out.",
				Op:      "busy_work",
				Args:    Args{int64(100000000000)},
				Kwargs:  Kwargs{{Key: "increment", Value: int64(2)}},
				Timeout: 2 * time.Second,
			},
			want: "Operation timed out. (busy_work(100000000000, increment=2), 2 seconds)",
		},
		{
			name: "args only",
			err: TimedOut{
				Msg:     "Operation timed out.",
				Op:      "busy_work",
				Args:    Args{int64(5)},
				Timeout: time.Second,
			},
			want: "Operation timed out. (busy_work(5), 1 seconds)",
		},
		{
			name: "kwargs only",
			err: TimedOut{
				Msg:     "Operation timed out.",
				Op:      "busy_work",
				Kwargs:  Kwargs{{Key: "a", Value: int64(1)}, {Key: "b", Value: "x"}},
				Timeout: time.Second,
			},
			want: `Operation timed out. (busy_work(a=1, b="x"), 1 seconds)`,
		},
		{
			name: "fractional timeout",
			err: TimedOut{
				Msg:     "Operation timed out.",
				Timeout: 500 * time.Millisecond,
			},
			want: "Operation timed out. (0.5 seconds)",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.err.Error(); got != tc.want {
				t.Errorf("Error() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestKwargsRenderInInsertionOrder(t *testing.T) {
	err := TimedOut{
		Op:      "op",
		Kwargs:  Kwargs{{Key: "z", Value: 1}, {Key: "a", Value: 2}, {Key: "m", Value: 3}},
		Timeout: time.Second,
	}
	want := "Operation timed out. (op(z=1, a=2, m=3), 1 seconds)"
	if got := err.Error(); got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}
