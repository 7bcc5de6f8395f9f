// Package timedop provides a small stopwatch for roughly timing operations.
//
// A TimedOp can be driven manually with Start/Stop, read mid-run through
// Elapsed, and rendered with String. Do brackets a function between Start
// and Stop so the pairing cannot be missed on early returns or panics.
package timedop

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultFormat is the verb applied to elapsed seconds by String.
// Override per instance with SetFormat.
const DefaultFormat = "%0.2f"

var (
	// ErrNotStarted is returned when Stop or Elapsed is used before Start.
	ErrNotStarted = errors.New("timedop: not started")

	// ErrStopped is returned when Stop is called twice without an
	// intervening Start.
	ErrStopped = errors.New("timedop: already stopped")

	// ErrFormat is returned by SetFormat for templates that cannot
	// format a single float.
	ErrFormat = errors.New("timedop: invalid format")
)

// TimedOp measures wall-clock elapsed time for one operation at a time.
// The zero value is not usable; create instances with New. A TimedOp is
// single-owner: concurrent Start/Stop from multiple goroutines is not
// supported.
type TimedOp struct {
	label  string
	format string
	start  time.Time
	stop   time.Time
	frozen time.Duration

	// now is swapped out in tests.
	now func() time.Time
}

// New creates an unstarted TimedOp. The label, if any, prefixes the
// String rendering and is fixed for the life of the instance.
func New(label string) *TimedOp {
	return &TimedOp{
		label:  label,
		format: DefaultFormat,
		now:    time.Now,
	}
}

// Start captures the current instant and re-arms the stopwatch, discarding
// any previous stop marker and frozen duration. It always succeeds and
// returns the receiver for chaining.
func (t *TimedOp) Start() *TimedOp {
	t.stop = time.Time{}
	t.frozen = 0
	t.start = t.now()
	return t
}

// Stop captures the stop instant and freezes the elapsed duration.
// It fails with ErrNotStarted before the first Start and with ErrStopped
// when the stopwatch is already stopped for the current run.
func (t *TimedOp) Stop() error {
	if t.start.IsZero() {
		return ErrNotStarted
	}
	if !t.stop.IsZero() {
		return ErrStopped
	}
	t.stop = t.now()
	t.frozen = t.stop.Sub(t.start)
	return nil
}

// Elapsed returns the duration since Start. While running it is computed
// live against the current time on every read; after Stop it is the frozen
// duration. Reading a never-started TimedOp returns ErrNotStarted.
func (t *TimedOp) Elapsed() (time.Duration, error) {
	if t.start.IsZero() {
		return 0, ErrNotStarted
	}
	if t.stop.IsZero() {
		return t.now().Sub(t.start), nil
	}
	return t.frozen, nil
}

// SetFormat replaces the display format used by String. The template must
// be non-empty and must cleanly format a single float, e.g. "%v", "%0.2f",
// "%.3fs". On rejection the previous format stays in effect.
func (t *TimedOp) SetFormat(format string) error {
	if format == "" {
		return fmt.Errorf("%w: empty (want a single float verb like %q)", ErrFormat, DefaultFormat)
	}
	// Trial-apply to a sample value. fmt reports bad or mismatched verbs
	// inline with %! markers rather than an error return.
	if trial := fmt.Sprintf(format, 1.0); strings.Contains(trial, "%!") {
		return fmt.Errorf("%w: %q (want a single float verb like %q)", ErrFormat, format, DefaultFormat)
	}
	t.format = format
	return nil
}

// Label returns the display prefix set at construction.
func (t *TimedOp) Label() string {
	return t.label
}

// Format returns the current display format.
func (t *TimedOp) Format() string {
	return t.format
}

// String renders the label followed by the elapsed seconds in the current
// format. A never-started TimedOp renders the label and a literal zero.
// String never fails, even mid-run.
func (t *TimedOp) String() string {
	if t.start.IsZero() {
		return t.label + "0"
	}
	elapsed, _ := t.Elapsed()
	return t.label + fmt.Sprintf(t.format, elapsed.Seconds())
}

// Do runs fn between Start and a guaranteed Stop, so the measurement is
// closed on every exit path including panics. It returns the stopped
// receiver for inspection.
func (t *TimedOp) Do(fn func(*TimedOp)) *TimedOp {
	t.Start()
	defer func() {
		// The body may have stopped the watch itself.
		_ = t.Stop()
	}()
	fn(t)
	return t
}
