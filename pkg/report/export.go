package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// Snapshot is a point-in-time copy of the counters, suitable for the
// /stats endpoint and for file export.
type Snapshot struct {
	GeneratedAt    time.Time `json:"generated_at" yaml:"generated_at"`
	CallsStarted   uint64    `json:"calls_started" yaml:"calls_started"`
	CallsCompleted uint64    `json:"calls_completed" yaml:"calls_completed"`
	CallsFailed    uint64    `json:"calls_failed" yaml:"calls_failed"`
	CallsTimedOut  uint64    `json:"calls_timed_out" yaml:"calls_timed_out"`
	BusySeconds    float64   `json:"busy_seconds" yaml:"busy_seconds"`
}

// Snapshot copies the current counter values.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		GeneratedAt:    time.Now(),
		CallsStarted:   m.CallsStarted.Load(),
		CallsCompleted: m.CallsCompleted.Load(),
		CallsFailed:    m.CallsFailed.Load(),
		CallsTimedOut:  m.CallsTimedOut.Load(),
		BusySeconds:    time.Duration(m.BusyNanos.Load()).Seconds(),
	}
}

// WriteJSON writes the snapshot as indented JSON.
func (m *Metrics) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m.Snapshot()); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// WriteYAML writes the snapshot as YAML.
func (m *Metrics) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	if err := enc.Encode(m.Snapshot()); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}
