package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestCountersProjectCalls(t *testing.T) {
	m := &Metrics{}

	m.CallStarted()
	m.CallStarted()
	m.CallStarted()
	m.CallCompleted(250 * time.Millisecond)
	m.CallTimedOut()
	m.CallFailed()

	snap := m.Snapshot()
	if snap.CallsStarted != 3 {
		t.Errorf("CallsStarted = %d, want 3", snap.CallsStarted)
	}
	if snap.CallsCompleted != 1 {
		t.Errorf("CallsCompleted = %d, want 1", snap.CallsCompleted)
	}
	if snap.CallsTimedOut != 1 {
		t.Errorf("CallsTimedOut = %d, want 1", snap.CallsTimedOut)
	}
	if snap.CallsFailed != 1 {
		t.Errorf("CallsFailed = %d, want 1", snap.CallsFailed)
	}
	if snap.BusySeconds != 0.25 {
		t.Errorf("BusySeconds = %v, want 0.25", snap.BusySeconds)
	}
}

func TestWriteYAMLRoundTrips(t *testing.T) {
	m := &Metrics{}
	m.CallStarted()
	m.CallCompleted(time.Second)

	var buf bytes.Buffer
	if err := m.WriteYAML(&buf); err != nil {
		t.Fatalf("WriteYAML failed: %v", err)
	}

	var snap Snapshot
	if err := yaml.Unmarshal(buf.Bytes(), &snap); err != nil {
		t.Fatalf("unmarshal export: %v", err)
	}
	if snap.CallsStarted != 1 || snap.CallsCompleted != 1 {
		t.Fatalf("round-tripped snapshot = %+v", snap)
	}
}

func TestWriteJSONHasCounterKeys(t *testing.T) {
	m := &Metrics{}
	var buf bytes.Buffer
	if err := m.WriteJSON(&buf); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	for _, key := range []string{"calls_started", "calls_completed", "calls_timed_out", "calls_failed"} {
		if !strings.Contains(buf.String(), key) {
			t.Errorf("JSON export missing %q: %s", key, buf.String())
		}
	}
}

func TestGlobalIsStable(t *testing.T) {
	if Global() != Global() {
		t.Fatal("Global() returned different instances")
	}
}
