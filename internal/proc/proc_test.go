package proc

import (
	"errors"
	"testing"
)

func TestClassifyNil(t *testing.T) {
	if got := Classify(nil); got != ReasonSuccess {
		t.Fatalf("Classify(nil) = %s, want %s", got, ReasonSuccess)
	}
}

func TestClassifyNonExitError(t *testing.T) {
	if got := Classify(errors.New("fork failed")); got != ReasonUnknown {
		t.Fatalf("Classify = %s, want %s", got, ReasonUnknown)
	}
}

func TestSampleMissingProcess(t *testing.T) {
	// PIDs wrap well below this value on every supported platform.
	if u := Sample(1 << 30); u != nil {
		t.Fatalf("Sample of missing pid = %+v, want nil", u)
	}
}
