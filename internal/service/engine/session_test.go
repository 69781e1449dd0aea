package engine

import (
	"errors"
	"testing"

	"speech-decode-service/internal/service/hypothesis"
)

// fakeEngine implements Engine for session lifecycle tests.
type fakeEngine struct {
	releaseRefs int
	releases    int
	processed   int
	starts      int
	ends        int
	hyp         *hypothesis.Hypothesis
}

func (f *fakeEngine) ProcessRaw(samples []int16) (int, error) {
	f.processed += len(samples)
	return len(samples), nil
}
func (f *fakeEngine) InSpeech() bool { return false }
func (f *fakeEngine) StartUtt() error {
	f.starts++
	return nil
}
func (f *fakeEngine) EndUtt() error {
	f.ends++
	return nil
}
func (f *fakeEngine) Hyp() *hypothesis.Hypothesis { return f.hyp }
func (f *fakeEngine) Release() int {
	f.releases++
	return f.releaseRefs
}

func TestSession_CloseReleasesHandle(t *testing.T) {
	eng := &fakeEngine{}
	s := NewSession(eng)

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if eng.releases != 1 {
		t.Errorf("releases = %d, want 1", eng.releases)
	}
}

func TestSession_CloseFlagsLeakedHandle(t *testing.T) {
	// An engine reporting a nonzero refcount on final release means the
	// single-owner invariant was violated; that must surface.
	eng := &fakeEngine{releaseRefs: 2}
	s := NewSession(eng)

	err := s.Close()
	if !errors.Is(err, ErrHandleLeaked) {
		t.Fatalf("Close err = %v, want ErrHandleLeaked", err)
	}
}

func TestSession_DoubleCloseIsAnError(t *testing.T) {
	eng := &fakeEngine{}
	s := NewSession(eng)

	if err := s.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := s.Close(); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("second Close err = %v, want ErrSessionClosed", err)
	}
	// The handle must not be released twice.
	if eng.releases != 1 {
		t.Errorf("releases = %d, want 1", eng.releases)
	}
}

func TestSession_OperationsAfterClose(t *testing.T) {
	eng := &fakeEngine{hyp: &hypothesis.Hypothesis{Text: "stale", Score: 1}}
	s := NewSession(eng)
	s.Close()

	if _, err := s.ProcessRaw(make([]int16, 4)); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("ProcessRaw err = %v, want ErrSessionClosed", err)
	}
	if err := s.StartUtt(); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("StartUtt err = %v, want ErrSessionClosed", err)
	}
	if err := s.EndUtt(); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("EndUtt err = %v, want ErrSessionClosed", err)
	}
	if s.InSpeech() {
		t.Error("InSpeech on closed session should be false")
	}
	if s.Hyp() != nil {
		t.Error("Hyp on closed session should be nil")
	}
	if eng.processed != 0 || eng.starts != 0 || eng.ends != 0 {
		t.Error("closed session must not reach the engine")
	}
}

func TestSession_ForwardsToEngine(t *testing.T) {
	eng := &fakeEngine{hyp: &hypothesis.Hypothesis{Text: "ok", Score: 5}}
	s := NewSession(eng)

	n, err := s.ProcessRaw(make([]int16, 8))
	if err != nil || n != 8 {
		t.Errorf("ProcessRaw = (%d, %v), want (8, nil)", n, err)
	}
	s.StartUtt()
	s.EndUtt()
	if eng.starts != 1 || eng.ends != 1 {
		t.Errorf("starts/ends = %d/%d, want 1/1", eng.starts, eng.ends)
	}
	if got := s.Hyp(); got == nil || got.Text != "ok" {
		t.Errorf("Hyp() = %v, want engine hypothesis", got)
	}
}
