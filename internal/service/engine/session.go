package engine

import (
	"errors"

	"github.com/rs/zerolog/log"

	"speech-decode-service/internal/service/hypothesis"
)

// Errors for session lifecycle violations. Both indicate programming errors
// in the owner, not runtime conditions to recover from.
var (
	ErrSessionClosed = errors.New("decode session already closed")
	ErrHandleLeaked  = errors.New("engine handle still referenced after final release")
)

// Session is the exclusively owned wrapper around one engine handle. Exactly
// one Session exists per handle for its whole lifetime; it is never shared
// across decoders and is closed exactly once, synchronously, by its owner.
// Callers serialize access the same way they do for the underlying Engine.
type Session struct {
	eng    Engine
	closed bool
}

// NewSession takes ownership of eng. The handle is released when Close is
// called, and only then.
func NewSession(eng Engine) *Session {
	return &Session{eng: eng}
}

// ProcessRaw forwards samples to the engine.
func (s *Session) ProcessRaw(samples []int16) (int, error) {
	if s.closed {
		return 0, ErrSessionClosed
	}
	return s.eng.ProcessRaw(samples)
}

// InSpeech reports the engine's voice-activity flag.
func (s *Session) InSpeech() bool {
	if s.closed {
		return false
	}
	return s.eng.InSpeech()
}

// StartUtt opens a new engine utterance.
func (s *Session) StartUtt() error {
	if s.closed {
		return ErrSessionClosed
	}
	return s.eng.StartUtt()
}

// EndUtt closes the current engine utterance.
func (s *Session) EndUtt() error {
	if s.closed {
		return ErrSessionClosed
	}
	return s.eng.EndUtt()
}

// Hyp returns the hypothesis for the last closed utterance, nil if none.
func (s *Session) Hyp() *hypothesis.Hypothesis {
	if s.closed {
		return nil
	}
	return s.eng.Hyp()
}

// Close releases the engine handle. Returns ErrHandleLeaked when the engine
// reports a nonzero remaining reference count: that means the single-owner
// invariant was violated somewhere and must surface, never be swallowed.
// Closing twice returns ErrSessionClosed.
func (s *Session) Close() error {
	if s.closed {
		log.Error().Msg("Decode session closed twice")
		return ErrSessionClosed
	}
	s.closed = true

	if refs := s.eng.Release(); refs != 0 {
		log.Error().Int("refs", refs).Msg("Engine handle leaked on final release")
		return ErrHandleLeaked
	}
	return nil
}
