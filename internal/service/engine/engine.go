// Package engine defines the decode-engine contract and the exclusively
// owned session wrapper around a single engine handle.
package engine

import (
	"speech-decode-service/internal/service/hypothesis"
)

// Engine is the acoustic decode engine driven by the orchestration core.
// Implementations are stateful and not safe for concurrent use; callers
// must serialize every call on one handle through a single logical sequence.
type Engine interface {
	// ProcessRaw ingests 16-bit PCM samples into the current utterance and
	// returns the number of frames the engine consumed. The count is
	// diagnostic only.
	ProcessRaw(samples []int16) (int, error)

	// InSpeech reports whether the engine considers the most recently
	// ingested audio to be voice. Only meaningful immediately after
	// ProcessRaw.
	InSpeech() bool

	// StartUtt opens a new utterance.
	StartUtt() error

	// EndUtt closes the current utterance and makes its result available
	// through Hyp.
	EndUtt() error

	// Hyp returns the best hypothesis for the last closed utterance, or
	// nil when no speech was recognized. A nil result is a normal outcome,
	// not an error.
	Hyp() *hypothesis.Hypothesis

	// Release frees the engine handle and returns the remaining reference
	// count, which must be zero on the final release.
	Release() int
}
