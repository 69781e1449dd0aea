// Package segmentation provides the speech/silence state machine that
// delimits decoder utterances from the engine's voice-activity signal.
package segmentation

import "fmt"

// State represents the segmentation state of the audio stream.
type State int

const (
	// StateSilence - No voice activity, decoder utterance idle.
	StateSilence State = iota
	// StateSpeech - Voice activity ongoing inside the current utterance.
	StateSpeech
	// StateUtterance - Speech just ended. One-shot signal: the decoder
	// utterance must be closed and a fresh one opened to consume it.
	StateUtterance
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateSilence:
		return "SILENCE"
	case StateSpeech:
		return "SPEECH"
	case StateUtterance:
		return "UTTERANCE"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", s)
	}
}

// Transition maps the current state and the engine's voice-activity flag
// to the next state. Pure function, no side effects.
//
// Only these combinations produce a change:
//
//	SILENCE   + active   → SPEECH
//	SPEECH    + inactive → UTTERANCE
//	UTTERANCE + inactive → SILENCE
//
// Everything else is a no-op. UTTERANCE must be consumed by closing the
// decoder utterance and immediately reopening a fresh one; otherwise the
// machine gets stuck and consecutive speech segments are never re-detected.
// The transition has to be evaluated once per ingested batch, right after
// ingestion, because the activity flag reflects engine state at that point.
func Transition(current State, voiceActive bool) State {
	switch {
	case current == StateSilence && voiceActive:
		return StateSpeech
	case current == StateSpeech && !voiceActive:
		return StateUtterance
	case current == StateUtterance && !voiceActive:
		return StateSilence
	default:
		return current
	}
}
