// Package decode implements the utterance lifecycle and the stream
// orchestrator that drive a decode engine over file and live audio.
package decode

import (
	"github.com/rs/zerolog/log"

	"speech-decode-service/internal/service/engine"
	"speech-decode-service/internal/service/hypothesis"
	"speech-decode-service/internal/service/segmentation"
)

// UtteranceSession tracks segmentation state for one decode session and
// manages the engine utterance lifecycle at speech boundaries. Not safe for
// concurrent use; the orchestrator serializes access.
type UtteranceSession struct {
	sess  *engine.Session
	state segmentation.State
}

// NewUtteranceSession creates a session starting in silence.
func NewUtteranceSession(sess *engine.Session) *UtteranceSession {
	return &UtteranceSession{sess: sess, state: segmentation.StateSilence}
}

// State returns the current segmentation state.
func (u *UtteranceSession) State() segmentation.State {
	return u.state
}

// Ingest forwards samples to the engine, queries voice activity and applies
// the segmentation transition. The transition runs here, synchronously with
// the activity query, because the flag reflects engine state immediately
// after ingestion. The returned frame count is diagnostic only.
func (u *UtteranceSession) Ingest(samples []int16) (int, error) {
	frames, err := u.sess.ProcessRaw(samples)
	if err != nil {
		return frames, err
	}
	u.state = segmentation.Transition(u.state, u.sess.InSpeech())
	return frames, nil
}

// FinalizeBoundary consumes an utterance boundary: when the state machine
// signals that speech just ended, the engine utterance is closed, its
// hypothesis retrieved, and a fresh utterance opened. In any other state it
// returns nil with no side effects.
//
// Boundary start/end failures are logged and decoding continues; they are
// never fatal mid-stream. A nil hypothesis means no speech was recognized
// and is a normal outcome.
func (u *UtteranceSession) FinalizeBoundary() *hypothesis.Hypothesis {
	if u.state != segmentation.StateUtterance {
		return nil
	}

	if err := u.sess.EndUtt(); err != nil {
		log.Warn().Err(err).Msg("End utterance failed at speech boundary")
	}
	hyp := u.sess.Hyp()
	if err := u.sess.StartUtt(); err != nil {
		log.Warn().Err(err).Msg("Restart utterance failed at speech boundary")
	}
	return hyp
}

// Flush handles end-of-stream: the engine utterance is closed
// unconditionally, covering any engine-buffered partial result, and a
// hypothesis is returned when speech was still ongoing and never reached an
// utterance boundary. The check runs after the forced close because ending
// mid-speech can surface a result that did not exist before.
func (u *UtteranceSession) Flush() *hypothesis.Hypothesis {
	if err := u.sess.EndUtt(); err != nil {
		log.Warn().Err(err).Msg("End utterance failed at end of stream")
	}
	if u.state != segmentation.StateSpeech {
		return nil
	}
	return u.sess.Hyp()
}
