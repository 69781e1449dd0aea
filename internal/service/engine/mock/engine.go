// Package mock provides a scripted decode engine for tests and for running
// the service without acoustic models or cloud credentials. Voice activity
// either follows an explicit script (one flag per ProcessRaw call) or falls
// back to RMS energy detection, and hypotheses come from a queue or cycle
// through a set of canned utterances.
package mock

import (
	"math"
	"sync"

	"speech-decode-service/internal/service/hypothesis"
)

// Utterance is a canned recognition result.
type Utterance struct {
	Text  string
	Score int64
}

// DefaultUtterances are cycled through in energy-detection mode, one per
// utterance in which speech was observed.
var DefaultUtterances = []Utterance{
	{Text: "turn the lights on", Score: 1200},
	{Text: "what is the weather today", Score: 980},
	{Text: "set a timer for five minutes", Score: 1430},
	{Text: "stop the music", Score: 760},
}

// defaultSpeechThreshold is the normalized RMS level above which a buffer
// counts as voice in energy-detection mode.
const defaultSpeechThreshold = 0.01

// Engine implements the decode engine contract with deterministic, scripted
// behavior. It also records every lifecycle call so tests can assert on the
// exact engine interaction sequence.
type Engine struct {
	mu sync.Mutex

	// Scripted voice activity, consumed one entry per ProcessRaw call.
	// When exhausted the last value sticks. Empty script means energy mode.
	activity    []bool
	activityIdx int

	// Scripted hypothesis queue, popped on each EndUtt. Entries may be nil
	// (utterance closed with nothing recognized). Empty queue in energy
	// mode cycles DefaultUtterances instead.
	hyps   []*hypothesis.Hypothesis
	hypIdx int
	uttIdx int

	inSpeech  bool
	sawSpeech bool
	pending   *hypothesis.Hypothesis

	// Injectable failures and release behavior.
	StartErr    error
	EndErr      error
	ReleaseRefs int

	// Call recording.
	Starts   int
	Ends     int
	Releases int
	Ingested int
}

// New creates an engine in energy-detection mode with canned hypotheses.
func New() *Engine {
	return &Engine{}
}

// NewScripted creates an engine whose voice activity and hypotheses are
// fully determined by the given script and queue.
func NewScripted(activity []bool, hyps []*hypothesis.Hypothesis) *Engine {
	return &Engine{activity: activity, hyps: hyps}
}

// ProcessRaw consumes the next activity flag (or measures RMS energy) and
// returns the sample count as the processed frame count.
func (e *Engine) ProcessRaw(samples []int16) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var active bool
	if len(e.activity) > 0 {
		if e.activityIdx < len(e.activity) {
			active = e.activity[e.activityIdx]
			e.activityIdx++
		} else {
			active = e.activity[len(e.activity)-1]
		}
	} else {
		active = rms(samples) >= defaultSpeechThreshold
	}

	e.inSpeech = active
	if active {
		e.sawSpeech = true
	}
	e.Ingested += len(samples)
	return len(samples), nil
}

// InSpeech reports the activity flag set by the most recent ProcessRaw.
func (e *Engine) InSpeech() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inSpeech
}

// StartUtt opens a new utterance and clears per-utterance state.
func (e *Engine) StartUtt() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Starts++
	e.sawSpeech = false
	return e.StartErr
}

// EndUtt closes the current utterance and stages its hypothesis. The staged
// result is computed even when EndErr is injected, mirroring engines that
// report a boundary failure but still hold a usable result.
func (e *Engine) EndUtt() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Ends++

	if len(e.hyps) > 0 || len(e.activity) > 0 {
		if e.hypIdx < len(e.hyps) {
			e.pending = e.hyps[e.hypIdx]
			e.hypIdx++
		} else {
			e.pending = nil
		}
	} else if e.sawSpeech {
		u := DefaultUtterances[e.uttIdx%len(DefaultUtterances)]
		e.uttIdx++
		e.pending = &hypothesis.Hypothesis{Text: u.Text, Score: u.Score}
	} else {
		e.pending = nil
	}

	e.sawSpeech = false
	return e.EndErr
}

// Hyp returns the result staged by the last EndUtt.
func (e *Engine) Hyp() *hypothesis.Hypothesis {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending
}

// Release records the release and reports the configured remaining refcount.
func (e *Engine) Release() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Releases++
	return e.ReleaseRefs
}

// rms returns the normalized root mean square level of the samples.
func rms(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	var energy float64
	for _, s := range samples {
		energy += float64(s) * float64(s)
	}
	return math.Sqrt(energy/float64(len(samples))) / 32768.0
}
