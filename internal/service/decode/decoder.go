package decode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"speech-decode-service/internal/audio"
	"speech-decode-service/internal/events"
	"speech-decode-service/internal/models"
	"speech-decode-service/internal/observability/metrics"
	"speech-decode-service/internal/service/engine"
	"speech-decode-service/internal/service/hypothesis"
	"speech-decode-service/internal/service/segmentation"
)

// DefaultChunkBytes is the file-mode read size when none is configured.
// The engine's frame unit is 2 bytes per sample, so this is 2048 samples.
const DefaultChunkBytes = 4096

// Decode lifecycle modes.
const (
	ModeFile = "file"
	ModeLive = "live"
)

type mode int

const (
	modeIdle mode = iota
	modeFile
	modeLive
)

// Errors for lifecycle misuse.
var (
	ErrBusy = errors.New("decoder already has an active decode lifecycle")
)

// decodeSeq numbers decode lifecycles across the process.
var decodeSeq uint64

func nextDecodeID() string {
	return fmt.Sprintf("decode-%d", atomic.AddUint64(&decodeSeq, 1))
}

// Decoder orchestrates decode lifecycles over one exclusively owned engine
// session. One lifecycle (file OR live) may be active at a time; running
// both on the same Decoder is a programming error, rejected with ErrBusy.
//
// All engine calls are serialized behind a single mutex: the engine handle
// is not safe for concurrent mutation, and live-mode buffers physically
// arrive on the capture goroutine while start/stop come from the caller's.
type Decoder struct {
	sess       *engine.Session
	utt        *UtteranceSession
	publisher  *events.Publisher
	metrics    *metrics.Metrics
	chunkBytes int

	mu       sync.Mutex // serializes engine access and guards mode
	mode     mode
	src      audio.Source
	decodeID string
	uttIndex int

	dispatch *dispatcher
}

// New creates a decoder that takes over the caller's session ownership.
// publisher may be a disabled (log-only) publisher.
func New(sess *engine.Session, publisher *events.Publisher, chunkBytes int) *Decoder {
	if chunkBytes <= 0 {
		chunkBytes = DefaultChunkBytes
	}
	m := metrics.DefaultMetrics
	return &Decoder{
		sess:       sess,
		utt:        NewUtteranceSession(sess),
		publisher:  publisher,
		metrics:    m,
		chunkBytes: chunkBytes,
		dispatch:   newDispatcher(m),
	}
}

// DecodeFile decodes the raw PCM file at path off the caller's goroutine.
// onComplete is invoked exactly once, on the callback context, with the
// hypothesis accumulated across every utterance in the file - nil when
// nothing was recognized or the file could not be opened.
func (d *Decoder) DecodeFile(path string, onComplete func(*hypothesis.Hypothesis)) error {
	d.mu.Lock()
	if d.mode != modeIdle {
		d.mu.Unlock()
		return ErrBusy
	}
	d.mode = modeFile
	d.decodeID = nextDecodeID()
	d.uttIndex = 0
	d.mu.Unlock()

	d.metrics.RecordDecodeStart(ModeFile)

	go func() {
		start := time.Now()
		hyp := d.decodeFile(path)
		d.metrics.RecordDecodeEnd(time.Since(start).Seconds())

		d.mu.Lock()
		id := d.decodeID
		utts := d.uttIndex
		d.mode = modeIdle
		d.mu.Unlock()

		d.publishFinal(id, utts, hyp)
		d.dispatch.postWait(func() { onComplete(hyp) })
	}()
	return nil
}

// decodeFile runs the synchronous read/ingest/finalize loop under the
// engine mutex.
func (d *Decoder) decodeFile(path string) *hypothesis.Hypothesis {
	f, err := os.Open(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Open audio file failed")
		return nil
	}
	defer f.Close()

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.sess.StartUtt(); err != nil {
		log.Warn().Err(err).Msg("Start utterance failed")
		d.metrics.RecordEngineError("start_utt")
	}

	var acc *hypothesis.Hypothesis
	buf := make([]byte, d.chunkBytes)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			d.ingest(audio.BytesToSamples(buf[:n]))
			acc = hypothesis.Combine(acc, d.boundary(ModeFile))
		}
		if err != nil {
			if err != io.EOF {
				// A mid-stream read error ends the stream early; what was
				// already recognized still counts.
				log.Error().Err(err).Str("path", path).Msg("Read audio file failed")
			}
			break
		}
	}

	if hyp := d.utt.Flush(); hyp != nil {
		d.metrics.RecordHypothesis(ModeFile, false)
		acc = hypothesis.Combine(acc, hyp)
	}
	return acc
}

// StartLive begins continuous decoding from src. Each completed utterance
// is delivered to onUtterance on the callback context; delivery never
// blocks the capture goroutine. The capture source is started before the
// engine utterance so a setup failure leaves the engine untouched.
func (d *Decoder) StartLive(src audio.Source, onUtterance func(*hypothesis.Hypothesis)) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.mode != modeIdle {
		return ErrBusy
	}

	if err := src.Start(func(samples []int16) { d.onCaptureBuffer(samples, onUtterance) }); err != nil {
		log.Error().Err(err).Msg("Audio capture setup failed")
		return err
	}

	if err := d.sess.StartUtt(); err != nil {
		log.Warn().Err(err).Msg("Start utterance failed")
		d.metrics.RecordEngineError("start_utt")
	}

	d.src = src
	d.mode = modeLive
	d.decodeID = nextDecodeID()
	d.uttIndex = 0
	d.metrics.RecordDecodeStart(ModeLive)
	log.Info().Str("decodeId", d.decodeID).Msg("Live decoding started")
	return nil
}

// onCaptureBuffer runs on the capture goroutine for every delivered buffer.
func (d *Decoder) onCaptureBuffer(samples []int16, onUtterance func(*hypothesis.Hypothesis)) {
	d.mu.Lock()
	if d.mode != modeLive {
		// Capture already stopped; late buffer is dropped by design.
		d.mu.Unlock()
		return
	}
	d.ingest(samples)
	hyp := d.boundary(ModeLive)
	id := d.decodeID
	idx := d.uttIndex
	d.mu.Unlock()

	if hyp == nil {
		return
	}
	d.dispatch.post(func() { onUtterance(hyp) })
	d.publishUtterance(id, ModeLive, idx, hyp)
}

// StopLive halts live decoding. The capture source is stopped first; the
// decode session keeps whatever utterance state it had - an in-progress
// utterance is intentionally dropped without a final flush.
func (d *Decoder) StopLive() {
	d.mu.Lock()
	if d.mode != modeLive {
		d.mu.Unlock()
		return
	}
	src := d.src
	d.mu.Unlock()

	// Stop outside the lock: in-flight capture callbacks need the mutex
	// to drain before Stop returns.
	src.Stop()

	d.mu.Lock()
	d.src = nil
	d.mode = modeIdle
	id := d.decodeID
	d.mu.Unlock()

	d.metrics.RecordDecodeEnd(0)
	log.Info().Str("decodeId", id).Msg("Live decoding stopped")
}

// Close releases the decoder: any live capture is stopped, pending
// callbacks drain, and the engine session is closed exactly once. A handle
// leak reported by the session propagates to the caller.
func (d *Decoder) Close() error {
	d.StopLive()
	d.dispatch.close()

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sess.Close()
}

// ingest feeds one buffer through the utterance session. Caller holds d.mu.
func (d *Decoder) ingest(samples []int16) {
	frames, err := d.utt.Ingest(samples)
	if err != nil {
		log.Warn().Err(err).Msg("Engine ingestion failed")
		d.metrics.RecordEngineError("process_raw")
		return
	}
	d.metrics.RecordAudioIngested(len(samples)*2, frames)
}

// boundary consumes an utterance boundary if one is pending. Caller holds
// d.mu.
func (d *Decoder) boundary(mode string) *hypothesis.Hypothesis {
	if d.utt.State() != segmentation.StateUtterance {
		return nil
	}
	hyp := d.utt.FinalizeBoundary()
	d.uttIndex++
	d.metrics.RecordUtterance()
	if hyp == nil {
		d.metrics.RecordHypothesis(mode, true)
		return nil
	}
	d.metrics.RecordHypothesis(mode, false)
	return hyp
}

func (d *Decoder) publishUtterance(id, mode string, idx int, hyp *hypothesis.Hypothesis) {
	if d.publisher == nil {
		return
	}
	ev := models.HypothesisUtterance{
		EventType:      "decode.hypothesis.utterance",
		DecodeID:       id,
		Mode:           mode,
		UtteranceIndex: idx,
		Text:           hyp.Text,
		Score:          hyp.Score,
		Timestamp:      time.Now().UnixMilli(),
	}
	d.dispatch.post(func() {
		if err := d.publisher.PublishUtterance(context.Background(), id, ev); err != nil {
			log.Error().Err(err).Str("decodeId", id).Msg("Failed to publish utterance hypothesis")
		}
	})
}

func (d *Decoder) publishFinal(id string, utts int, hyp *hypothesis.Hypothesis) {
	if d.publisher == nil || hyp == nil {
		return
	}
	ev := models.HypothesisFinal{
		EventType:  "decode.hypothesis.final",
		DecodeID:   id,
		Text:       hyp.Text,
		Score:      hyp.Score,
		Utterances: utts,
		Timestamp:  time.Now().UnixMilli(),
	}
	d.dispatch.postWait(func() {
		if err := d.publisher.PublishFinal(context.Background(), id, ev); err != nil {
			log.Error().Err(err).Str("decodeId", id).Msg("Failed to publish final hypothesis")
		}
	})
}
