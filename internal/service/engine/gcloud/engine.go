// Package gcloud provides a decode engine backed by Google Cloud
// Speech-to-Text streaming recognition.
//
// The engine contract expects a per-frame voice-activity flag, which the
// cloud API does not expose directly. Activity is inferred instead: the
// stream is considered in speech while interim results keep arriving, and
// goes quiet once a final result lands or no interim has been seen for the
// configured activity window. That approximation is good enough to drive
// the segmentation state machine at utterance granularity.
package gcloud

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "google.golang.org/genproto/googleapis/cloud/speech/v1"

	"github.com/rs/zerolog/log"

	"speech-decode-service/internal/audio"
	"speech-decode-service/internal/service/hypothesis"
)

// DefaultActivityWindow is how long after the last interim result audio
// still counts as speech.
const DefaultActivityWindow = 600 * time.Millisecond

// Options configure the streaming recognizer.
type Options struct {
	SampleRateHz   int
	LanguageCode   string
	ActivityWindow time.Duration
}

// Engine implements the decode engine contract over one Speech-to-Text
// client. Requires GOOGLE_APPLICATION_CREDENTIALS to be set.
type Engine struct {
	client *speech.Client
	ctx    context.Context
	opts   Options

	mu          sync.Mutex
	stream      speechpb.Speech_StreamingRecognizeClient
	lastInterim time.Time
	final       *hypothesis.Hypothesis

	wg sync.WaitGroup
}

// New creates the client. A failed construction here is fatal for the
// decoder instance being built, per the construction-failure policy.
func New(ctx context.Context, opts Options) (*Engine, error) {
	c, err := speech.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	if opts.SampleRateHz == 0 {
		opts.SampleRateHz = 16000
	}
	if opts.LanguageCode == "" {
		opts.LanguageCode = "en-US"
	}
	if opts.ActivityWindow == 0 {
		opts.ActivityWindow = DefaultActivityWindow
	}
	return &Engine{client: c, ctx: ctx, opts: opts}, nil
}

// StartUtt opens a fresh streaming recognition session and sends the
// initial config message.
func (e *Engine) StartUtt() error {
	stream, err := e.client.StreamingRecognize(e.ctx)
	if err != nil {
		return err
	}

	err = stream.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_StreamingConfig{
			StreamingConfig: &speechpb.StreamingRecognitionConfig{
				Config: &speechpb.RecognitionConfig{
					Encoding:        speechpb.RecognitionConfig_LINEAR16,
					SampleRateHertz: int32(e.opts.SampleRateHz),
					LanguageCode:    e.opts.LanguageCode,
				},
				InterimResults: true,
			},
		},
	})
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.stream = stream
	e.lastInterim = time.Time{}
	e.final = nil
	e.mu.Unlock()

	e.wg.Add(1)
	go e.listen(stream)
	return nil
}

// ProcessRaw sends the samples as LINEAR16 audio content.
func (e *Engine) ProcessRaw(samples []int16) (int, error) {
	e.mu.Lock()
	stream := e.stream
	e.mu.Unlock()
	if stream == nil {
		return 0, nil
	}

	err := stream.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_AudioContent{
			AudioContent: audio.SamplesToBytes(samples),
		},
	})
	if err != nil {
		return 0, err
	}
	return len(samples), nil
}

// InSpeech reports whether an interim result arrived within the activity
// window.
func (e *Engine) InSpeech() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.lastInterim.IsZero() {
		return false
	}
	return time.Since(e.lastInterim) < e.opts.ActivityWindow
}

// EndUtt closes the audio side of the stream and waits for the recognizer
// to drain its remaining results.
func (e *Engine) EndUtt() error {
	e.mu.Lock()
	stream := e.stream
	e.stream = nil
	e.mu.Unlock()
	if stream == nil {
		return nil
	}

	err := stream.CloseSend()
	e.wg.Wait()
	return err
}

// Hyp returns the accumulated final result of the last closed utterance.
func (e *Engine) Hyp() *hypothesis.Hypothesis {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.final
}

// Release closes the client. The cloud client holds the only reference, so
// the remaining count is always zero after a successful close.
func (e *Engine) Release() int {
	if err := e.client.Close(); err != nil {
		log.Error().Err(err).Msg("Closing speech client failed")
	}
	return 0
}

// listen consumes recognition responses until the stream ends. Interim
// results refresh the activity clock; final results fold into the utterance
// hypothesis. Confidence is kept as an integer score in thousandths.
func (e *Engine) listen(stream speechpb.Speech_StreamingRecognizeClient) {
	defer e.wg.Done()

	for {
		resp, err := stream.Recv()
		if err != nil {
			if err != io.EOF {
				log.Debug().Err(err).Msg("Recognition stream ended")
			}
			return
		}

		for _, r := range resp.Results {
			if len(r.Alternatives) == 0 {
				continue
			}
			alt := r.Alternatives[0]

			e.mu.Lock()
			if r.IsFinal {
				e.final = hypothesis.Combine(e.final, &hypothesis.Hypothesis{
					Text:  strings.TrimSpace(alt.Transcript),
					Score: int64(alt.Confidence * 1000),
				})
				// A final result ends the voiced stretch.
				e.lastInterim = time.Time{}
			} else {
				e.lastInterim = time.Now()
			}
			e.mu.Unlock()
		}
	}
}
