package audio

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"sync"

	"github.com/rs/zerolog/log"
)

// Errors for source lifecycle misuse.
var (
	ErrSourceStarted = errors.New("capture source already started")
)

// Format identifies the raw sample encoding read by a ReaderSource.
type Format int

const (
	// FormatPCM16 - native little-endian 16-bit PCM.
	FormatPCM16 Format = iota
	// FormatFloat32 - little-endian IEEE 754 floats, normalized to [-1, 1].
	FormatFloat32
)

// Source delivers capture buffers on its own dedicated goroutine until
// stopped. Implementations guarantee that no onBuffer call is in flight
// once Stop returns.
type Source interface {
	// Start begins delivery. onBuffer is invoked from the capture
	// goroutine and should hand work off quickly; capture continuity
	// outranks consumer latency.
	Start(onBuffer func(samples []int16)) error

	// Stop halts delivery. Safe to call at any time after Start.
	Stop()
}

// ReaderSource pumps fixed-size sample buffers from an io.Reader, which
// makes any byte stream - stdin fed by arecord or sox, a socket, a test
// buffer - usable as a live capture tap.
type ReaderSource struct {
	r          io.Reader
	bufSamples int
	format     Format

	mu      sync.Mutex
	started bool
	stopped bool
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewReaderSource creates a source delivering bufSamples samples per buffer.
func NewReaderSource(r io.Reader, bufSamples int, format Format) *ReaderSource {
	if bufSamples <= 0 {
		bufSamples = 1600
	}
	return &ReaderSource{r: r, bufSamples: bufSamples, format: format}
}

// Start spawns the capture goroutine.
func (s *ReaderSource) Start(onBuffer func(samples []int16)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrSourceStarted
	}
	s.started = true
	s.done = make(chan struct{})

	s.wg.Add(1)
	go s.pump(onBuffer)
	return nil
}

// Stop halts the capture goroutine and waits for it to exit. If the reader
// is closable it is closed to unblock a pending read.
func (s *ReaderSource) Stop() {
	s.mu.Lock()
	if !s.started || s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	close(s.done)
	s.mu.Unlock()

	if c, ok := s.r.(io.Closer); ok {
		if err := c.Close(); err != nil {
			log.Debug().Err(err).Msg("Closing capture reader failed")
		}
	}
	s.wg.Wait()
}

func (s *ReaderSource) pump(onBuffer func(samples []int16)) {
	defer s.wg.Done()

	bytesPerSample := 2
	if s.format == FormatFloat32 {
		bytesPerSample = 4
	}
	buf := make([]byte, s.bufSamples*bytesPerSample)

	for {
		select {
		case <-s.done:
			return
		default:
		}

		n, err := io.ReadFull(s.r, buf)
		if n > 0 {
			if samples := s.decode(buf[:n]); len(samples) > 0 {
				onBuffer(samples)
			}
		}
		if err != nil {
			if err != io.EOF && err != io.ErrUnexpectedEOF && !errors.Is(err, io.ErrClosedPipe) {
				log.Warn().Err(err).Msg("Capture read failed")
			}
			return
		}
	}
}

func (s *ReaderSource) decode(raw []byte) []int16 {
	if s.format == FormatPCM16 {
		return BytesToSamples(raw)
	}

	count := len(raw) / 4
	floats := make([]float32, count)
	for i := 0; i < count; i++ {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
	}
	return Float32ToPCM16(floats, count)
}
