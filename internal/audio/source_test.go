package audio

import (
	"bytes"
	"encoding/binary"
	"math"
	"sync"
	"testing"
	"time"
)

func collectBuffers(t *testing.T, src *ReaderSource) [][]int16 {
	t.Helper()

	var mu sync.Mutex
	var got [][]int16
	done := make(chan struct{})

	err := src.Start(func(samples []int16) {
		mu.Lock()
		got = append(got, samples)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	// The pump exits on EOF; poll until it is done.
	go func() {
		src.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("capture goroutine did not finish")
	}

	mu.Lock()
	defer mu.Unlock()
	return got
}

func TestReaderSource_DeliversFixedSizeBuffers(t *testing.T) {
	// Six samples, buffer size two: three full buffers.
	raw := SamplesToBytes([]int16{1, 2, 3, 4, 5, 6})
	src := NewReaderSource(bytes.NewReader(raw), 2, FormatPCM16)

	got := collectBuffers(t, src)

	if len(got) != 3 {
		t.Fatalf("buffers = %d, want 3", len(got))
	}
	if got[0][0] != 1 || got[0][1] != 2 || got[2][1] != 6 {
		t.Errorf("unexpected buffer contents: %v", got)
	}
}

func TestReaderSource_PartialTrailingBuffer(t *testing.T) {
	// Three samples with buffer size two: one full and one short buffer.
	raw := SamplesToBytes([]int16{10, 20, 30})
	src := NewReaderSource(bytes.NewReader(raw), 2, FormatPCM16)

	got := collectBuffers(t, src)

	if len(got) != 2 {
		t.Fatalf("buffers = %d, want 2", len(got))
	}
	if len(got[1]) != 1 || got[1][0] != 30 {
		t.Errorf("trailing buffer = %v, want [30]", got[1])
	}
}

func TestReaderSource_Float32Input(t *testing.T) {
	var raw bytes.Buffer
	for _, f := range []float32{0, 1.0, float32(math.NaN()), -0.5} {
		binary.Write(&raw, binary.LittleEndian, f)
	}
	src := NewReaderSource(bytes.NewReader(raw.Bytes()), 4, FormatFloat32)

	got := collectBuffers(t, src)

	if len(got) != 1 {
		t.Fatalf("buffers = %d, want 1", len(got))
	}
	want := []int16{0, 32767, 0, -16383}
	for i := range want {
		if got[0][i] != want[i] {
			t.Errorf("sample %d: got %d, want %d", i, got[0][i], want[i])
		}
	}
}

func TestReaderSource_DoubleStart(t *testing.T) {
	src := NewReaderSource(bytes.NewReader(nil), 2, FormatPCM16)
	if err := src.Start(func([]int16) {}); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	if err := src.Start(func([]int16) {}); err != ErrSourceStarted {
		t.Errorf("second Start err = %v, want ErrSourceStarted", err)
	}
	src.Stop()
}

func TestReaderSource_StopIdempotent(t *testing.T) {
	src := NewReaderSource(bytes.NewReader(nil), 2, FormatPCM16)
	src.Start(func([]int16) {})
	src.Stop()
	src.Stop() // second stop is a no-op
}
