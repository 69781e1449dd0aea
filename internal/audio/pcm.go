// Package audio provides PCM sample conversion and the capture sources that
// feed the decode orchestrator.
package audio

import "math"

// BytesToSamples reinterprets little-endian 16-bit PCM bytes as samples.
// The engine's frame unit is one sample (2 bytes), so a chunk of N bytes
// yields N/2 samples. An odd trailing byte is dropped.
func BytesToSamples(raw []byte) []int16 {
	n := len(raw) / 2
	samples := make([]int16, n)
	for i := 0; i < n; i++ {
		samples[i] = int16(raw[2*i]) | int16(raw[2*i+1])<<8
	}
	return samples
}

// SamplesToBytes encodes samples as little-endian 16-bit PCM bytes.
func SamplesToBytes(samples []int16) []byte {
	raw := make([]byte, len(samples)*2)
	for i, s := range samples {
		raw[2*i] = byte(s)
		raw[2*i+1] = byte(uint16(s) >> 8)
	}
	return raw
}

// Float32ToPCM16 converts normalized floating-point samples to 16-bit PCM.
// Each value is scaled by the maximum 16-bit magnitude; non-finite values
// map to 0 and finite out-of-range values clamp to the int16 bounds, so
// invalid input never propagates into the decoder. Exactly min(count,
// len(src)) samples are read: the count is explicit and iteration never
// runs past it, whatever the underlying buffer layout.
func Float32ToPCM16(src []float32, count int) []int16 {
	if count < 0 {
		count = 0
	}
	if count > len(src) {
		count = len(src)
	}

	out := make([]int16, count)
	for i := 0; i < count; i++ {
		v := float64(src[i])
		if math.IsNaN(v) || math.IsInf(v, 0) {
			out[i] = 0
			continue
		}
		v *= math.MaxInt16
		if v > math.MaxInt16 {
			v = math.MaxInt16
		} else if v < math.MinInt16 {
			v = math.MinInt16
		}
		out[i] = int16(v)
	}
	return out
}
