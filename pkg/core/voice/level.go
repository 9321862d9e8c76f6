package voice

import (
	"math"
	"time"
)

// Capture format used by the listener: 16-bit signed little-endian mono.
const (
	DefaultSampleRate = 16000
	bytesPerSample    = 2
)

// CalculateRMSEnergy computes the root-mean-square energy of 16-bit signed
// little-endian PCM on the raw sample scale (0..32768).
func CalculateRMSEnergy(pcm []byte) float64 {
	samples := len(pcm) / bytesPerSample
	if samples == 0 {
		return 0
	}

	var sum float64
	for i := 0; i+1 < len(pcm); i += bytesPerSample {
		sample := float64(int16(pcm[i]) | int16(pcm[i+1])<<8)
		sum += sample * sample
	}
	return math.Sqrt(sum / float64(samples))
}

// PCMDuration returns the playback length of n bytes of capture audio.
func PCMDuration(n, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	samples := n / bytesPerSample
	return time.Duration(samples) * time.Second / time.Duration(sampleRate)
}

// RingBuffer keeps the most recent audio so the start of a phrase that
// triggered detection is not lost.
type RingBuffer struct {
	data     []byte
	size     int
	writePos int
	filled   int
}

// NewRingBuffer creates a ring buffer holding d of audio at sampleRate.
func NewRingBuffer(d time.Duration, sampleRate int) *RingBuffer {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	size := int(d.Seconds()*float64(sampleRate)) * bytesPerSample
	if size < bytesPerSample {
		size = bytesPerSample
	}
	return &RingBuffer{data: make([]byte, size), size: size}
}

// Write adds data, overwriting the oldest bytes when full.
func (r *RingBuffer) Write(data []byte) {
	for _, b := range data {
		r.data[r.writePos] = b
		r.writePos = (r.writePos + 1) % r.size
		if r.filled < r.size {
			r.filled++
		}
	}
}

// Read returns the buffered audio in chronological order.
func (r *RingBuffer) Read() []byte {
	if r.filled < r.size {
		out := make([]byte, r.filled)
		copy(out, r.data[:r.filled])
		return out
	}
	out := make([]byte, r.size)
	n := copy(out, r.data[r.writePos:])
	copy(out[n:], r.data[:r.writePos])
	return out
}

// Clear resets the buffer.
func (r *RingBuffer) Clear() {
	r.writePos = 0
	r.filled = 0
}
