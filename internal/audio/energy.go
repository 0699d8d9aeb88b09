// Package audio implements the silence-trimming core: RMS energy
// estimation over fixed windows of 16-bit PCM samples and boundary
// detection across a full sample sequence.
package audio

import "math"

const (
	// SampleRate is the only sample rate the trimmer processes.
	SampleRate = 16000

	// WindowSize is the RMS measurement window: 800 samples, 50ms at 16kHz.
	WindowSize = 800

	// FullScale is the 0 dBFS reference amplitude for 16-bit samples.
	FullScale = 32768.0
)

// RMS returns the root-mean-square amplitude of chunk. Samples are
// widened to float64 before squaring so full-scale values cannot
// overflow. An empty chunk has an RMS of exactly 0.
func RMS(chunk []int16) float64 {
	if len(chunk) == 0 {
		return 0
	}
	var sumSq float64
	for _, s := range chunk {
		f := float64(s)
		sumSq += f * f
	}
	return math.Sqrt(sumSq / float64(len(chunk)))
}
