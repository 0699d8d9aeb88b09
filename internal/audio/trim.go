package audio

import "math"

// Trim strips leading and trailing silence from samples and returns
// the enclosed sub-sequence as a new slice. The input is never
// mutated.
//
// thresholdDB is relative to full scale (0 dBFS = 32768), so values
// closer to zero raise the linear threshold and trim more audio. The
// sequence is partitioned into consecutive windows of windowSize
// samples; a window counts as audio when its RMS strictly exceeds the
// linear threshold. The result spans from the first qualifying window
// of a forward scan to the right boundary of the last qualifying
// window of a backward scan, or is empty when the whole sequence is
// silence.
//
// windowSize must be positive. That is a precondition on the caller,
// not a guarded check; production callers use WindowSize.
func Trim(samples []int16, thresholdDB float64, windowSize int) []int16 {
	n := len(samples)
	if n == 0 {
		return nil
	}

	thresholdRMS := math.Pow(10, thresholdDB/20) * FullScale

	// Forward scan over the window grid anchored at index 0. The final
	// window may be clipped short.
	start := n
	for i := 0; i < n; i += windowSize {
		end := min(i+windowSize, n)
		if RMS(samples[i:end]) > thresholdRMS {
			start = i
			break
		}
	}

	// Backward scan over candidate right boundaries n, n-w, n-2w, ...
	// examining the window ending at each boundary. The last boundary
	// tested is n mod w, whose window is clipped at index 0.
	end := 0
	for i := n; i >= 0; i -= windowSize {
		lo := max(i-windowSize, 0)
		if RMS(samples[lo:i]) > thresholdRMS {
			end = i
			break
		}
	}

	if start >= end {
		return nil
	}
	out := make([]int16, end-start)
	copy(out, samples[start:end])
	return out
}
