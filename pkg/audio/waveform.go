package audio

import "math"

const (
	// analysisWindow is the number of samples per analysis window at 16 kHz (~25 ms).
	analysisWindow = 400

	clippingLevel = 0.99
)

// Waveform is a normalized mono audio signal with samples in [-1, 1].
type Waveform struct {
	Samples    []float64
	SampleRate int
}

// Duration returns the signal length in seconds.
func (w *Waveform) Duration() float64 {
	if w.SampleRate <= 0 {
		return 0
	}
	return float64(len(w.Samples)) / float64(w.SampleRate)
}

// RMS returns the root-mean-square energy of the whole signal.
func (w *Waveform) RMS() float64 {
	if len(w.Samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range w.Samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(w.Samples)))
}

// SilenceRatio returns the fraction of analysis windows whose RMS energy is
// below threshold.
func (w *Waveform) SilenceRatio(threshold float64) float64 {
	energies := w.windowRMS()
	if len(energies) == 0 {
		return 0
	}
	silent := 0
	for _, e := range energies {
		if e < threshold {
			silent++
		}
	}
	return float64(silent) / float64(len(energies))
}

// ClippingRatio returns the fraction of samples at or beyond the clipping level.
func (w *Waveform) ClippingRatio() float64 {
	if len(w.Samples) == 0 {
		return 0
	}
	clipped := 0
	for _, s := range w.Samples {
		if math.Abs(s) > clippingLevel {
			clipped++
		}
	}
	return float64(clipped) / float64(len(w.Samples))
}

// windowRMS computes the RMS energy of consecutive analysis windows. The final
// partial window is included when it is at least half full.
func (w *Waveform) windowRMS() []float64 {
	var energies []float64
	for start := 0; start < len(w.Samples); start += analysisWindow {
		end := start + analysisWindow
		if end > len(w.Samples) {
			if len(w.Samples)-start < analysisWindow/2 {
				break
			}
			end = len(w.Samples)
		}
		var sum float64
		for _, s := range w.Samples[start:end] {
			sum += s * s
		}
		energies = append(energies, math.Sqrt(sum/float64(end-start)))
	}
	return energies
}
