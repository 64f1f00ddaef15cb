package audio

import (
	"math"
	"sort"
)

const (
	// noiseGateGain is applied to windows whose energy sits near the noise floor.
	noiseGateGain = 0.1

	// noiseFloorMargin scales the estimated floor before gating.
	noiseFloorMargin = 2.0
)

// ReduceNoise returns a copy of the waveform with a DC offset removed and a
// noise gate applied. The noise floor is estimated from the quietest decile of
// analysis windows; windows that do not rise meaningfully above it are
// attenuated rather than zeroed so residual speech onset is not chopped.
func ReduceNoise(w *Waveform) *Waveform {
	out := &Waveform{
		Samples:    make([]float64, len(w.Samples)),
		SampleRate: w.SampleRate,
	}
	if len(w.Samples) == 0 {
		return out
	}

	// DC offset removal.
	var mean float64
	for _, s := range w.Samples {
		mean += s
	}
	mean /= float64(len(w.Samples))
	for i, s := range w.Samples {
		out.Samples[i] = s - mean
	}

	floor := noiseFloor(out)
	if floor == 0 {
		return out
	}
	gate := floor * noiseFloorMargin

	for start := 0; start < len(out.Samples); start += analysisWindow {
		end := start + analysisWindow
		if end > len(out.Samples) {
			end = len(out.Samples)
		}
		var sum float64
		for _, s := range out.Samples[start:end] {
			sum += s * s
		}
		rms := math.Sqrt(sum / float64(end-start))
		if rms < gate {
			for i := start; i < end; i++ {
				out.Samples[i] *= noiseGateGain
			}
		}
	}

	return out
}

// noiseFloor estimates the background level as the mean RMS of the quietest
// 10% of windows.
func noiseFloor(w *Waveform) float64 {
	energies := w.windowRMS()
	if len(energies) == 0 {
		return 0
	}
	sort.Float64s(energies)
	n := len(energies) / 10
	if n == 0 {
		n = 1
	}
	var sum float64
	for _, e := range energies[:n] {
		sum += e
	}
	return sum / float64(n)
}
