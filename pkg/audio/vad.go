package audio

import "math"

// vadPaddingWindows keeps some context around voiced regions so word
// boundaries survive the trim.
const vadPaddingWindows = 4

// TrimSilence drops unvoiced stretches from the waveform using a windowed
// energy threshold. Windows within vadPaddingWindows of a voiced window are
// kept. Returns the original waveform when nothing qualifies as speech, so a
// fully silent input still reaches the silence gate downstream.
func TrimSilence(w *Waveform, threshold float64) *Waveform {
	if len(w.Samples) == 0 {
		return w
	}

	energies := w.windowRMS()
	voiced := make([]bool, len(energies))
	any := false
	for i, e := range energies {
		if e >= threshold {
			voiced[i] = true
			any = true
		}
	}
	if !any {
		return w
	}

	keep := make([]bool, len(energies))
	for i := range energies {
		if !voiced[i] {
			continue
		}
		lo := i - vadPaddingWindows
		hi := i + vadPaddingWindows
		if lo < 0 {
			lo = 0
		}
		if hi >= len(energies) {
			hi = len(energies) - 1
		}
		for j := lo; j <= hi; j++ {
			keep[j] = true
		}
	}

	out := &Waveform{SampleRate: w.SampleRate}
	for i, k := range keep {
		if !k {
			continue
		}
		start := i * analysisWindow
		end := int(math.Min(float64(start+analysisWindow), float64(len(w.Samples))))
		if start >= len(w.Samples) {
			break
		}
		out.Samples = append(out.Samples, w.Samples[start:end]...)
	}
	return out
}
