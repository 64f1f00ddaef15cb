package audio

import (
	"math"
	"testing"
)

func sine(freq float64, amplitude float64, seconds float64) *Waveform {
	n := int(seconds * targetSampleRate)
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/targetSampleRate)
	}
	return &Waveform{Samples: samples, SampleRate: targetSampleRate}
}

func silence(seconds float64) *Waveform {
	return &Waveform{
		Samples:    make([]float64, int(seconds*targetSampleRate)),
		SampleRate: targetSampleRate,
	}
}

func TestDuration(t *testing.T) {
	tests := []struct {
		name string
		w    *Waveform
		want float64
	}{
		{"two seconds", sine(440, 0.5, 2), 2},
		{"empty", &Waveform{SampleRate: targetSampleRate}, 0},
		{"no sample rate", &Waveform{Samples: make([]float64, 100)}, 0},
	}

	for _, test := range tests {
		if got := test.w.Duration(); math.Abs(got-test.want) > 1e-9 {
			t.Errorf("%s: Duration() = %v, want %v", test.name, got, test.want)
		}
	}
}

func TestRMS(t *testing.T) {
	// RMS of a sine wave is amplitude / sqrt(2).
	w := sine(440, 0.8, 1)
	want := 0.8 / math.Sqrt2
	if got := w.RMS(); math.Abs(got-want) > 0.01 {
		t.Errorf("RMS() = %v, want ~%v", got, want)
	}

	if got := silence(1).RMS(); got != 0 {
		t.Errorf("RMS() of silence = %v, want 0", got)
	}
}

func TestSilenceRatio(t *testing.T) {
	half := &Waveform{SampleRate: targetSampleRate}
	half.Samples = append(half.Samples, sine(440, 0.5, 1).Samples...)
	half.Samples = append(half.Samples, silence(1).Samples...)

	got := half.SilenceRatio(0.01)
	if got < 0.4 || got > 0.6 {
		t.Errorf("SilenceRatio() = %v, want ~0.5", got)
	}

	if got := sine(440, 0.5, 1).SilenceRatio(0.01); got != 0 {
		t.Errorf("SilenceRatio() of tone = %v, want 0", got)
	}
}

func TestClippingRatio(t *testing.T) {
	clipped := sine(440, 1.0, 1)
	if got := clipped.ClippingRatio(); got == 0 {
		t.Error("ClippingRatio() of full-scale tone = 0, want > 0")
	}

	clean := sine(440, 0.5, 1)
	if got := clean.ClippingRatio(); got != 0 {
		t.Errorf("ClippingRatio() of half-scale tone = %v, want 0", got)
	}
}

func TestReduceNoise(t *testing.T) {
	// A tone burst surrounded by low-level noise: the quiet flanks should come
	// out attenuated, the burst intact.
	w := &Waveform{SampleRate: targetSampleRate}
	noise := sine(100, 0.002, 1)
	burst := sine(440, 0.5, 1)
	w.Samples = append(w.Samples, noise.Samples...)
	w.Samples = append(w.Samples, burst.Samples...)
	w.Samples = append(w.Samples, noise.Samples...)

	out := ReduceNoise(w)
	if len(out.Samples) != len(w.Samples) {
		t.Fatalf("ReduceNoise() changed length: %d != %d", len(out.Samples), len(w.Samples))
	}

	flank := &Waveform{Samples: out.Samples[:targetSampleRate], SampleRate: targetSampleRate}
	if flank.RMS() >= noise.RMS() {
		t.Errorf("noise flank RMS %v not reduced from %v", flank.RMS(), noise.RMS())
	}

	mid := &Waveform{Samples: out.Samples[targetSampleRate : 2*targetSampleRate], SampleRate: targetSampleRate}
	if mid.RMS() < 0.3 {
		t.Errorf("speech burst RMS %v got attenuated", mid.RMS())
	}
}

func TestReduceNoiseRemovesDCOffset(t *testing.T) {
	w := sine(440, 0.5, 1)
	for i := range w.Samples {
		w.Samples[i] += 0.1
	}

	out := ReduceNoise(w)
	var mean float64
	for _, s := range out.Samples {
		mean += s
	}
	mean /= float64(len(out.Samples))
	if math.Abs(mean) > 1e-6 {
		t.Errorf("mean after DC removal = %v, want ~0", mean)
	}
}

func TestTrimSilence(t *testing.T) {
	w := &Waveform{SampleRate: targetSampleRate}
	w.Samples = append(w.Samples, silence(2).Samples...)
	w.Samples = append(w.Samples, sine(440, 0.5, 1).Samples...)
	w.Samples = append(w.Samples, silence(2).Samples...)

	out := TrimSilence(w, 0.01)
	if out.Duration() >= w.Duration() {
		t.Errorf("TrimSilence() duration %v, want less than %v", out.Duration(), w.Duration())
	}
	if out.Duration() < 1 {
		t.Errorf("TrimSilence() duration %v, voiced second was dropped", out.Duration())
	}
}

func TestTrimSilenceAllSilent(t *testing.T) {
	w := silence(2)
	out := TrimSilence(w, 0.01)
	if len(out.Samples) != len(w.Samples) {
		t.Errorf("TrimSilence() on silence trimmed %d samples, want none", len(w.Samples)-len(out.Samples))
	}
}
