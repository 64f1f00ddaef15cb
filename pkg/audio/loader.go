package audio

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
)

const targetSampleRate = 16000

// Loader decodes audio files into normalized 16 kHz mono waveforms. Anything
// that is not already 16 kHz mono WAV is converted first by shelling out to
// ffmpeg.
type Loader struct {
	TempDir string
}

func NewLoader(tempDir string) *Loader {
	return &Loader{TempDir: tempDir}
}

func (l *Loader) Load(ctx context.Context, path string) (*Waveform, error) {
	if strings.EqualFold(filepath.Ext(path), ".wav") {
		w, err := decodeWAV(path)
		if err != nil {
			return nil, err
		}
		if w.SampleRate == targetSampleRate {
			return w, nil
		}
		// Wrong rate or layout, let ffmpeg resample.
	}

	converted, err := l.convertToWAV(ctx, path)
	if err != nil {
		return nil, err
	}
	defer os.Remove(converted)

	return decodeWAV(converted)
}

func (l *Loader) convertToWAV(ctx context.Context, path string) (string, error) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return "", fmt.Errorf("looking for `ffmpeg`: %w", err)
	}

	tempDir := l.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return "", fmt.Errorf("creating temp directory: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	out := filepath.Join(tempDir, base+"_16k.wav")

	slog.Info("Converting audio with ffmpeg", "inputPath", path, "outputPath", out)

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-y", "-i", path,
		"-ac", "1", "-ar", fmt.Sprint(targetSampleRate),
		"-f", "wav",
		out,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("running `ffmpeg`: %w: %s", err, output)
	}

	return out, nil
}

func decodeWAV(path string) (*Waveform, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening audio file: %w", err)
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return nil, fmt.Errorf("decoding %s: not a valid WAV file", filepath.Base(path))
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("reading PCM data: %w", err)
	}
	if buf == nil || len(buf.Data) == 0 {
		return nil, fmt.Errorf("decoding %s: empty PCM payload", filepath.Base(path))
	}

	bitDepth := int(d.BitDepth)
	if bitDepth == 0 {
		bitDepth = buf.SourceBitDepth
	}
	if bitDepth == 0 {
		bitDepth = 16
	}
	scale := float64(int64(1) << (bitDepth - 1))

	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}

	// Downmix interleaved channels to mono while normalizing.
	frames := len(buf.Data) / channels
	samples := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += float64(buf.Data[i*channels+c]) / scale
		}
		samples[i] = sum / float64(channels)
	}

	return &Waveform{Samples: samples, SampleRate: buf.Format.SampleRate}, nil
}
