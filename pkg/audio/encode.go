package audio

import (
	"fmt"
	"io"
	"math"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/orcaman/writerseeker"
)

// EncodeWAV renders a waveform to an in-memory 16-bit PCM RIFF/WAV, ready for
// upload to an STT service.
func EncodeWAV(w *Waveform) ([]byte, error) {
	if len(w.Samples) == 0 {
		return nil, fmt.Errorf("encoding WAV: empty waveform")
	}

	buf := &gaudio.IntBuffer{
		Format:         &gaudio.Format{NumChannels: 1, SampleRate: w.SampleRate},
		SourceBitDepth: 16,
		Data:           make([]int, len(w.Samples)),
	}
	for i, s := range w.Samples {
		v := math.Round(s * 32767)
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		buf.Data[i] = int(v)
	}

	wavFile := &writerseeker.WriterSeeker{}
	encoder := wav.NewEncoder(wavFile, w.SampleRate, 16, 1, 1)

	if err := encoder.Write(buf); err != nil {
		return nil, fmt.Errorf("encoder write buffer: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("encoder close: %w", err)
	}

	data, err := io.ReadAll(wavFile.Reader())
	if err != nil {
		return nil, fmt.Errorf("reading wav into memory: %w", err)
	}

	return data, nil
}
