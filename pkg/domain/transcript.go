package domain

import "time"

// Segment is a timed slice of a transcript as returned by the STT engine.
type Segment struct {
	ID         int     `json:"id"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Text       string  `json:"text"`
	AvgLogprob float64 `json:"avg_logprob"`
	Speaker    string  `json:"speaker,omitempty"`
}

type Transcript struct {
	ID             int64     `json:"id"`
	AudioFile      string    `json:"audio_file"`
	Model          string    `json:"model"`
	Language       string    `json:"language"`
	Text           string    `json:"text"`
	Segments       []Segment `json:"segments,omitempty"`
	ProcessingTime float64   `json:"processing_time"`
	AudioDuration  float64   `json:"audio_duration"`
	RTF            float64   `json:"rtf"`
	NoiseReduction bool      `json:"noise_reduction"`
	CreatedAt      time.Time `json:"created_at"`
}

// Empty reports whether the engine produced no usable text. Empty transcripts
// are still persisted, but summarization and diarization are skipped.
func (t *Transcript) Empty() bool {
	for _, r := range t.Text {
		if r != ' ' && r != '\n' && r != '\t' && r != '\r' {
			return false
		}
	}
	return true
}
