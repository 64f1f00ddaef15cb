package stt

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/medscribe/medscribe/pkg/audio"
	"github.com/medscribe/medscribe/pkg/domain"
)

type openAIEngine struct {
	api      *openai.Client
	model    string
	language string
	prompt   string
}

// NewOpenAIEngine transcribes through the hosted OpenAI audio API. The
// gpt-4o-* transcription models do not support verbose_json, so for those the
// response carries no segment timings or duration.
func NewOpenAIEngine(token, model, language, prompt string) (*openAIEngine, error) {
	if token == "" {
		return nil, fmt.Errorf("token is empty")
	}
	return &openAIEngine{
		api:      openai.NewClient(token),
		model:    model,
		language: language,
		prompt:   prompt,
	}, nil
}

func (e *openAIEngine) Model() string { return "openai/" + e.model }

func (e *openAIEngine) Transcribe(ctx context.Context, w *audio.Waveform, name string) (*domain.Transcript, error) {
	data, err := audio.EncodeWAV(w)
	if err != nil {
		return nil, fmt.Errorf("encoding waveform: %w", err)
	}

	format := openai.AudioResponseFormatVerboseJSON
	if strings.HasPrefix(e.model, "gpt-4o") {
		format = openai.AudioResponseFormatJSON
	}

	req := openai.AudioRequest{
		Model:    e.model,
		FilePath: wavName(name),
		Reader:   bytes.NewReader(data),
		Language: e.language,
		Prompt:   e.prompt,
		Format:   format,
	}

	start := time.Now()
	resp, err := e.api.CreateTranscription(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("creating transcription: %w", err)
	}
	processingTime := time.Since(start).Seconds()

	duration := resp.Duration
	if duration <= 0 {
		duration = w.Duration()
	}

	t := &domain.Transcript{
		Model:          e.Model(),
		Language:       e.language,
		Text:           strings.TrimSpace(resp.Text),
		ProcessingTime: processingTime,
		AudioDuration:  duration,
		CreatedAt:      time.Now(),
	}
	for _, seg := range resp.Segments {
		t.Segments = append(t.Segments, domain.Segment{
			ID:         seg.ID,
			Start:      seg.Start,
			End:        seg.End,
			Text:       strings.TrimSpace(seg.Text),
			AvgLogprob: seg.AvgLogprob,
		})
	}

	return t, nil
}

// wavName swaps the extension so the upload filename matches the encoded payload.
func wavName(name string) string {
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		name = name[:i]
	}
	if name == "" {
		name = "audio"
	}
	return name + ".wav"
}
