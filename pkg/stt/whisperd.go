package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/medscribe/medscribe/pkg/audio"
	"github.com/medscribe/medscribe/pkg/domain"
)

type whisperdEngine struct {
	baseURL  string
	model    string
	language string
	prompt   string
	hc       *http.Client
}

// NewWhisperdEngine transcribes through a self-hosted whisper HTTP service
// exposing the common /asr endpoint. The model is whatever checkpoint the
// server was started with; it is recorded for bookkeeping only.
func NewWhisperdEngine(baseURL, model, language, prompt string) (*whisperdEngine, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base URL is empty")
	}
	return &whisperdEngine{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		model:    model,
		language: language,
		prompt:   prompt,
		hc:       &http.Client{Timeout: 10 * time.Minute},
	}, nil
}

func (e *whisperdEngine) Model() string { return "whisper/" + e.model }

type whisperdResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Segments []struct {
		ID         int     `json:"id"`
		Start      float64 `json:"start"`
		End        float64 `json:"end"`
		Text       string  `json:"text"`
		AvgLogprob float64 `json:"avg_logprob"`
	} `json:"segments"`
}

func (e *whisperdEngine) Transcribe(ctx context.Context, w *audio.Waveform, name string) (*domain.Transcript, error) {
	data, err := audio.EncodeWAV(w)
	if err != nil {
		return nil, fmt.Errorf("encoding waveform: %w", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("audio_file", wavName(name))
	if err != nil {
		return nil, fmt.Errorf("creating form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("writing audio data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart writer: %w", err)
	}

	requestURL := fmt.Sprintf("%s/asr?encode=true&task=transcribe&language=%s&output=json&initial_prompt=%s",
		e.baseURL, url.QueryEscape(e.language), url.QueryEscape(e.prompt))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, &body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	start := time.Now()
	resp, err := e.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("whisper service returned status %d: %s", resp.StatusCode, responseBody)
	}
	processingTime := time.Since(start).Seconds()

	var wr whisperdResponse
	if err := json.Unmarshal(responseBody, &wr); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	language := wr.Language
	if language == "" {
		language = e.language
	}

	t := &domain.Transcript{
		Model:          e.Model(),
		Language:       language,
		Text:           strings.TrimSpace(wr.Text),
		ProcessingTime: processingTime,
		AudioDuration:  w.Duration(),
		CreatedAt:      time.Now(),
	}
	for _, seg := range wr.Segments {
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
