package stt

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/medscribe/medscribe/pkg/audio"
)

func testWaveform() *audio.Waveform {
	return &audio.Waveform{Samples: make([]float64, 16000), SampleRate: 16000}
}

func TestWhisperdTranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/asr") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("language"); got != "ko" {
			t.Errorf("language = %q, want ko", got)
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Errorf("parsing multipart form: %v", err)
		}
		if _, _, err := r.FormFile("audio_file"); err != nil {
			t.Errorf("audio_file part missing: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"text": " 어디가 불편하세요 ",
			"language": "ko",
			"segments": [
				{"id": 0, "start": 0.0, "end": 1.2, "text": "어디가", "avg_logprob": -0.3},
				{"id": 1, "start": 1.2, "end": 2.0, "text": "불편하세요", "avg_logprob": -0.5}
			]
		}`))
	}))
	defer srv.Close()

	engine, err := NewWhisperdEngine(srv.URL, "small", "ko", "")
	if err != nil {
		t.Fatalf("NewWhisperdEngine() error: %v", err)
	}

	tr, err := engine.Transcribe(context.Background(), testWaveform(), "consult.mp3")
	if err != nil {
		t.Fatalf("Transcribe() error: %v", err)
	}

	if tr.Text != "어디가 불편하세요" {
		t.Errorf("Text = %q", tr.Text)
	}
	if len(tr.Segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(tr.Segments))
	}
	if tr.Segments[1].AvgLogprob != -0.5 {
		t.Errorf("AvgLogprob = %v, want -0.5", tr.Segments[1].AvgLogprob)
	}
	if tr.Model != "whisper/small" {
		t.Errorf("Model = %q", tr.Model)
	}
	if tr.AudioDuration != 1 {
		t.Errorf("AudioDuration = %v, want 1", tr.AudioDuration)
	}
	if tr.ProcessingTime <= 0 {
		t.Error("ProcessingTime not recorded")
	}
}

func TestWhisperdTranscribeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	engine, err := NewWhisperdEngine(srv.URL, "small", "ko", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := engine.Transcribe(context.Background(), testWaveform(), "consult.wav"); err == nil {
		t.Error("Transcribe() on server error, want error")
	}
}

func TestNewWhisperdEngineEmptyURL(t *testing.T) {
	if _, err := NewWhisperdEngine("", "small", "ko", ""); err == nil {
		t.Error("NewWhisperdEngine(\"\") succeeded, want error")
	}
}

func TestWavName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"consult.mp3", "consult.wav"},
		{"consult.wav", "consult.wav"},
		{"consult", "consult.wav"},
		{"", "audio.wav"},
		{"visit.2024.ogg", "visit.2024.wav"},
	}

	for _, test := range tests {
		if got := wavName(test.in); got != test.want {
			t.Errorf("wavName(%q) = %q, want %q", test.in, got, test.want)
		}
	}
}
