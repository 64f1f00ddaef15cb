package report

import (
	"strings"
	"testing"
	"time"

	"github.com/medscribe/medscribe/pkg/domain"
)

func sampleRecord() *domain.ConsultRecord {
	return &domain.ConsultRecord{
		Transcript: &domain.Transcript{
			AudioFile:     "consult.wav",
			Model:         "openai/whisper-1",
			Text:          "어디가 불편하세요 머리가 아파요",
			AudioDuration: 12.5,
			RTF:           0.21,
			Segments: []domain.Segment{
				{Start: 0, End: 2.5, Text: "어디가 불편하세요", Speaker: "Speaker 1"},
				{Start: 4.1, End: 6.0, Text: "머리가 아파요", Speaker: "Speaker 2"},
			},
		},
		Summary: &domain.Summary{
			ChiefComplaint: "두통",
			Diagnosis:      "긴장성 두통",
		},
		Quality: &domain.QualityMetrics{AvgConfidence: 0.91, WordCount: 4},
		Eval:    &domain.EvalMetrics{WER: 0.1, CER: 0.02, RefChars: 20, HypChars: 19},
	}
}

func TestRenderMarkdown(t *testing.T) {
	md := RenderMarkdown(Meta{
		Title:     "진료 기록",
		Source:    "consult.wav",
		Generated: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}, sampleRecord())

	for _, want := range []string{
		"# 진료 기록",
		"- Model: `openai/whisper-1`",
		"[00:00-00:02] Speaker 1: 어디가 불편하세요",
		"[00:04-00:06] Speaker 2: 머리가 아파요",
		"### Symptoms\n\n두통",
		"### Medication\n\nnone",
		"- WER: 0.1000",
		"- Word count: 4",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("report missing %q\n---\n%s", want, md)
		}
	}
}

func TestRenderMarkdownEmptyTranscript(t *testing.T) {
	md := RenderMarkdown(Meta{}, &domain.ConsultRecord{
		Transcript: &domain.Transcript{Text: "  "},
	})

	if !strings.Contains(md, "_No speech recognized._") {
		t.Errorf("empty transcript not flagged:\n%s", md)
	}
	if strings.Contains(md, "## Summary") {
		t.Error("summary section rendered without a summary")
	}
}

func TestRenderHTML(t *testing.T) {
	html := string(RenderHTML(Meta{Title: "진료 기록"}, sampleRecord()))

	if !strings.Contains(html, "<title>진료 기록</title>") {
		t.Error("title missing from HTML head")
	}
	if !strings.Contains(html, "<h1>진료 기록</h1>") {
		t.Error("rendered markdown heading missing")
	}
}

func TestSecToTS(t *testing.T) {
	tests := []struct {
		sec  float64
		want string
	}{
		{0, "00:00"},
		{65.4, "01:05"},
		{3723, "01:02:03"},
	}

	for _, test := range tests {
		if got := secToTS(test.sec); got != test.want {
			t.Errorf("secToTS(%v) = %q, want %q", test.sec, got, test.want)
		}
	}
}
