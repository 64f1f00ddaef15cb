package summary

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/medscribe/medscribe/pkg/domain"
)

const (
	systemPrompt = "You are a specialist who accurately summarizes medical consultation records."

	promptTemplate = `Read the following medical consultation between a clinician and a patient and summarize it in plain language the patient can understand. Answer in the same language as the conversation.

[Conversation]
%s

Structure the summary exactly as the four numbered sections below. Keep each section concise and write "none" when the conversation contains nothing for it:

1. Symptoms:
(the complaints the patient reported)

2. Diagnosis:
(the clinician's diagnosis or working assessment)

3. Medication:
(prescribed drugs with dose and instructions)

4. Care advice:
(diet, exercise, precautions, follow-up schedule and other non-drug recommendations)`

	temperature = 0.3
	maxTokens   = 1000
)

type summarizer struct {
	api   *openai.Client
	model string
}

// NewSummarizer extracts a structured clinical summary from a transcript via
// an OpenAI chat completion.
func NewSummarizer(token, model string) (*summarizer, error) {
	if token == "" {
		return nil, fmt.Errorf("token is empty")
	}
	return &summarizer{
		api:   openai.NewClient(token),
		model: model,
	}, nil
}

func (s *summarizer) Summarize(ctx context.Context, transcript string) (*domain.Summary, error) {
	start := time.Now()

	resp, err := s.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(promptTemplate, transcript)},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("creating chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no completion choices returned")
	}

	sections := parseSections(resp.Choices[0].Message.Content)

	return &domain.Summary{
		ChiefComplaint:  sections["symptoms"],
		Diagnosis:       sections["diagnosis"],
		Medication:      sections["medication"],
		LifestyleAdvice: sections["care advice"],
		Model:           s.model,
		SummaryTime:     time.Since(start).Seconds(),
		CreatedAt:       time.Now(),
	}, nil
}

// sectionHeadings maps the numbered heading prefix to the section key. The
// model occasionally restyles headings (bold markers, missing colon), so
// matching is on the number plus a keyword.
var sectionHeadings = []struct {
	number  string
	keyword string
	key     string
}{
	{"1.", "symptom", "symptoms"},
	{"2.", "diagnos", "diagnosis"},
	{"3.", "medication", "medication"},
	{"4.", "care", "care advice"},
}

// parseSections splits a completion back into the four numbered sections.
func parseSections(content string) map[string]string {
	sections := make(map[string]string)
	var current string
	var lines []string

	flush := func() {
		if current != "" && len(lines) > 0 {
			sections[current] = strings.TrimSpace(strings.Join(lines, "\n"))
		}
		lines = nil
	}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		// Strip list bullets and emphasis so "**1. Symptoms:**" still matches.
		heading := strings.TrimLeft(line, "*_#- ")

		matched := false
		for _, h := range sectionHeadings {
			if strings.HasPrefix(heading, h.number) && strings.Contains(strings.ToLower(heading), h.keyword) {
				flush()
				current = h.key
				// Inline content after the heading colon.
				if i := strings.Index(heading, ":"); i >= 0 {
					if rest := strings.Trim(heading[i+1:], "*_ "); rest != "" {
						lines = append(lines, rest)
					}
				}
				matched = true
				break
			}
		}
		if matched {
			continue
		}

		if current != "" && line != "" {
			lines = append(lines, line)
		}
	}
	flush()

	return sections
}
