package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/medscribe/medscribe/pkg/domain"
)

type Meta struct {
	Title     string
	Source    string
	Generated time.Time
}

// RenderMarkdown produces a consultation report: metadata header, transcript
// (timed and speaker-labeled when available), the clinical summary and the
// recorded metrics.
func RenderMarkdown(meta Meta, record *domain.ConsultRecord) string {
	var b strings.Builder

	title := meta.Title
	if title == "" {
		title = "Consultation Transcript"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	t := record.Transcript
	if meta.Source != "" {
		fmt.Fprintf(&b, "- Source: `%s`\n", meta.Source)
	}
	if t != nil {
		fmt.Fprintf(&b, "- Model: `%s`\n", t.Model)
		if t.AudioDuration > 0 {
			fmt.Fprintf(&b, "- Duration: %.1fs\n", t.AudioDuration)
		}
		if t.RTF > 0 {
			fmt.Fprintf(&b, "- RTF: %.4f\n", t.RTF)
		}
	}
	if !meta.Generated.IsZero() {
		fmt.Fprintf(&b, "- Generated: %s\n", meta.Generated.Format(time.RFC3339))
	}
	b.WriteString("\n---\n\n")

	b.WriteString("## Transcript\n\n")
	switch {
	case t == nil || t.Empty():
		b.WriteString("_No speech recognized._\n\n")
	case len(t.Segments) > 0:
		for _, s := range t.Segments {
			ts := ""
			if s.End > 0 {
				ts = fmt.Sprintf("[%s-%s] ", secToTS(s.Start), secToTS(s.End))
			}
			spk := ""
			if s.Speaker != "" {
				spk = s.Speaker + ": "
			}
			fmt.Fprintf(&b, "%s%s%s\n\n", ts, spk, strings.TrimSpace(s.Text))
		}
	default:
		fmt.Fprintf(&b, "%s\n\n", strings.TrimSpace(t.Text))
	}

	if s := record.Summary; s != nil {
		b.WriteString("## Summary\n\n")
		writeSection(&b, "Symptoms", s.ChiefComplaint)
		writeSection(&b, "Diagnosis", s.Diagnosis)
		writeSection(&b, "Medication", s.Medication)
		writeSection(&b, "Care advice", s.LifestyleAdvice)
	}

	if q := record.Quality; q != nil {
		b.WriteString("## Quality\n\n")
		fmt.Fprintf(&b, "- Avg confidence: %.3f\n", q.AvgConfidence)
		fmt.Fprintf(&b, "- Min confidence: %.3f\n", q.MinConfidence)
		fmt.Fprintf(&b, "- Low-confidence ratio: %.3f\n", q.LowConfidenceRatio)
		fmt.Fprintf(&b, "- Silence ratio: %.3f\n", q.SilenceRatio)
		fmt.Fprintf(&b, "- RMS energy: %.4f\n", q.RMSEnergy)
		fmt.Fprintf(&b, "- Clipping detected: %v\n", q.ClippingDetected)
		fmt.Fprintf(&b, "- Word count: %d\n", q.WordCount)
		b.WriteString("\n")
	}

	if e := record.Eval; e != nil {
		b.WriteString("## Evaluation\n\n")
		fmt.Fprintf(&b, "- WER: %.4f\n", e.WER)
		fmt.Fprintf(&b, "- CER: %.4f\n", e.CER)
		fmt.Fprintf(&b, "- Reference chars: %d\n", e.RefChars)
		fmt.Fprintf(&b, "- Hypothesis chars: %d\n", e.HypChars)
		b.WriteString("\n")
	}

	return b.String()
}

func writeSection(b *strings.Builder, heading, content string) {
	if content == "" {
		content = "none"
	}
	fmt.Fprintf(b, "### %s\n\n%s\n\n", heading, content)
}

func secToTS(sec float64) string {
	d := time.Duration(sec*1000) * time.Millisecond
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
