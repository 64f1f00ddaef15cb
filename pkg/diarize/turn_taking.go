package diarize

import (
	"context"

	"github.com/medscribe/medscribe/pkg/domain"
)

const defaultGapThreshold = 1.5 // seconds

// TurnTaking is a heuristic two-party diarizer: a consultation is a dialog
// between a clinician and a patient, and turns tend to be separated by a
// pause. The speaker flips whenever the gap between consecutive segments
// exceeds the threshold. Segments that already carry a speaker label are
// never overwritten.
type TurnTaking struct {
	GapThreshold float64
	Labels       [2]string
}

func NewTurnTaking() *TurnTaking {
	return &TurnTaking{
		GapThreshold: defaultGapThreshold,
		Labels:       [2]string{"Speaker 1", "Speaker 2"},
	}
}

func (d *TurnTaking) AssignSpeakers(ctx context.Context, t *domain.Transcript) error {
	if len(t.Segments) == 0 {
		return nil
	}
	for _, s := range t.Segments {
		if s.Speaker != "" {
			return nil
		}
	}

	threshold := d.GapThreshold
	if threshold <= 0 {
		threshold = defaultGapThreshold
	}

	current := 0
	t.Segments[0].Speaker = d.Labels[current]
	for i := 1; i < len(t.Segments); i++ {
		gap := t.Segments[i].Start - t.Segments[i-1].End
		if gap > threshold {
			current = 1 - current
		}
		t.Segments[i].Speaker = d.Labels[current]
	}
	return nil
}
