package diarize

import (
	"context"

	"github.com/medscribe/medscribe/pkg/domain"
)

// Diarizer assigns speaker labels to transcript segments.
type Diarizer interface {
	AssignSpeakers(ctx context.Context, t *domain.Transcript) error
}

// Noop leaves speakers empty.
type Noop struct{}

func (Noop) AssignSpeakers(ctx context.Context, t *domain.Transcript) error { return nil }
