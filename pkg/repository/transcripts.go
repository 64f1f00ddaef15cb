package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/medscribe/medscribe/pkg/domain"
)

type transcriptsRepository struct {
	db *sql.DB
}

func NewTranscriptsRepository(db *sql.DB) *transcriptsRepository {
	return &transcriptsRepository{db: db}
}

// Save stores the transcript row and returns its id. Segments are not
// persisted; the stored text is the unit of record.
func (t *transcriptsRepository) Save(ctx context.Context, transcript *domain.Transcript) (int64, error) {
	const query = `
		INSERT INTO transcripts (
			audio_file, model, language, text,
			processing_time, audio_duration, rtf, noise_reduction, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	createdAt := transcript.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	res, err := t.db.ExecContext(ctx, query,
		transcript.AudioFile,
		transcript.Model,
		transcript.Language,
		transcript.Text,
		transcript.ProcessingTime,
		transcript.AudioDuration,
		transcript.RTF,
		transcript.NoiseReduction,
		createdAt,
	)
	if err != nil {
		return 0, fmt.Errorf("saving transcript: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("fetching transcript id: %w", err)
	}

	transcript.ID = id
	return id, nil
}

func (t *transcriptsRepository) GetByID(ctx context.Context, id int64) (*domain.Transcript, error) {
	const query = `
		SELECT id, audio_file, model, language, text,
		       processing_time, audio_duration, rtf, noise_reduction, created_at
		FROM transcripts
		WHERE id = ?
	`

	var transcript domain.Transcript
	err := t.db.QueryRowContext(ctx, query, id).Scan(
		&transcript.ID,
		&transcript.AudioFile,
		&transcript.Model,
		&transcript.Language,
		&transcript.Text,
		&transcript.ProcessingTime,
		&transcript.AudioDuration,
		&transcript.RTF,
		&transcript.NoiseReduction,
		&transcript.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("fetching transcript by id: %w", err)
	}

	return &transcript, nil
}
