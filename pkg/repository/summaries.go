package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/medscribe/medscribe/pkg/domain"
)

type summariesRepository struct {
	db *sql.DB
}

func NewSummariesRepository(db *sql.DB) *summariesRepository {
	return &summariesRepository{db: db}
}

func (s *summariesRepository) Save(ctx context.Context, summary *domain.Summary) (int64, error) {
	const query = `
		INSERT INTO summaries (
			transcript_id, chief_complaint, diagnosis,
			medication, lifestyle_advice, model, summary_time, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	createdAt := summary.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	res, err := s.db.ExecContext(ctx, query,
		summary.TranscriptID,
		summary.ChiefComplaint,
		summary.Diagnosis,
		summary.Medication,
		summary.LifestyleAdvice,
		summary.Model,
		summary.SummaryTime,
		createdAt,
	)
	if err != nil {
		return 0, fmt.Errorf("saving summary: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("fetching summary id: %w", err)
	}

	summary.ID = id
	return id, nil
}

func (s *summariesRepository) GetByTranscriptID(ctx context.Context, transcriptID int64) (*domain.Summary, error) {
	const query = `
		SELECT id, transcript_id, chief_complaint, diagnosis,
		       medication, lifestyle_advice, model, summary_time, created_at
		FROM summaries
		WHERE transcript_id = ?
		ORDER BY id DESC
		LIMIT 1
	`

	var summary domain.Summary
	err := s.db.QueryRowContext(ctx, query, transcriptID).Scan(
		&summary.ID,
		&summary.TranscriptID,
		&summary.ChiefComplaint,
		&summary.Diagnosis,
		&summary.Medication,
		&summary.LifestyleAdvice,
		&summary.Model,
		&summary.SummaryTime,
		&summary.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("fetching summary by transcript id: %w", err)
	}

	return &summary, nil
}
