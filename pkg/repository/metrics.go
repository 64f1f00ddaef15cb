package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/medscribe/medscribe/pkg/domain"
)

type evalMetricsRepository struct {
	db *sql.DB
}

func NewEvalMetricsRepository(db *sql.DB) *evalMetricsRepository {
	return &evalMetricsRepository{db: db}
}

func (e *evalMetricsRepository) Save(ctx context.Context, m *domain.EvalMetrics) (int64, error) {
	const query = `
		INSERT INTO eval_metrics (transcript_id, wer, cer, ref_chars, hyp_chars, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	res, err := e.db.ExecContext(ctx, query,
		m.TranscriptID, m.WER, m.CER, m.RefChars, m.HypChars, time.Now(),
	)
	if err != nil {
		return 0, fmt.Errorf("saving eval metrics: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("fetching eval metrics id: %w", err)
	}

	m.ID = id
	return id, nil
}

type qualityMetricsRepository struct {
	db *sql.DB
}

func NewQualityMetricsRepository(db *sql.DB) *qualityMetricsRepository {
	return &qualityMetricsRepository{db: db}
}

func (q *qualityMetricsRepository) Save(ctx context.Context, m *domain.QualityMetrics) (int64, error) {
	const query = `
		INSERT INTO quality_metrics (
			transcript_id, avg_confidence, min_confidence, low_confidence_ratio,
			silence_ratio, rms_energy, clipping_detected, word_count, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	res, err := q.db.ExecContext(ctx, query,
		m.TranscriptID,
		m.AvgConfidence,
		m.MinConfidence,
		m.LowConfidenceRatio,
		m.SilenceRatio,
		m.RMSEnergy,
		m.ClippingDetected,
		m.WordCount,
		time.Now(),
	)
	if err != nil {
		return 0, fmt.Errorf("saving quality metrics: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("fetching quality metrics id: %w", err)
	}

	m.ID = id
	return id, nil
}
