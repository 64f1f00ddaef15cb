package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/medscribe/medscribe/pkg/domain"
)

type jobsRepository struct {
	db *sql.DB
}

func NewJobsRepository(db *sql.DB) *jobsRepository {
	return &jobsRepository{db: db}
}

func (j *jobsRepository) Create(ctx context.Context, job *domain.Job) error {
	const query = `
		INSERT INTO jobs (id, audio_file, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`

	now := time.Now()
	job.Status = domain.JobStatusPending
	job.CreatedAt = now
	job.UpdatedAt = now

	if _, err := j.db.ExecContext(ctx, query, job.ID, job.AudioFile, job.Status, now, now); err != nil {
		return fmt.Errorf("creating job: %w", err)
	}

	return nil
}

// Delete removes a job row, used to roll back jobs that never reached the queue.
func (j *jobsRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM jobs WHERE id = ?`

	if _, err := j.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("deleting job: %w", err)
	}

	return nil
}

func (j *jobsRepository) SetProcessing(ctx context.Context, id string) error {
	return j.setStatus(ctx, id, domain.JobStatusProcessing, "")
}

// SetDone marks the job finished and links it to the stored transcript.
func (j *jobsRepository) SetDone(ctx context.Context, id string, transcriptID int64) error {
	const query = `
		UPDATE jobs
		SET status = ?, transcript_id = ?, error = '', updated_at = ?
		WHERE id = ?
	`

	if _, err := j.db.ExecContext(ctx, query, domain.JobStatusDone, transcriptID, time.Now(), id); err != nil {
		return fmt.Errorf("marking job done: %w", err)
	}

	return nil
}

func (j *jobsRepository) SetError(ctx context.Context, id string, jobErr error) error {
	msg := ""
	if jobErr != nil {
		msg = jobErr.Error()
	}
	return j.setStatus(ctx, id, domain.JobStatusError, msg)
}

func (j *jobsRepository) setStatus(ctx context.Context, id string, status domain.JobStatus, errMsg string) error {
	const query = `
		UPDATE jobs
		SET status = ?, error = ?, updated_at = ?
		WHERE id = ?
	`

	if _, err := j.db.ExecContext(ctx, query, status, errMsg, time.Now(), id); err != nil {
		return fmt.Errorf("updating job status: %w", err)
	}

	return nil
}

func (j *jobsRepository) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	const query = `
		SELECT id, audio_file, status, transcript_id, error, created_at, updated_at
		FROM jobs
		WHERE id = ?
	`

	var job domain.Job
	var transcriptID sql.NullInt64
	err := j.db.QueryRowContext(ctx, query, id).Scan(
		&job.ID,
		&job.AudioFile,
		&job.Status,
		&transcriptID,
		&job.Error,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("fetching job by id: %w", err)
	}

	if transcriptID.Valid {
		job.TranscriptID = &transcriptID.Int64
	}

	return &job, nil
}
