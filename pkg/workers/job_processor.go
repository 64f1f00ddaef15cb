package workers

import (
	"context"
	"log/slog"
	"os"

	"github.com/medscribe/medscribe/pkg/domain"
	"github.com/medscribe/medscribe/pkg/logger"
	"github.com/medscribe/medscribe/pkg/services"
)

type Pipeline interface {
	Process(ctx context.Context, audioPath string, opts services.ProcessOptions) (*domain.ConsultRecord, error)
}

type JobsRepository interface {
	SetProcessing(ctx context.Context, id string) error
	SetDone(ctx context.Context, id string, transcriptID int64) error
	SetError(ctx context.Context, id string, jobErr error) error
}

type jobProcessor struct {
	pipeline Pipeline
	jobs     JobsRepository
	jobCh    <-chan domain.Job
	opts     services.ProcessOptions
}

func NewJobProcessor(
	pipeline Pipeline,
	jobs JobsRepository,
	jobCh <-chan domain.Job,
	opts services.ProcessOptions,
) (*jobProcessor, error) {
	return &jobProcessor{
		pipeline: pipeline,
		jobs:     jobs,
		jobCh:    jobCh,
		opts:     opts,
	}, nil
}

func (j *jobProcessor) Name() string { return "job_processor" }

func (j *jobProcessor) Start(ctx context.Context) error {
	slog.Info("Starting worker", "name", j.Name())
	defer slog.Info("Worker stopped", "name", j.Name())

	for {
		select {
		case <-ctx.Done():
			return nil
		case job, ok := <-j.jobCh:
			if !ok {
				return nil
			}
			j.process(ctx, job)
		}
	}
}

func (j *jobProcessor) process(ctx context.Context, job domain.Job) {
	ctx = logger.ContextWithJobID(ctx, job.ID)

	if err := j.jobs.SetProcessing(ctx, job.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to mark job processing", logger.Err(err))
		return
	}

	record, err := j.pipeline.Process(ctx, job.AudioFile, j.opts)

	// Uploads are staged in a temp dir; drop them once processed.
	if removeErr := os.Remove(job.AudioFile); removeErr != nil && !os.IsNotExist(removeErr) {
		slog.WarnContext(ctx, "Failed to remove uploaded file", "file", job.AudioFile, logger.Err(removeErr))
	}

	if err != nil {
		slog.ErrorContext(ctx, "Job failed", logger.Err(err))
		if setErr := j.jobs.SetError(ctx, job.ID, err); setErr != nil {
			slog.ErrorContext(ctx, "Failed to mark job errored", logger.Err(setErr))
		}
		return
	}

	if err := j.jobs.SetDone(ctx, job.ID, record.Transcript.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to mark job done", logger.Err(err))
	}
}
