package handler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/medscribe/medscribe/pkg/api/response"
	"github.com/medscribe/medscribe/pkg/domain"
	"github.com/medscribe/medscribe/pkg/logger"
	"github.com/medscribe/medscribe/pkg/services"
)

const maxUploadBytes = 200 << 20 // 200 MB

type JobsStore interface {
	Create(ctx context.Context, job *domain.Job) error
	Delete(ctx context.Context, id string) error
}

type transcribe struct {
	jobs      JobsStore
	jobCh     chan<- domain.Job
	uploadDir string
	writer    response.JSONResponseWriter
}

func NewTranscribe(jobs JobsStore, jobCh chan<- domain.Job, uploadDir string) *transcribe {
	return &transcribe{
		jobs:      jobs,
		jobCh:     jobCh,
		uploadDir: uploadDir,
	}
}

// Submit accepts a multipart audio upload, registers a pending job and hands
// it to the job processor. The response carries the job id for polling.
func (t *transcribe) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		t.writer.WriteErrorResponse(w, http.StatusBadRequest, "File field is missing or invalid.")
		return
	}
	defer file.Close()

	if !services.IsAudioFile(header.Filename) {
		t.writer.WriteErrorResponse(w, http.StatusUnsupportedMediaType,
			fmt.Sprintf("Unsupported file type: %s", filepath.Ext(header.Filename)))
		return
	}

	jobID := uuid.NewString()

	savedPath, err := t.saveUpload(jobID, header.Filename, file)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to save upload", logger.Err(err))
		t.writer.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to store uploaded file.")
		return
	}

	job := domain.Job{
		ID:        jobID,
		AudioFile: savedPath,
		Status:    domain.JobStatusPending,
		CreatedAt: time.Now(),
	}

	if err := t.jobs.Create(r.Context(), &job); err != nil {
		slog.ErrorContext(r.Context(), "Failed to create job", logger.Err(err))
		t.writer.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to register job.")
		return
	}

	select {
	case t.jobCh <- job:
	default:
		t.discard(r.Context(), job)
		t.writer.WriteErrorResponse(w, http.StatusServiceUnavailable, "Processing queue is full, retry later.")
		return
	}

	t.writer.WriteSuccessResponse(w, http.StatusAccepted, map[string]string{
		"job_id": job.ID,
		"status": string(job.Status),
	})
}

// discard rolls back a job that could not be enqueued so no pending row or
// staged upload is left behind.
func (t *transcribe) discard(ctx context.Context, job domain.Job) {
	if err := t.jobs.Delete(ctx, job.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to delete unqueued job", "jobID", job.ID, logger.Err(err))
	}
	if err := os.Remove(job.AudioFile); err != nil && !os.IsNotExist(err) {
		slog.WarnContext(ctx, "Failed to remove uploaded file", "file", job.AudioFile, logger.Err(err))
	}
}

func (t *transcribe) saveUpload(jobID, name string, src io.Reader) (string, error) {
	if err := os.MkdirAll(t.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("creating upload dir: %w", err)
	}

	path := filepath.Join(t.uploadDir, jobID+filepath.Ext(name))
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("writing upload file: %w", err)
	}
	return path, nil
}
