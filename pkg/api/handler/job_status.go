package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/medscribe/medscribe/pkg/api/response"
	"github.com/medscribe/medscribe/pkg/domain"
	"github.com/medscribe/medscribe/pkg/logger"
)

type JobsGetter interface {
	GetByID(ctx context.Context, id string) (*domain.Job, error)
}

type TranscriptsGetter interface {
	GetByID(ctx context.Context, id int64) (*domain.Transcript, error)
}

type jobStatus struct {
	jobs        JobsGetter
	transcripts TranscriptsGetter
	writer      response.JSONResponseWriter
}

func NewJobStatus(jobs JobsGetter, transcripts TranscriptsGetter) *jobStatus {
	return &jobStatus{
		jobs:        jobs,
		transcripts: transcripts,
	}
}

type jobStatusResponse struct {
	*domain.Job
	Transcript *domain.Transcript `json:"transcript,omitempty"`
}

// Get reports the state of a submitted job; once the job is done the stored
// transcript is inlined in the response.
func (j *jobStatus) Get(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/stt/")
	if id == "" || strings.Contains(id, "/") {
		j.writer.WriteErrorResponse(w, http.StatusBadRequest, "Job id is missing or invalid.")
		return
	}

	job, err := j.jobs.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			j.writer.WriteErrorResponse(w, http.StatusNotFound, "Job not found.")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to fetch job", "jobID", id, logger.Err(err))
		j.writer.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to fetch job.")
		return
	}

	resp := jobStatusResponse{Job: job}
	if job.Status == domain.JobStatusDone && job.TranscriptID != nil {
		transcript, err := j.transcripts.GetByID(r.Context(), *job.TranscriptID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			slog.ErrorContext(r.Context(), "Failed to fetch transcript", "jobID", id, logger.Err(err))
		} else if err == nil {
			resp.Transcript = transcript
		}
	}

	j.writer.WriteSuccessResponse(w, http.StatusOK, resp)
}
