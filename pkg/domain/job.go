package domain

import "time"

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusDone       JobStatus = "done"
	JobStatusError      JobStatus = "error"
)

// Job tracks an asynchronous transcription request submitted over the HTTP API.
type Job struct {
	ID           string    `json:"id"`
	AudioFile    string    `json:"audio_file"`
	Status       JobStatus `json:"status"`
	TranscriptID *int64    `json:"transcript_id,omitempty"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
