package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/medscribe/medscribe/pkg/domain"
)

type fakeJobsStore struct {
	created []*domain.Job
	deleted []string
	err     error
}

func (f *fakeJobsStore) Create(ctx context.Context, job *domain.Job) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, job)
	return nil
}

func (f *fakeJobsStore) Delete(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func TestTranscribeSubmit(t *testing.T) {
	jobs := &fakeJobsStore{}
	jobCh := make(chan domain.Job, 1)
	h := NewTranscribe(jobs, jobCh, t.TempDir())

	body, contentType := multipartBody(t, "file", "consult.wav", []byte("RIFF fake audio"))
	req := httptest.NewRequest(http.MethodPost, "/stt", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Submit(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusAccepted, rec.Body.String())
	}

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp["job_id"] == "" {
		t.Error("response is missing job_id")
	}
	if resp["status"] != string(domain.JobStatusPending) {
		t.Errorf("status = %q, want pending", resp["status"])
	}

	select {
	case job := <-jobCh:
		if job.ID != resp["job_id"] {
			t.Errorf("enqueued job id = %q, want %q", job.ID, resp["job_id"])
		}
	default:
		t.Error("job was not enqueued")
	}

	if len(jobs.created) != 1 {
		t.Errorf("jobs created = %d, want 1", len(jobs.created))
	}
}

func TestTranscribeSubmitRejectsUnsupportedType(t *testing.T) {
	h := NewTranscribe(&fakeJobsStore{}, make(chan domain.Job, 1), t.TempDir())

	body, contentType := multipartBody(t, "file", "notes.txt", []byte("text"))
	req := httptest.NewRequest(http.MethodPost, "/stt", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Submit(rec, req)

	if rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnsupportedMediaType)
	}
}

func TestTranscribeSubmitMissingFile(t *testing.T) {
	h := NewTranscribe(&fakeJobsStore{}, make(chan domain.Job, 1), t.TempDir())

	req := httptest.NewRequest(http.MethodPost, "/stt", bytes.NewBufferString("not multipart"))
	rec := httptest.NewRecorder()

	h.Submit(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestTranscribeSubmitQueueFull(t *testing.T) {
	jobs := &fakeJobsStore{}
	jobCh := make(chan domain.Job) // unbuffered and nobody reading
	uploadDir := t.TempDir()
	h := NewTranscribe(jobs, jobCh, uploadDir)

	body, contentType := multipartBody(t, "file", "consult.wav", []byte("RIFF fake audio"))
	req := httptest.NewRequest(http.MethodPost, "/stt", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Submit(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}

	// The rejected job must not linger as a pending row or a staged upload.
	if len(jobs.created) != 1 || len(jobs.deleted) != 1 || jobs.deleted[0] != jobs.created[0].ID {
		t.Errorf("created = %d, deleted = %v; the rejected job row must be removed", len(jobs.created), jobs.deleted)
	}
	entries, err := os.ReadDir(uploadDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("staged uploads left behind: %d", len(entries))
	}
}
