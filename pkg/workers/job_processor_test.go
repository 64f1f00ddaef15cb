package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/medscribe/medscribe/pkg/domain"
	"github.com/medscribe/medscribe/pkg/services"
)

type fakePipeline struct {
	record *domain.ConsultRecord
	err    error
}

func (f *fakePipeline) Process(ctx context.Context, audioPath string, opts services.ProcessOptions) (*domain.ConsultRecord, error) {
	return f.record, f.err
}

type fakeJobsRepo struct {
	processing []string
	done       map[string]int64
	failed     map[string]error
}

func newFakeJobsRepo() *fakeJobsRepo {
	return &fakeJobsRepo{done: map[string]int64{}, failed: map[string]error{}}
}

func (f *fakeJobsRepo) SetProcessing(ctx context.Context, id string) error {
	f.processing = append(f.processing, id)
	return nil
}

func (f *fakeJobsRepo) SetDone(ctx context.Context, id string, transcriptID int64) error {
	f.done[id] = transcriptID
	return nil
}

func (f *fakeJobsRepo) SetError(ctx context.Context, id string, jobErr error) error {
	f.failed[id] = jobErr
	return nil
}

func runJob(t *testing.T, pipeline *fakePipeline, repo *fakeJobsRepo, job domain.Job) {
	t.Helper()

	jobCh := make(chan domain.Job, 1)
	jobCh <- job
	close(jobCh)

	processor, err := NewJobProcessor(pipeline, repo, jobCh, services.ProcessOptions{})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := processor.Start(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestJobProcessorMarksDone(t *testing.T) {
	repo := newFakeJobsRepo()
	pipeline := &fakePipeline{record: &domain.ConsultRecord{Transcript: &domain.Transcript{ID: 42}}}

	runJob(t, pipeline, repo, domain.Job{ID: "job-1", AudioFile: "/nonexistent/a.wav"})

	if len(repo.processing) != 1 || repo.processing[0] != "job-1" {
		t.Errorf("processing calls = %v, want [job-1]", repo.processing)
	}
	if repo.done["job-1"] != 42 {
		t.Errorf("done transcript id = %d, want 42", repo.done["job-1"])
	}
	if len(repo.failed) != 0 {
		t.Errorf("unexpected failures: %v", repo.failed)
	}
}

func TestJobProcessorMarksError(t *testing.T) {
	repo := newFakeJobsRepo()
	pipeline := &fakePipeline{err: errors.New("stt unavailable")}

	runJob(t, pipeline, repo, domain.Job{ID: "job-2", AudioFile: "/nonexistent/b.wav"})

	if _, ok := repo.done["job-2"]; ok {
		t.Error("failing job must not be marked done")
	}
	if repo.failed["job-2"] == nil {
		t.Error("failing job was not marked errored")
	}
}
