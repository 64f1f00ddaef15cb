package workers

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type stubWorker struct {
	name string
	err  error
}

func (s *stubWorker) Name() string { return s.name }

func (s *stubWorker) Start(ctx context.Context) error {
	if s.err != nil {
		return s.err
	}
	<-ctx.Done()
	return nil
}

func TestGroupStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- Group{&stubWorker{name: "a"}, &stubWorker{name: "b"}}.Start(ctx)
	}()

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("group did not stop after cancellation")
	}
}

func TestGroupFailureCancelsOthers(t *testing.T) {
	g := Group{
		&stubWorker{name: "healthy"},
		&stubWorker{name: "broken", err: errors.New("listen failed")},
	}

	done := make(chan error, 1)
	go func() { done <- g.Start(context.Background()) }()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected error from failing worker")
		}
		if !strings.Contains(err.Error(), "broken") {
			t.Errorf("error %q does not name the failing worker", err)
		}
	case <-time.After(time.Second):
		t.Fatal("group did not stop after worker failure")
	}
}
