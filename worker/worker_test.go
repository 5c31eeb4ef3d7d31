package worker

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestTasksRunInSubmissionOrder(t *testing.T) {
	p := NewPool(zaptest.NewLogger(t).Sugar())
	p.Start()

	var (
		mu  sync.Mutex
		ran []int
	)
	for i := 0; i < 10; i++ {
		i := i
		p.Submit("ordered", func(context.Context) error {
			mu.Lock()
			ran = append(ran, i)
			mu.Unlock()
			return nil
		})
	}
	p.Stop()

	if len(ran) != 10 {
		t.Fatalf("expected 10 tasks, actual %d", len(ran))
	}
	for i, got := range ran {
		if got != i {
			t.Fatalf("expected submission order, actual %v", ran)
		}
	}
}

func TestFailedTaskDoesNotStopThePool(t *testing.T) {
	p := NewPool(zaptest.NewLogger(t).Sugar())
	p.Start()

	var (
		mu   sync.Mutex
		seen []string
	)
	p.Submit("boom", func(context.Context) error {
		return errors.New("boom")
	})
	p.Submit("after", func(context.Context) error {
		mu.Lock()
		seen = append(seen, "after")
		mu.Unlock()
		return nil
	})
	p.Stop()

	if len(seen) != 1 || seen[0] != "after" {
		t.Errorf("expected the follow-up task to run, actual %v", seen)
	}
}

func TestStopDrainsAndIsIdempotent(t *testing.T) {
	p := NewPool(zaptest.NewLogger(t).Sugar())
	p.Start()

	done := false
	p.Submit("drain", func(context.Context) error {
		done = true
		return nil
	})
	p.Stop()
	p.Stop()

	if !done {
		t.Error("expected the queued task to finish before Stop returned")
	}
}
