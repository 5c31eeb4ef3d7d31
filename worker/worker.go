// Package worker runs fire-and-forget side effects off the request path.
package worker

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type task struct {
	id   string
	name string
	fn   func(context.Context) error
}

// Pool runs submitted tasks one at a time on a single goroutine, which also
// serializes every store write in the process. A failed task is logged with
// its id and dropped; nothing is retried, and a task is never cancelled
// once started.
type Pool struct {
	tasks chan task
	log   *zap.SugaredLogger
	wg    sync.WaitGroup
	once  sync.Once
}

// NewPool builds a Pool. Call Start before submitting.
func NewPool(log *zap.SugaredLogger) *Pool {
	return &Pool{
		tasks: make(chan task, 64),
		log:   log,
	}
}

// Start begins draining tasks until Stop is called.
func (p *Pool) Start() {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for t := range p.tasks {
			if err := t.fn(context.Background()); err != nil {
				p.log.Errorw("task failed", "task", t.name, "id", t.id, "error", err)
				continue
			}
			p.log.Debugw("task done", "task", t.name, "id", t.id)
		}
	}()
}

// Submit queues fn under a fresh task id.
func (p *Pool) Submit(name string, fn func(context.Context) error) {
	p.tasks <- task{id: uuid.NewString(), name: name, fn: fn}
}

// Stop stops accepting tasks, drains the queue and waits for the last task
// to finish.
func (p *Pool) Stop() {
	p.once.Do(func() { close(p.tasks) })
	p.wg.Wait()
}
