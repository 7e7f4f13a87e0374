// File: internal/infra/worker/pool.go
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
)

var (
	// ErrStopped is returned by Submit once Stop has been called.
	ErrStopped = errors.New("worker pool stopped")
	// ErrPanic wraps a panic raised inside a task.
	ErrPanic = errors.New("task panicked")
)

// Recover runs fn and returns a panic in it as an error wrapping ErrPanic.
func Recover(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return fn()
}

// Task runs with the context of the caller that submitted it.
type Task func(ctx context.Context) error

type job struct {
	ctx  context.Context
	task Task
}

// Pool is a fixed set of goroutines. Hand-off is unbuffered: a task accepted by
// Submit is already owned by a worker and always runs to completion.
type Pool struct {
	wg   sync.WaitGroup
	jobs chan job
	quit chan struct{}
	stop sync.Once
	n    int
	log  *zerolog.Logger
}

func NewPool(workers int, logger *zerolog.Logger) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Pool{jobs: make(chan job), quit: make(chan struct{}), n: workers, log: logger}
}

func (p *Pool) Start() {
	for i := 0; i < p.n; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			for {
				select {
				case <-p.quit:
					return
				case j := <-p.jobs:
					err := Recover(func() error { return j.task(j.ctx) })
					switch {
					case errors.Is(err, ErrPanic):
						p.log.Error().Int("worker", id).Err(err).Msg("task panicked")
					case err != nil:
						p.log.Debug().Int("worker", id).Err(err).Msg("task error")
					}
				}
			}
		}(i)
	}
}

// Stop waits for running tasks; it is safe to call more than once.
func (p *Pool) Stop() {
	p.stop.Do(func() { close(p.quit) })
	p.wg.Wait()
}

// Submit blocks until a worker takes the task, the pool stops or ctx ends.
func (p *Pool) Submit(ctx context.Context, task Task) error {
	if task == nil {
		return errors.New("nil task")
	}
	select {
	case <-p.quit:
		return ErrStopped
	default:
	}
	select {
	case p.jobs <- job{ctx: ctx, task: task}:
		return nil
	case <-p.quit:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}
