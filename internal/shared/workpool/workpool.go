// Package workpool bounds how many blocking jobs run at once.
package workpool

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/semaphore"
)

// ErrClosed is returned by Do after Close.
var ErrClosed = errors.New("workpool: closed")

// Pool runs jobs on the caller's goroutine once a slot is free.
type Pool struct {
	sem    *semaphore.Weighted
	size   int64
	closed chan struct{}
}

// New returns a pool with size slots. Non-positive sizes use NumCPU.
func New(size int) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	return &Pool{
		sem:    semaphore.NewWeighted(int64(size)),
		size:   int64(size),
		closed: make(chan struct{}),
	}
}

// Size reports the number of slots.
func (p *Pool) Size() int {
	return int(p.size)
}

// Do waits for a slot, then runs fn. It returns ctx.Err() if the context
// ends before a slot frees up. A panic in fn is returned as an error.
func (p *Pool) Do(ctx context.Context, fn func() error) (err error) {
	select {
	case <-p.closed:
		return ErrClosed
	default:
	}
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer p.sem.Release(1)
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("workpool: job panicked: %v", rec)
		}
	}()
	return fn()
}

// Close stops accepting jobs and waits for running ones to finish or ctx to end.
func (p *Pool) Close(ctx context.Context) error {
	select {
	case <-p.closed:
		return nil
	default:
		close(p.closed)
	}
	if err := p.sem.Acquire(ctx, p.size); err != nil {
		return err
	}
	p.sem.Release(p.size)
	return nil
}
