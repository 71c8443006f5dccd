// Package task models a UI action that runs one asynchronous job at a time.
package task

import (
	"context"
	"sync/atomic"

	"github.com/starford/memo/internal/apperr"
)

// ErrBusy is returned by Start while a job is in flight.
var ErrBusy = apperr.ErrBusy

// Slot runs at most one job at a time and remembers the last result that was
// not invalidated. Independent actions must use independent slots.
type Slot[T any] struct {
	busy atomic.Bool
	gen  atomic.Uint64
	last atomic.Pointer[T]
}

// Busy reports whether a job is in flight.
func (s *Slot[T]) Busy() bool {
	return s.busy.Load()
}

// Start runs fn in a new goroutine and returns a channel that receives its
// result. It returns ErrBusy without running fn if a job is already in flight.
// The busy flag is cleared when fn returns, whatever the outcome.
func (s *Slot[T]) Start(ctx context.Context, fn func(context.Context) T) (<-chan T, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	gen := s.gen.Add(1)
	out := make(chan T, 1)

	go func() {
		var res T
		defer func() {
			// Only a result from the current generation becomes Last.
			if s.gen.Load() == gen {
				s.last.Store(&res)
			}
			s.busy.Store(false)
			out <- res
			close(out)
		}()
		res = fn(ctx)
	}()
	return out, nil
}

// Do is Start followed by waiting for the result.
func (s *Slot[T]) Do(ctx context.Context, fn func(context.Context) T) (T, error) {
	ch, err := s.Start(ctx, fn)
	if err != nil {
		var zero T
		return zero, err
	}
	return <-ch, nil
}

// Invalidate marks any in-flight job as stale: its result is still delivered
// on its channel but is not recorded as Last.
func (s *Slot[T]) Invalidate() {
	s.gen.Add(1)
	s.last.Store(nil)
}

// Last returns the most recent non-stale result.
func (s *Slot[T]) Last() (T, bool) {
	p := s.last.Load()
	if p == nil {
		var zero T
		return zero, false
	}
	return *p, true
}
