package hauntedhouse

import (
	"context"
)

// Future is the result of a background load.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// Go runs fn in its own goroutine.
func Go[T any](fn func() (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.val, f.err = fn()
	}()
	return f
}

// Resolved wraps a value that is already known.
func Resolved[T any](val T, err error) *Future[T] {
	f := &Future[T]{done: make(chan struct{}), val: val, err: err}
	close(f.done)
	return f
}

func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

func (f *Future[T]) Ready() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the result is ready or ctx ends.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

type pendingAsset interface {
	deliver() bool
	doneChan() <-chan struct{}
}

type queuedFuture[T any] struct {
	future *Future[T]
	attach func(T)
	fail   func(error)
}

func (q *queuedFuture[T]) deliver() bool {
	if !q.future.Ready() {
		return false
	}
	if q.future.err != nil {
		if q.fail != nil {
			q.fail(q.future.err)
		}
		return true
	}
	if q.attach != nil {
		q.attach(q.future.val)
	}
	return true
}

// AssetQueue hands finished loads to their callbacks on whichever goroutine
// calls Poll, so scene mutation stays on the game thread.
type AssetQueue struct {
	pending []pendingAsset
}

func NewAssetQueue() *AssetQueue {
	return &AssetQueue{}
}

// Enqueue registers callbacks for f. fail may be nil.
func Enqueue[T any](q *AssetQueue, f *Future[T], attach func(T), fail func(error)) {
	q.pending = append(q.pending, &queuedFuture[T]{future: f, attach: attach, fail: fail})
}

// Poll delivers every ready result in enqueue order and reports how many
// were delivered.
func (q *AssetQueue) Poll() int {
	pending := q.pending
	q.pending = nil

	delivered := 0
	var remaining []pendingAsset
	for _, p := range pending {
		if p.deliver() {
			delivered++
			continue
		}
		remaining = append(remaining, p)
	}
	// callbacks may have enqueued follow-up loads
	q.pending = append(remaining, q.pending...)
	return delivered
}

func (q *AssetQueue) Pending() int {
	return len(q.pending)
}

// Drain polls until nothing is pending or ctx ends.
func (q *AssetQueue) Drain(ctx context.Context) error {
	for q.Pending() > 0 {
		q.Poll()
		if q.Pending() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-q.pending[0].doneChan():
		}
	}
	return nil
}

func (q *queuedFuture[T]) doneChan() <-chan struct{} {
	return q.future.done
}
