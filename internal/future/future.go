// Package future provides the fan-out/fan-in primitive used when the whole
// form validates at once: every field pipeline launches concurrently and the
// aggregator joins on all of them.
package future

import "context"

// Future holds the eventual result of one launched computation.
type Future[T any] struct {
	result T
	done   chan struct{}
}

// Go launches fn on its own goroutine and returns a Future for its result.
func Go[T any](ctx context.Context, fn func(context.Context) T) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.result = fn(ctx)
	}()
	return f
}

// Await blocks until the computation finishes and returns its result.
func (f *Future[T]) Await() T {
	<-f.done
	return f.result
}

// AwaitAll joins on every future in order and collects the results.
func AwaitAll[T any](futures []*Future[T]) []T {
	out := make([]T, len(futures))
	for i, f := range futures {
		out[i] = f.Await()
	}
	return out
}
