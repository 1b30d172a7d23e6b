package cache

import (
	"context"
	"sync"
)

// Flush tracks one background write. The memory side of a mutation is
// complete when the mutating call returns; Flush reports the disk side.
type Flush struct {
	done chan struct{}
	once sync.Once
	err  error
}

func newFlush() *Flush {
	return &Flush{done: make(chan struct{})}
}

func completedFlush(err error) *Flush {
	f := newFlush()
	f.complete(err)
	return f
}

func (f *Flush) complete(err error) {
	f.once.Do(func() {
		f.err = err
		close(f.done)
	})
}

// Done is closed once the write finished or was superseded.
func (f *Flush) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the write finished or ctx is done. A write superseded
// by a newer write for the same account reports nil.
func (f *Flush) Wait(ctx context.Context) error {
	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err returns the write result, or nil while the write is pending.
func (f *Flush) Err() error {
	select {
	case <-f.done:
		return f.err
	default:
		return nil
	}
}
