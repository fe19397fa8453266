// Package loop provides the single execution context that owns all mutable
// controller state. Bearer callbacks, protocol callbacks, received messages
// and timer ticks are posted onto the loop so that no two state transitions
// ever run concurrently.
package loop

import (
	"bytes"
	"context"
	"errors"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
)

// ErrStopped is returned by Call when the loop is not running.
var ErrStopped = errors.New("loop stopped")

// Loop is a serial executor.
type Loop struct {
	mu    sync.Mutex
	queue []func()
	wake  chan struct{}

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running atomic.Bool

	// owner is the id of the goroutine running tasks.
	owner atomic.Uint64
}

// New creates a Loop. Call Start before posting work.
func New() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Start runs the loop until ctx is cancelled or Stop is called.
func (l *Loop) Start(ctx context.Context) {
	if l.running.Swap(true) {
		return
	}
	l.ctx, l.cancel = context.WithCancel(ctx)
	l.wg.Add(1)
	go l.run()
}

// Stop halts the loop after the current task. Queued tasks are dropped.
func (l *Loop) Stop() {
	if !l.running.Swap(false) {
		return
	}
	l.cancel()
	l.wg.Wait()

	l.mu.Lock()
	l.queue = nil
	l.mu.Unlock()
}

// Running reports whether the loop is running.
func (l *Loop) Running() bool {
	return l.running.Load()
}

// Post queues fn to run on the loop. It never blocks. Work posted while
// the loop is stopped is dropped.
func (l *Loop) Post(fn func()) {
	if !l.running.Load() {
		return
	}
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Call runs fn on the loop and waits for it to finish. Called from a task
// running on the loop, fn runs inline.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	if !l.running.Load() {
		return ErrStopped
	}
	if l.owner.Load() == goroutineID() {
		fn()
		return nil
	}
	done := make(chan struct{})
	l.Post(func() {
		defer close(done)
		fn()
	})
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.ctx.Done():
		return ErrStopped
	}
}

func (l *Loop) run() {
	defer l.wg.Done()
	l.owner.Store(goroutineID())
	defer l.owner.Store(0)
	for {
		select {
		case <-l.ctx.Done():
			return
		case <-l.wake:
		}
		for {
			l.mu.Lock()
			if len(l.queue) == 0 {
				l.mu.Unlock()
				break
			}
			fn := l.queue[0]
			l.queue = l.queue[1:]
			l.mu.Unlock()

			if l.ctx.Err() != nil {
				return
			}
			fn()
		}
	}
}

// goroutineID parses the current goroutine's id from its stack header,
// "goroutine 18 [running]:".
func goroutineID() uint64 {
	var buf [64]byte
	b := buf[:runtime.Stack(buf[:], false)]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i > 0 {
		b = b[:i]
	}
	id, _ := strconv.ParseUint(string(b), 10, 64)
	return id
}
