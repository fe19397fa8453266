package events

import (
	"sync"
	"sync/atomic"
)

// Emitter broadcasts events to subscribers asynchronously.
type Emitter struct {
	queueMu sync.Mutex
	queue   []Event
	closed  bool

	subsMu sync.RWMutex
	subs   map[uint64]*subscriber
	nextID uint64

	wake    chan struct{}
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool
}

type subscriber struct {
	ch   chan Event
	quit chan struct{}
}

// NewEmitter creates and starts an Emitter.
func NewEmitter() *Emitter {
	e := &Emitter{
		subs: make(map[uint64]*subscriber),
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	e.running.Store(true)
	e.wg.Add(1)
	go e.deliverLoop()
	return e
}

// Emit queues an event for delivery. It never blocks on subscribers.
// Events emitted after Close are dropped.
func (e *Emitter) Emit(ev Event) {
	e.queueMu.Lock()
	if e.closed {
		e.queueMu.Unlock()
		return
	}
	e.queue = append(e.queue, ev)
	e.queueMu.Unlock()

	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// Subscribe returns a channel receiving every event emitted after the call
// and a function that ends the subscription. A slow subscriber delays
// delivery to the others but never blocks Emit.
func (e *Emitter) Subscribe(buffer int) (<-chan Event, func()) {
	sub := &subscriber{ch: make(chan Event, buffer), quit: make(chan struct{})}

	e.subsMu.Lock()
	if !e.running.Load() {
		e.subsMu.Unlock()
		close(sub.ch)
		return sub.ch, func() {}
	}
	id := e.nextID
	e.nextID++
	e.subs[id] = sub
	e.subsMu.Unlock()

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() {
			close(sub.quit)
			e.subsMu.Lock()
			defer e.subsMu.Unlock()
			if _, ok := e.subs[id]; ok {
				delete(e.subs, id)
				close(sub.ch)
			}
		})
	}
}

// Close delivers queued events to subscribers with room for them, then
// closes every subscriber channel. It does not wait for stalled subscribers.
func (e *Emitter) Close() {
	e.queueMu.Lock()
	e.closed = true
	e.queueMu.Unlock()

	if !e.running.Swap(false) {
		return
	}
	close(e.done)
	e.wg.Wait()

	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	for id, sub := range e.subs {
		delete(e.subs, id)
		close(sub.ch)
	}
}

func (e *Emitter) deliverLoop() {
	defer e.wg.Done()
	for {
		select {
		case <-e.wake:
			e.drain()
		case <-e.done:
			e.drain()
			return
		}
	}
}

func (e *Emitter) drain() {
	for {
		e.queueMu.Lock()
		if len(e.queue) == 0 {
			e.queueMu.Unlock()
			return
		}
		ev := e.queue[0]
		e.queue = e.queue[1:]
		e.queueMu.Unlock()

		e.deliver(ev)
	}
}

func (e *Emitter) deliver(ev Event) {
	e.subsMu.RLock()
	defer e.subsMu.RUnlock()
	for _, sub := range e.subs {
		select {
		case sub.ch <- ev:
			continue
		default:
		}
		select {
		case sub.ch <- ev:
		case <-sub.quit:
		case <-e.done:
			// Closing; a subscriber that is not keeping up misses the rest.
		}
	}
}

var _ Sink = (*Emitter)(nil)
