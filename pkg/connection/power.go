package connection

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrClosed is returned after the PowerManager has been closed.
var ErrClosed = errors.New("power manager closed")

// State is the adapter power state.
type State uint8

const (
	// StatePoweredOff indicates the adapter is not usable.
	StatePoweredOff State = iota

	// StateEnabling indicates an enable attempt is in progress.
	StateEnabling

	// StatePoweredOn indicates the adapter is ready.
	StatePoweredOn

	// StateClosed indicates the manager has been shut down.
	StateClosed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StatePoweredOff:
		return "POWERED_OFF"
	case StateEnabling:
		return "ENABLING"
	case StatePoweredOn:
		return "POWERED_ON"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// EnableFunc powers on the adapter.
type EnableFunc func(ctx context.Context) error

// PowerManager keeps retrying EnableFunc until the adapter is powered on.
type PowerManager struct {
	mu sync.RWMutex

	state    State
	backoff  *Backoff
	enableFn EnableFunc

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	kick   chan struct{}

	attemptTimeout time.Duration
	onStateChange  func(oldState, newState State)
	onRetry        func(attempt int, delay time.Duration, err error)
}

// NewPowerManager creates a PowerManager. Call Start to begin enabling.
func NewPowerManager(enable EnableFunc, backoff *Backoff) *PowerManager {
	if backoff == nil {
		backoff = NewBackoff()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &PowerManager{
		state:          StatePoweredOff,
		backoff:        backoff,
		enableFn:       enable,
		ctx:            ctx,
		cancel:         cancel,
		kick:           make(chan struct{}, 1),
		attemptTimeout: 10 * time.Second,
	}
}

// State returns the current power state.
func (m *PowerManager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// IsPoweredOn reports whether the adapter is ready.
func (m *PowerManager) IsPoweredOn() bool {
	return m.State() == StatePoweredOn
}

// Start launches the background enable loop and makes the first attempt.
func (m *PowerManager) Start() error {
	if m.State() == StateClosed {
		return ErrClosed
	}
	m.wg.Add(1)
	go m.run()
	m.trigger()
	return nil
}

// NotifyPowerLost reports that the adapter went down; enabling restarts.
func (m *PowerManager) NotifyPowerLost() {
	if !m.transition(StatePoweredOn, StatePoweredOff) {
		return
	}
	m.trigger()
}

// Close stops the enable loop.
func (m *PowerManager) Close() {
	m.mu.Lock()
	if m.state == StateClosed {
		m.mu.Unlock()
		return
	}
	old := m.state
	m.state = StateClosed
	cb := m.onStateChange
	m.mu.Unlock()

	if cb != nil {
		cb(old, StateClosed)
	}
	m.cancel()
	m.wg.Wait()
}

// OnStateChange sets the state change callback.
func (m *PowerManager) OnStateChange(fn func(oldState, newState State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onStateChange = fn
}

// OnRetry sets a callback invoked before each backoff wait.
func (m *PowerManager) OnRetry(fn func(attempt int, delay time.Duration, err error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onRetry = fn
}

func (m *PowerManager) trigger() {
	select {
	case m.kick <- struct{}{}:
	default:
	}
}

func (m *PowerManager) run() {
	defer m.wg.Done()
	for {
		select {
		case <-m.ctx.Done():
			return
		case <-m.kick:
			m.enable()
		}
	}
}

func (m *PowerManager) enable() {
	for {
		if !m.transition(StatePoweredOff, StateEnabling) {
			return
		}

		ctx, cancel := context.WithTimeout(m.ctx, m.attemptTimeout)
		err := m.enableFn(ctx)
		cancel()

		if err == nil {
			m.backoff.Reset()
			m.transition(StateEnabling, StatePoweredOn)
			return
		}
		if !m.transition(StateEnabling, StatePoweredOff) {
			return
		}

		delay := m.backoff.Next()
		m.mu.RLock()
		onRetry := m.onRetry
		m.mu.RUnlock()
		if onRetry != nil {
			onRetry(m.backoff.Attempts(), delay, err)
		}

		select {
		case <-m.ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

// transition moves from one state to another, returning false if the
// current state is not from. Callbacks run outside the lock.
func (m *PowerManager) transition(from, to State) bool {
	m.mu.Lock()
	if m.state != from {
		m.mu.Unlock()
		return false
	}
	m.state = to
	cb := m.onStateChange
	m.mu.Unlock()

	if cb != nil {
		cb(from, to)
	}
	return true
}
