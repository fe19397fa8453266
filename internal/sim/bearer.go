package sim

import (
	"sync"

	"github.com/mesh-lifecycle/mesh-go/pkg/bearer"
)

type bearerState uint8

const (
	bearerClosed bearerState = iota
	bearerOpening
	bearerOpen
)

// Bearer is an in-memory bearer to a simulated device. Lifecycle callbacks
// run on the stack's executor.
type Bearer struct {
	stack  *Stack
	device Device

	mu       sync.Mutex
	state    bearerState
	gen      uint64
	delegate bearer.Delegate
	data     bearer.DataDelegate
	sent     int
}

// Identifier implements bearer.Bearer.
func (b *Bearer) Identifier() string { return b.device.Identifier }

// SetDelegate implements bearer.Bearer.
func (b *Bearer) SetDelegate(d bearer.Delegate) {
	b.mu.Lock()
	b.delegate = d
	b.mu.Unlock()
}

// SetDataDelegate implements bearer.Bearer.
func (b *Bearer) SetDataDelegate(d bearer.DataDelegate) {
	b.mu.Lock()
	b.data = d
	b.mu.Unlock()
}

// IsOpen implements bearer.Bearer.
func (b *Bearer) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state == bearerOpen
}

// Open implements bearer.Bearer. The connection completes asynchronously.
func (b *Bearer) Open() error {
	b.mu.Lock()
	if b.state != bearerClosed {
		b.mu.Unlock()
		return bearer.ErrAlreadyOpen
	}
	b.state = bearerOpening
	b.gen++
	gen := b.gen
	b.mu.Unlock()

	b.stack.after(b.device.Latency, func() { b.connect(gen) })
	return nil
}

func (b *Bearer) connect(gen uint64) {
	if err := b.device.ConnectError; err != nil {
		b.shutdown(gen, err)
		return
	}
	b.notify(gen, func(d bearer.Delegate) { d.BearerDidConnect(b) })
	b.notify(gen, func(d bearer.Delegate) { d.BearerDidDiscoverServices(b) })

	b.mu.Lock()
	if b.gen != gen || b.state != bearerOpening {
		b.mu.Unlock()
		return
	}
	b.state = bearerOpen
	b.mu.Unlock()
	b.notify(gen, func(d bearer.Delegate) { d.BearerDidOpen(b) })
}

func (b *Bearer) notify(gen uint64, fn func(bearer.Delegate)) {
	b.mu.Lock()
	d := b.delegate
	current := b.gen == gen && b.state != bearerClosed
	b.mu.Unlock()
	if current && d != nil {
		fn(d)
	}
}

// Send implements bearer.Bearer. The simulated provisioning exchange does
// not travel as PDUs, so the payload is only counted.
func (b *Bearer) Send(pduType bearer.PDUType, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != bearerOpen {
		return bearer.ErrClosed
	}
	b.sent++
	return nil
}

// Close implements bearer.Bearer.
func (b *Bearer) Close() error {
	b.mu.Lock()
	gen := b.gen
	b.mu.Unlock()
	b.shutdown(gen, nil)
	return nil
}

// PeerDisconnect closes the bearer from the device side.
func (b *Bearer) PeerDisconnect(cause error) {
	b.mu.Lock()
	gen := b.gen
	b.mu.Unlock()
	b.shutdown(gen, cause)
}

func (b *Bearer) shutdown(gen uint64, cause error) {
	b.mu.Lock()
	if b.gen != gen || b.state == bearerClosed {
		b.mu.Unlock()
		return
	}
	b.state = bearerClosed
	d := b.delegate
	b.mu.Unlock()

	b.stack.bearerClosed(b)
	if d != nil {
		d.BearerDidClose(b, cause)
	}
}

var _ bearer.Bearer = (*Bearer)(nil)
