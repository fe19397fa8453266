package sim

import (
	"errors"
	"slices"
	"sync"

	"github.com/mesh-lifecycle/mesh-go/pkg/scanner"
)

// ErrPoweredOff is returned by Scan when the radio is off.
var ErrPoweredOff = errors.New("radio powered off")

// Radio is a scripted scanner.Radio. Advertisements are kept and replayed
// to every scan that starts later, like devices that keep advertising.
type Radio struct {
	mu       sync.Mutex
	state    scanner.RadioState
	handlers []func(scanner.RadioState)
	adverts  map[string]scanner.Advertisement
	order    []string

	services []uint16
	handler  func(scanner.Advertisement)
	stop     chan struct{}
	scans    int
}

// NewRadio returns a radio in the given power state.
func NewRadio(state scanner.RadioState) *Radio {
	return &Radio{state: state, adverts: make(map[string]scanner.Advertisement)}
}

// State implements scanner.Radio.
func (r *Radio) State() scanner.RadioState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// OnStateChange implements scanner.Radio.
func (r *Radio) OnStateChange(fn func(scanner.RadioState)) {
	r.mu.Lock()
	r.handlers = append(r.handlers, fn)
	r.mu.Unlock()
}

// SetState changes the power state. Powering off ends a running scan.
func (r *Radio) SetState(state scanner.RadioState) {
	r.mu.Lock()
	if r.state == state {
		r.mu.Unlock()
		return
	}
	r.state = state
	handlers := slices.Clone(r.handlers)
	if state != scanner.RadioPoweredOn {
		r.stopLocked()
	}
	r.mu.Unlock()

	for _, fn := range handlers {
		fn(state)
	}
}

// Scan implements scanner.Radio. It replays known advertisements, then
// reports new ones until StopScan.
func (r *Radio) Scan(services []uint16, handler func(scanner.Advertisement)) error {
	r.mu.Lock()
	if r.state != scanner.RadioPoweredOn {
		r.mu.Unlock()
		return ErrPoweredOff
	}
	if r.stop != nil {
		r.mu.Unlock()
		return errors.New("scan already running")
	}
	stop := make(chan struct{})
	r.stop = stop
	r.services = slices.Clone(services)
	r.handler = handler
	r.scans++
	replay := r.matchingLocked()
	r.mu.Unlock()

	for _, adv := range replay {
		handler(adv)
	}
	<-stop
	return nil
}

// StopScan implements scanner.Radio.
func (r *Radio) StopScan() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()
	return nil
}

func (r *Radio) stopLocked() {
	if r.stop == nil {
		return
	}
	close(r.stop)
	r.stop = nil
	r.handler = nil
}

// Advertise records an advertisement and reports it to a running scan.
func (r *Radio) Advertise(adv scanner.Advertisement) {
	r.mu.Lock()
	if _, ok := r.adverts[adv.Identifier]; !ok {
		r.order = append(r.order, adv.Identifier)
	}
	r.adverts[adv.Identifier] = adv
	handler := r.handler
	match := handler != nil && r.matches(adv)
	r.mu.Unlock()

	if match {
		handler(adv)
	}
}

// Remove stops a peripheral from advertising.
func (r *Radio) Remove(identifier string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.adverts, identifier)
	r.order = slices.DeleteFunc(r.order, func(id string) bool { return id == identifier })
}

// Scanning reports whether a scan is running.
func (r *Radio) Scanning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stop != nil
}

// Scans returns how many scans have started.
func (r *Radio) Scans() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scans
}

func (r *Radio) matchingLocked() []scanner.Advertisement {
	var out []scanner.Advertisement
	for _, id := range r.order {
		if adv := r.adverts[id]; r.matches(adv) {
			out = append(out, adv)
		}
	}
	return out
}

func (r *Radio) matches(adv scanner.Advertisement) bool {
	if len(r.services) == 0 {
		return true
	}
	for _, s := range r.services {
		if adv.HasService(s) {
			return true
		}
	}
	return false
}

var _ scanner.Radio = (*Radio)(nil)
