package scanner

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"tinygo.org/x/bluetooth"

	"github.com/mesh-lifecycle/mesh-go/pkg/connection"
)

// TinyGoRadio implements Radio over tinygo.org/x/bluetooth. The adapter is
// enabled in the background and re-enabled after a failed scan.
type TinyGoRadio struct {
	adapter *bluetooth.Adapter
	power   *connection.PowerManager
	logger  *slog.Logger

	mu       sync.Mutex
	handlers []func(RadioState)
}

// NewTinyGoRadio wraps adapter. Pass bluetooth.DefaultAdapter on desktop
// platforms.
func NewTinyGoRadio(adapter *bluetooth.Adapter, logger *slog.Logger) *TinyGoRadio {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	r := &TinyGoRadio{adapter: adapter, logger: logger}
	r.power = connection.NewPowerManager(func(ctx context.Context) error {
		return adapter.Enable()
	}, nil)
	r.power.OnStateChange(r.powerStateChanged)
	r.power.OnRetry(func(attempt int, delay time.Duration, err error) {
		logger.Warn("[BLE] adapter enable failed, retrying", "attempt", attempt, "delay", delay, "error", err)
	})
	return r
}

// Start begins enabling the adapter.
func (r *TinyGoRadio) Start() error {
	return r.power.Start()
}

// Close stops the power manager.
func (r *TinyGoRadio) Close() {
	r.power.Close()
}

// Adapter returns the underlying adapter, for bearers that need to connect.
func (r *TinyGoRadio) Adapter() *bluetooth.Adapter {
	return r.adapter
}

// State returns the radio power state.
func (r *TinyGoRadio) State() RadioState {
	if r.power.IsPoweredOn() {
		return RadioPoweredOn
	}
	return RadioPoweredOff
}

// OnStateChange registers a power state callback.
func (r *TinyGoRadio) OnStateChange(fn func(RadioState)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers = append(r.handlers, fn)
}

// Scan runs an adapter scan, forwarding reports for the given services.
func (r *TinyGoRadio) Scan(services []uint16, handler func(Advertisement)) error {
	uuids := make([]bluetooth.UUID, len(services))
	for i, id := range services {
		uuids[i] = bluetooth.New16BitUUID(id)
	}

	err := r.adapter.Scan(func(_ *bluetooth.Adapter, result bluetooth.ScanResult) {
		adv := Advertisement{
			Identifier:  result.Address.String(),
			Name:        result.LocalName(),
			RSSI:        int(result.RSSI),
			ServiceData: make(map[uint16][]byte),
		}
		for i, u := range uuids {
			if result.HasServiceUUID(u) {
				adv.Services = append(adv.Services, services[i])
			}
		}
		for _, sd := range result.ServiceData() {
			if !sd.UUID.Is16Bit() {
				continue
			}
			id := sd.UUID.Get16Bit()
			for _, want := range services {
				if id == want {
					adv.ServiceData[id] = sd.Data
				}
			}
		}
		if len(adv.Services) == 0 && len(adv.ServiceData) == 0 {
			return
		}
		handler(adv)
	})
	if err != nil {
		r.logger.Warn("[BLE] scan failed", "error", err)
		r.power.NotifyPowerLost()
	}
	return err
}

// StopScan stops a running scan.
func (r *TinyGoRadio) StopScan() error {
	return r.adapter.StopScan()
}

func (r *TinyGoRadio) powerStateChanged(_, newState connection.State) {
	var state RadioState
	switch newState {
	case connection.StatePoweredOn:
		state = RadioPoweredOn
	case connection.StatePoweredOff, connection.StateClosed:
		state = RadioPoweredOff
	default:
		return
	}

	r.mu.Lock()
	handlers := slices.Clone(r.handlers)
	r.mu.Unlock()

	for _, fn := range handlers {
		fn(state)
	}
}

var _ Radio = (*TinyGoRadio)(nil)
