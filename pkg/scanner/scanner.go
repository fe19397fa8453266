package scanner

import (
	"context"
	"iter"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/mesh-lifecycle/mesh-go/pkg/log"
	"github.com/mesh-lifecycle/mesh-go/pkg/mesh"
)

// DefaultServices is the advertisement allow-list.
var DefaultServices = []uint16{mesh.ProvisioningServiceUUID, mesh.ProxyServiceUUID}

// DiscoveredDevice is the latest observation of a peripheral.
type DiscoveredDevice struct {
	Identifier string
	Name       string

	// AdvertisementPayload is the mesh service data: provisioning service
	// data for unprovisioned devices, proxy service data otherwise.
	AdvertisementPayload []byte

	RSSI          int
	IsProvisioned bool
	LastSeen      time.Time
}

// Config configures a Scanner.
type Config struct {
	// Services is the advertisement allow-list. Defaults to DefaultServices.
	Services []uint16

	Logger *slog.Logger
	Trace  log.Logger
}

// Scanner maintains the table of discovered mesh devices.
type Scanner struct {
	radio    Radio
	services []uint16
	logger   *slog.Logger
	trace    log.Logger
	now      func() time.Time

	mu      sync.Mutex
	devices map[string]DiscoveredDevice
	wanted  bool
	active  bool
	restart bool
	subs    map[uint64]chan DiscoveredDevice
	nextSub uint64
}

// New creates a Scanner over radio.
func New(radio Radio, cfg Config) *Scanner {
	if len(cfg.Services) == 0 {
		cfg.Services = DefaultServices
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	s := &Scanner{
		radio:    radio,
		services: slices.Clone(cfg.Services),
		logger:   cfg.Logger,
		trace:    log.OrNoop(cfg.Trace),
		now:      time.Now,
		devices:  make(map[string]DiscoveredDevice),
		subs:     make(map[uint64]chan DiscoveredDevice),
	}
	radio.OnStateChange(s.radioStateChanged)
	return s
}

// StartScan begins discovery. It is idempotent. If the radio is not powered
// on, the scan starts once it is.
func (s *Scanner) StartScan() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.wanted {
		return
	}
	s.wanted = true
	s.traceState("IDLE", "SCANNING", "")

	if s.radio.State() != RadioPoweredOn {
		s.logger.Info("[SCAN] radio not ready, scan deferred", "state", s.radio.State())
		return
	}
	s.launchLocked()
}

// StopScan halts discovery. It is idempotent. Discovered devices are kept.
func (s *Scanner) StopScan() {
	s.mu.Lock()
	if !s.wanted {
		s.mu.Unlock()
		return
	}
	s.wanted = false
	active := s.active
	s.traceState("SCANNING", "IDLE", "")
	s.mu.Unlock()

	if active {
		if err := s.radio.StopScan(); err != nil {
			s.logger.Warn("[SCAN] stop scan failed", "error", err)
		}
	}
}

// IsScanning reports whether a scan has been requested.
func (s *Scanner) IsScanning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wanted
}

// Lookup returns the most recent observation of a peripheral.
func (s *Scanner) Lookup(identifier string) (DiscoveredDevice, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.devices[identifier]
	return d, ok
}

// Devices returns all discovered devices ordered by identifier.
func (s *Scanner) Devices() []DiscoveredDevice {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]DiscoveredDevice, 0, len(s.devices))
	for _, d := range s.devices {
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b DiscoveredDevice) int {
		return strings.Compare(a.Identifier, b.Identifier)
	})
	return out
}

// Reset clears the discovered device table.
func (s *Scanner) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.devices)
}

// Subscribe returns a channel of new and refreshed observations. When the
// channel buffer is full, observations are dropped for that subscriber;
// Lookup always returns the latest one.
func (s *Scanner) Subscribe(buffer int) (<-chan DiscoveredDevice, func()) {
	ch := make(chan DiscoveredDevice, buffer)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}

// Observe returns a sequence of observations that runs until ctx is done
// or the consumer stops. Each iteration subscribes afresh.
func (s *Scanner) Observe(ctx context.Context) iter.Seq[DiscoveredDevice] {
	return func(yield func(DiscoveredDevice) bool) {
		ch, cancel := s.Subscribe(32)
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-ch:
				if !ok || !yield(d) {
					return
				}
			}
		}
	}
}

func (s *Scanner) launchLocked() {
	if s.active {
		// The running scan goroutine picks this up when its scan returns.
		s.restart = true
		return
	}
	s.active = true
	go s.scanLoop()
}

func (s *Scanner) scanLoop() {
	for {
		s.mu.Lock()
		if !s.wanted || s.radio.State() != RadioPoweredOn {
			s.active = false
			s.restart = false
			s.mu.Unlock()
			return
		}
		s.restart = false
		s.mu.Unlock()

		s.logger.Debug("[SCAN] scanning", "services", s.services)
		err := s.radio.Scan(s.services, s.handleAdvertisement)
		if err == nil {
			continue
		}

		s.mu.Lock()
		restart := s.restart
		if !restart {
			s.active = false
		}
		s.mu.Unlock()
		s.logger.Warn("[SCAN] scan ended with error", "error", err, "restart", restart)
		if !restart {
			return
		}
	}
}

func (s *Scanner) radioStateChanged(state RadioState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Info("[SCAN] radio state changed", "state", state)
	if state == RadioPoweredOn && s.wanted {
		s.launchLocked()
	}
}

func (s *Scanner) handleAdvertisement(adv Advertisement) {
	var (
		payload     []byte
		provisioned bool
	)
	switch {
	case adv.HasService(mesh.ProvisioningServiceUUID):
		payload = adv.ServiceData[mesh.ProvisioningServiceUUID]
	case adv.HasService(mesh.ProxyServiceUUID):
		payload = adv.ServiceData[mesh.ProxyServiceUUID]
		provisioned = true
	default:
		return
	}

	dev := DiscoveredDevice{
		Identifier:           adv.Identifier,
		Name:                 adv.Name,
		AdvertisementPayload: slices.Clone(payload),
		RSSI:                 adv.RSSI,
		IsProvisioned:        provisioned,
		LastSeen:             s.now(),
	}

	s.mu.Lock()
	if !s.wanted {
		// StopScan raced with the scan starting.
		s.mu.Unlock()
		if err := s.radio.StopScan(); err != nil {
			s.logger.Warn("[SCAN] stop scan failed", "error", err)
		}
		return
	}
	_, seen := s.devices[dev.Identifier]
	s.devices[dev.Identifier] = dev
	for _, ch := range s.subs {
		select {
		case ch <- dev:
		default:
		}
	}
	s.mu.Unlock()

	if !seen {
		s.logger.Debug("[SCAN] discovered device",
			"id", dev.Identifier, "name", dev.Name, "rssi", dev.RSSI, "provisioned", dev.IsProvisioned)
	}
}

func (s *Scanner) traceState(from, to, reason string) {
	s.trace.Log(log.Event{
		Timestamp: s.now(),
		Layer:     log.LayerService,
		Category:  log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityScanner,
			OldState: from,
			NewState: to,
			Reason:   reason,
		},
	})
}
