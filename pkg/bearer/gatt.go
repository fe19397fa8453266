package bearer

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"tinygo.org/x/bluetooth"

	meshlog "github.com/mesh-lifecycle/mesh-go/pkg/log"
	"github.com/mesh-lifecycle/mesh-go/pkg/scanner"
)

// Mesh GATT service and characteristic UUIDs.
const (
	ProvisioningService uint16 = 0x1827
	ProvisioningDataIn  uint16 = 0x2ADB
	ProvisioningDataOut uint16 = 0x2ADC

	ProxyService uint16 = 0x1828
	ProxyDataIn  uint16 = 0x2ADD
	ProxyDataOut uint16 = 0x2ADE
)

// DefaultMTU is the ATT payload size used for proxy segmentation
// (23-byte ATT MTU minus the 3-byte write header).
const DefaultMTU = 20

type gattProfile struct {
	service uint16
	dataIn  uint16
	dataOut uint16
}

var (
	pbGATT    = gattProfile{ProvisioningService, ProvisioningDataIn, ProvisioningDataOut}
	proxyGATT = gattProfile{ProxyService, ProxyDataIn, ProxyDataOut}
)

type gattState uint8

const (
	gattClosed gattState = iota
	gattOpening
	gattOpen
)

// Central owns the adapter-level connect handler and the set of live GATT
// bearers, so that peer disconnects reach the right bearer.
type Central struct {
	adapter *bluetooth.Adapter
	logger  *slog.Logger
	trace   meshlog.Logger

	mu      sync.Mutex
	bearers map[string]*GATT
}

// NewCentral registers a connect handler on adapter. The adapter must
// already be enabled, or be enabled before any bearer opens.
func NewCentral(adapter *bluetooth.Adapter, logger *slog.Logger, trace meshlog.Logger) *Central {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := &Central{
		adapter: adapter,
		logger:  logger,
		trace:   meshlog.OrNoop(trace),
		bearers: make(map[string]*GATT),
	}
	adapter.SetConnectHandler(func(device bluetooth.Device, connected bool) {
		if connected {
			return
		}
		id := device.Address.String()
		c.mu.Lock()
		b, ok := c.bearers[id]
		c.mu.Unlock()
		if ok {
			b.peerDisconnected()
		}
	})
	return c
}

// Factory returns a bearer factory. Provisioned devices get a proxy bearer,
// unprovisioned devices a PB-GATT bearer.
func (c *Central) Factory() Factory {
	return func(device scanner.DiscoveredDevice) (Bearer, error) {
		if device.Identifier == "" {
			return nil, fmt.Errorf("bearer: empty device identifier")
		}
		if device.IsProvisioned {
			return c.NewProxy(device.Identifier), nil
		}
		return c.NewPBGATT(device.Identifier), nil
	}
}

// NewPBGATT returns a closed PB-GATT bearer for the peripheral.
func (c *Central) NewPBGATT(identifier string) *GATT {
	return c.newGATT(identifier, pbGATT)
}

// NewProxy returns a closed proxy bearer for the peripheral.
func (c *Central) NewProxy(identifier string) *GATT {
	return c.newGATT(identifier, proxyGATT)
}

func (c *Central) newGATT(identifier string, p gattProfile) *GATT {
	return &GATT{central: c, identifier: identifier, profile: p, mtu: DefaultMTU}
}

func (c *Central) track(b *GATT) {
	c.mu.Lock()
	c.bearers[b.identifier] = b
	c.mu.Unlock()
}

func (c *Central) untrack(b *GATT) {
	c.mu.Lock()
	if c.bearers[b.identifier] == b {
		delete(c.bearers, b.identifier)
	}
	c.mu.Unlock()
}

// GATT is a mesh bearer over a BLE GATT connection.
type GATT struct {
	central    *Central
	identifier string
	profile    gattProfile
	mtu        int

	mu       sync.Mutex
	state    gattState
	gen      uint64
	device   *bluetooth.Device
	dataIn   *bluetooth.DeviceCharacteristic
	delegate Delegate
	data     DataDelegate
	rx       reassembler
}

// Identifier returns the peripheral identifier.
func (b *GATT) Identifier() string { return b.identifier }

// SetDelegate sets the lifecycle delegate.
func (b *GATT) SetDelegate(d Delegate) {
	b.mu.Lock()
	b.delegate = d
	b.mu.Unlock()
}

// SetDataDelegate sets the receiver of incoming PDUs.
func (b *GATT) SetDataDelegate(d DataDelegate) {
	b.mu.Lock()
	b.data = d
	b.mu.Unlock()
}

// IsOpen reports whether the bearer is ready.
func (b *GATT) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state == gattOpen
}

// Open connects in the background.
func (b *GATT) Open() error {
	b.mu.Lock()
	if b.state != gattClosed {
		b.mu.Unlock()
		return ErrAlreadyOpen
	}
	b.state = gattOpening
	b.gen++
	gen := b.gen
	b.rx = reassembler{}
	b.mu.Unlock()

	b.central.track(b)
	go b.connect(gen)
	return nil
}

func (b *GATT) connect(gen uint64) {
	log := b.central.logger
	var addr bluetooth.Address
	addr.Set(b.identifier)

	start := time.Now()
	device, err := b.central.adapter.Connect(addr, bluetooth.ConnectionParams{})
	if err != nil {
		b.fail(gen, fmt.Errorf("bearer: connect to %s: %w", b.identifier, err))
		return
	}
	if !b.attach(gen, &device) {
		_ = device.Disconnect()
		return
	}
	log.Debug("[BLE] connected", "device", b.identifier, "elapsed", time.Since(start))
	b.notify(gen, func(d Delegate) { d.BearerDidConnect(b) })

	svcs, err := device.DiscoverServices([]bluetooth.UUID{bluetooth.New16BitUUID(b.profile.service)})
	if err != nil || len(svcs) == 0 {
		b.fail(gen, fmt.Errorf("bearer: service %04X not found: %v", b.profile.service, err))
		return
	}
	chars, err := svcs[0].DiscoverCharacteristics([]bluetooth.UUID{
		bluetooth.New16BitUUID(b.profile.dataIn),
		bluetooth.New16BitUUID(b.profile.dataOut),
	})
	if err != nil || len(chars) < 2 {
		b.fail(gen, fmt.Errorf("bearer: characteristics not found: %v", err))
		return
	}
	var in, out *bluetooth.DeviceCharacteristic
	for i := range chars {
		switch {
		case chars[i].UUID() == bluetooth.New16BitUUID(b.profile.dataIn):
			in = &chars[i]
		case chars[i].UUID() == bluetooth.New16BitUUID(b.profile.dataOut):
			out = &chars[i]
		}
	}
	if in == nil || out == nil {
		b.fail(gen, fmt.Errorf("bearer: data characteristics missing"))
		return
	}
	b.notify(gen, func(d Delegate) { d.BearerDidDiscoverServices(b) })

	if err := out.EnableNotifications(func(buf []byte) { b.receive(gen, buf) }); err != nil {
		b.fail(gen, fmt.Errorf("bearer: enable notifications: %w", err))
		return
	}

	b.mu.Lock()
	if b.gen != gen || b.state != gattOpening {
		b.mu.Unlock()
		return
	}
	b.dataIn = in
	b.state = gattOpen
	b.mu.Unlock()

	log.Info("[BLE] bearer open", "device", b.identifier, "service", fmt.Sprintf("%04X", b.profile.service))
	b.notify(gen, func(d Delegate) { d.BearerDidOpen(b) })
}

// attach records the connected device, unless the bearer was closed while
// connecting.
func (b *GATT) attach(gen uint64, device *bluetooth.Device) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.gen != gen || b.state != gattOpening {
		return false
	}
	b.device = device
	return true
}

func (b *GATT) notify(gen uint64, fn func(Delegate)) {
	b.mu.Lock()
	d := b.delegate
	current := b.gen == gen && b.state != gattClosed
	b.mu.Unlock()
	if current && d != nil {
		fn(d)
	}
}

// Send segments and writes a PDU to the data-in characteristic.
func (b *GATT) Send(pduType PDUType, data []byte) error {
	b.mu.Lock()
	in := b.dataIn
	open := b.state == gattOpen
	b.mu.Unlock()
	if !open || in == nil {
		return ErrClosed
	}

	b.central.trace.Log(meshlog.Event{
		Timestamp: time.Now(),
		Direction: meshlog.DirectionOut,
		Layer:     meshlog.LayerBearer,
		Category:  meshlog.CategoryMessage,
		DeviceID:  b.identifier,
		PDU:       meshlog.NewPDUEvent(uint8(pduType), data),
	})
	for _, seg := range segment(pduType, data, b.mtu) {
		if _, err := in.WriteWithoutResponse(seg); err != nil {
			return fmt.Errorf("bearer: write: %w", err)
		}
	}
	return nil
}

func (b *GATT) receive(gen uint64, buf []byte) {
	b.mu.Lock()
	if b.gen != gen || b.state == gattClosed {
		b.mu.Unlock()
		return
	}
	t, pdu, ok, err := b.rx.push(buf)
	d := b.data
	b.mu.Unlock()

	if err != nil {
		b.central.logger.Warn("[BLE] dropping proxy pdu", "device", b.identifier, "error", err)
		return
	}
	if !ok {
		return
	}
	b.central.trace.Log(meshlog.Event{
		Timestamp: time.Now(),
		Direction: meshlog.DirectionIn,
		Layer:     meshlog.LayerBearer,
		Category:  meshlog.CategoryMessage,
		DeviceID:  b.identifier,
		PDU:       meshlog.NewPDUEvent(uint8(t), pdu),
	})
	if d != nil {
		d.BearerDidDeliver(b, t, pdu)
	}
}

// Close disconnects. The delegate sees BearerDidClose(nil) once.
func (b *GATT) Close() error {
	return b.shutdown(nil, true)
}

func (b *GATT) fail(gen uint64, err error) {
	b.mu.Lock()
	stale := b.gen != gen
	b.mu.Unlock()
	if stale {
		return
	}
	b.central.logger.Warn("[BLE] bearer failed", "device", b.identifier, "error", err)
	_ = b.shutdown(err, true)
}

func (b *GATT) peerDisconnected() {
	b.central.logger.Info("[BLE] peer disconnected", "device", b.identifier)
	_ = b.shutdown(fmt.Errorf("bearer: %s disconnected", b.identifier), false)
}

func (b *GATT) shutdown(cause error, disconnect bool) error {
	b.mu.Lock()
	if b.state == gattClosed {
		b.mu.Unlock()
		return nil
	}
	b.state = gattClosed
	device := b.device
	b.device = nil
	b.dataIn = nil
	d := b.delegate
	b.mu.Unlock()

	b.central.untrack(b)

	var err error
	if disconnect && device != nil {
		err = device.Disconnect()
	}
	if d != nil {
		d.BearerDidClose(b, cause)
	}
	return err
}

var _ Bearer = (*GATT)(nil)
