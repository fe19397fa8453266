package mesh

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Service identifiers advertised by mesh devices.
const (
	ProvisioningServiceUUID uint16 = 0x1827
	ProxyServiceUUID        uint16 = 0x1828
)

// ErrInvalidAdvertisement is returned when service data cannot be parsed.
var ErrInvalidAdvertisement = errors.New("invalid mesh advertisement")

// UnprovisionedDevice is the identity an unprovisioned device advertises
// in its Mesh Provisioning service data.
type UnprovisionedDevice struct {
	UUID           uuid.UUID
	Name           string
	OOBInformation uint16
	URIHash        []byte
}

// ParseUnprovisionedDevice parses Mesh Provisioning service data: a 16-byte
// device UUID, 2 bytes of OOB information and an optional 4-byte URI hash.
func ParseUnprovisionedDevice(name string, serviceData []byte) (UnprovisionedDevice, error) {
	if len(serviceData) != 18 && len(serviceData) != 22 {
		return UnprovisionedDevice{}, fmt.Errorf("%w: service data length %d", ErrInvalidAdvertisement, len(serviceData))
	}
	id, err := uuid.FromBytes(serviceData[:16])
	if err != nil {
		return UnprovisionedDevice{}, fmt.Errorf("%w: %v", ErrInvalidAdvertisement, err)
	}
	dev := UnprovisionedDevice{
		UUID:           id,
		Name:           name,
		OOBInformation: binary.BigEndian.Uint16(serviceData[16:18]),
	}
	if len(serviceData) == 22 {
		dev.URIHash = append([]byte(nil), serviceData[18:]...)
	}
	if dev.Name == "" {
		dev.Name = "Unknown Device"
	}
	return dev, nil
}

// ServiceData encodes the device back into provisioning service data.
func (d UnprovisionedDevice) ServiceData() []byte {
	out := make([]byte, 18, 22)
	copy(out, d.UUID[:])
	binary.BigEndian.PutUint16(out[16:], d.OOBInformation)
	return append(out, d.URIHash...)
}

// ProxyIdentification is the type of a Mesh Proxy advertisement.
type ProxyIdentification uint8

const (
	// ProxyNetworkID advertises the network identity.
	ProxyNetworkID ProxyIdentification = 0x00
	// ProxyNodeIdentity advertises the node identity.
	ProxyNodeIdentity ProxyIdentification = 0x01
)

// String returns the identification type name.
func (p ProxyIdentification) String() string {
	switch p {
	case ProxyNetworkID:
		return "NETWORK_ID"
	case ProxyNodeIdentity:
		return "NODE_IDENTITY"
	default:
		return "UNKNOWN"
	}
}

// ProxyAdvertisement is a parsed Mesh Proxy service data payload.
type ProxyAdvertisement struct {
	Type ProxyIdentification
	Data []byte
}

// ParseProxyAdvertisement parses Mesh Proxy service data.
func ParseProxyAdvertisement(serviceData []byte) (ProxyAdvertisement, error) {
	if len(serviceData) < 1 {
		return ProxyAdvertisement{}, fmt.Errorf("%w: empty proxy service data", ErrInvalidAdvertisement)
	}
	adv := ProxyAdvertisement{Type: ProxyIdentification(serviceData[0])}
	switch adv.Type {
	case ProxyNetworkID:
		if len(serviceData) != 9 {
			return ProxyAdvertisement{}, fmt.Errorf("%w: network id length %d", ErrInvalidAdvertisement, len(serviceData))
		}
	case ProxyNodeIdentity:
		if len(serviceData) != 17 {
			return ProxyAdvertisement{}, fmt.Errorf("%w: node identity length %d", ErrInvalidAdvertisement, len(serviceData))
		}
	default:
		return ProxyAdvertisement{}, fmt.Errorf("%w: proxy type 0x%02X", ErrInvalidAdvertisement, serviceData[0])
	}
	adv.Data = append([]byte(nil), serviceData[1:]...)
	return adv, nil
}
