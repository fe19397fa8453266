package mesh

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// KeyIndex is the 12-bit global index of a network or application key.
type KeyIndex uint16

// MaxKeyIndex is the largest valid key index.
const MaxKeyIndex KeyIndex = 0x0FFF

// Key is a 128-bit mesh key.
type Key [16]byte

// RandomKey returns a new random key.
func RandomKey() Key {
	var k Key
	_, _ = rand.Read(k[:])
	return k
}

// String returns the key as upper-case hex.
func (k Key) String() string {
	return fmt.Sprintf("%X", k[:])
}

// MarshalJSON encodes the key as a hex string.
func (k Key) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON decodes a hex string key.
func (k *Key) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("invalid key: %w", err)
	}
	if len(b) != len(k) {
		return fmt.Errorf("invalid key length %d", len(b))
	}
	copy(k[:], b)
	return nil
}

// NetworkKey secures network-layer traffic.
type NetworkKey struct {
	Index KeyIndex `json:"index"`
	Name  string   `json:"name"`
	Key   Key      `json:"key"`
}

// ApplicationKey secures access-layer traffic. Every application key is
// bound to exactly one network key.
type ApplicationKey struct {
	Index           KeyIndex `json:"index"`
	Name            string   `json:"name"`
	Key             Key      `json:"key"`
	BoundNetworkKey KeyIndex `json:"boundNetKey"`
}

// Group is a named group address.
type Group struct {
	Name    string  `json:"name"`
	Address Address `json:"address"`
}
