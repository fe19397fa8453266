package persistence

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-lifecycle/mesh-go/pkg/mesh"
)

// StateVersion is the current version of the state file format.
const StateVersion = 1

// NetworkState is the persisted form of a mesh network.
type NetworkState struct {
	// Version is the state file format version.
	Version int `json:"version"`

	// SavedAt is when the state was last saved.
	SavedAt time.Time `json:"saved_at"`

	MeshUUID uuid.UUID `json:"mesh_uuid"`
	Name     string    `json:"name"`

	// Provisioner is the local node that provisions and configures others.
	Provisioner Provisioner `json:"provisioner"`

	NetKeys []mesh.NetworkKey     `json:"net_keys"`
	AppKeys []mesh.ApplicationKey `json:"app_keys,omitempty"`
	Groups  []mesh.Group          `json:"groups,omitempty"`

	// Nodes are the provisioned remote nodes.
	Nodes []mesh.Node `json:"nodes,omitempty"`
}

// Provisioner describes the local node and the address ranges it
// allocates from.
type Provisioner struct {
	Name         string            `json:"name"`
	UUID         uuid.UUID         `json:"uuid"`
	Address      mesh.Address      `json:"address"`
	UnicastRange mesh.AddressRange `json:"unicast_range"`
	GroupRange   mesh.AddressRange `json:"group_range"`
	Elements     []mesh.Element    `json:"elements"`
}

// NetworkStore manages persistence of network state to a JSON file.
type NetworkStore struct {
	mu   sync.Mutex
	path string
}

// NewNetworkStore creates a new network state store.
func NewNetworkStore(path string) *NetworkStore {
	return &NetworkStore{path: path}
}

// Path returns the state file path.
func (s *NetworkStore) Path() string { return s.path }

// Save persists the network state to disk.
func (s *NetworkStore) Save(state *NetworkState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Ensure parent directory exists
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}

	state.Version = StateVersion
	state.SavedAt = time.Now()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	// Replace the file atomically.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Load reads the network state from disk.
// Returns nil, nil if the file doesn't exist (empty state).
func (s *NetworkStore) Load() (*NetworkState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	state := &NetworkState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, err
	}
	return state, nil
}

// Clear removes the state file.
func (s *NetworkStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
