package persistence

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/mesh-lifecycle/mesh-go/pkg/mesh"
)

func TestNetworkStore(t *testing.T) {
	t.Run("SaveAndLoad", func(t *testing.T) {
		dir := t.TempDir()
		store := NewNetworkStore(filepath.Join(dir, "mesh.json"))

		id := uuid.New()
		state := &NetworkState{
			Name: "home",
			Provisioner: Provisioner{
				Name:         "phone",
				Address:      0x0001,
				UnicastRange: DefaultUnicastRange,
				GroupRange:   DefaultGroupRange,
				Elements:     DefaultLocalElements(),
			},
			NetKeys: []mesh.NetworkKey{{Index: 0, Name: "primary", Key: mesh.Key{1, 2, 3}}},
			AppKeys: []mesh.ApplicationKey{{Index: 0, Name: "app", Key: mesh.Key{4}, BoundNetworkKey: 0}},
			Groups:  []mesh.Group{{Name: "Mesh Group", Address: 0xC000}},
			Nodes: []mesh.Node{{
				UUID:           id,
				Name:           "lamp",
				UnicastAddress: 0x0002,
				NetKeys:        []mesh.KeyIndex{0},
			}},
		}

		if err := store.Save(state); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		got, err := store.Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if got == nil {
			t.Fatal("Load() returned nil")
		}
		if got.Version != StateVersion {
			t.Errorf("Version = %d, want %d", got.Version, StateVersion)
		}
		if got.SavedAt.IsZero() {
			t.Error("SavedAt should be set")
		}
		if got.Name != "home" {
			t.Errorf("Name = %q, want home", got.Name)
		}
		if got.NetKeys[0].Key != (mesh.Key{1, 2, 3}) {
			t.Errorf("NetKey = %s, want round-tripped key", got.NetKeys[0].Key)
		}
		if len(got.Nodes) != 1 || got.Nodes[0].UUID != id || got.Nodes[0].UnicastAddress != 0x0002 {
			t.Errorf("Nodes = %+v, want lamp at 0x0002", got.Nodes)
		}
		if got.Provisioner.UnicastRange != DefaultUnicastRange {
			t.Errorf("UnicastRange = %+v, want %+v", got.Provisioner.UnicastRange, DefaultUnicastRange)
		}
	})

	t.Run("LoadMissing", func(t *testing.T) {
		store := NewNetworkStore(filepath.Join(t.TempDir(), "missing.json"))
		got, err := store.Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if got != nil {
			t.Errorf("Load() = %v, want nil", got)
		}
	})

	t.Run("LoadCorrupt", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "mesh.json")
		if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
			t.Fatal(err)
		}
		if _, err := NewNetworkStore(path).Load(); err == nil {
			t.Error("Load() expected error for corrupt file")
		}
	})

	t.Run("CreatesParentDirectory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "dir", "mesh.json")
		if err := NewNetworkStore(path).Save(&NetworkState{Name: "x"}); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("state file not created: %v", err)
		}
	})

	t.Run("Clear", func(t *testing.T) {
		store := NewNetworkStore(filepath.Join(t.TempDir(), "mesh.json"))
		_ = store.Save(&NetworkState{Name: "x"})

		if err := store.Clear(); err != nil {
			t.Fatalf("Clear() error = %v", err)
		}
		got, err := store.Load()
		if err != nil {
			t.Fatalf("Load() after Clear() error = %v", err)
		}
		if got != nil {
			t.Errorf("Load() after Clear() = %v, want nil", got)
		}

		// Clearing twice is fine.
		if err := store.Clear(); err != nil {
			t.Errorf("second Clear() error = %v", err)
		}
	})
}
