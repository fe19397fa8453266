package main

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-lifecycle/mesh-go/pkg/mesh"
	"github.com/mesh-lifecycle/mesh-go/pkg/persistence"
	"github.com/mesh-lifecycle/mesh-go/pkg/service"
	"github.com/mesh-lifecycle/mesh-go/pkg/wire"
)

var _ service.Stack = (*radioOnlyStack)(nil)

func TestRadioOnlyStack(t *testing.T) {
	store := persistence.NewNetworkStore(filepath.Join(t.TempDir(), "network.json"))
	network := persistence.NewNetwork("test")
	s := newRadioOnlyStack(network, store)

	_, err := s.Provision(mesh.UnprovisionedDevice{}, nil)
	assert.ErrorIs(t, err, errNoMeshStack)
	assert.ErrorIs(t, s.Send(wire.CompositionDataGet{}, 0x0002), errNoMeshStack)

	require.NoError(t, s.Save())
	state, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, state)

	assert.NoError(t, newRadioOnlyStack(network, nil).Save())
}

func TestOpenNetwork(t *testing.T) {
	path := filepath.Join(t.TempDir(), "network.json")

	network, store, err := openNetwork(path, false, discardLogger())
	require.NoError(t, err)
	require.NotNil(t, store)
	require.NoError(t, store.Save(network.State()))

	loaded, _, err := openNetwork(path, false, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, network.LocalAddress(), loaded.LocalAddress())

	_, _, err = openNetwork(path, true, discardLogger())
	require.NoError(t, err)
	state, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, state)

	_, store, err = openNetwork("", false, discardLogger())
	require.NoError(t, err)
	assert.Nil(t, store)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
