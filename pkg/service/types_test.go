package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mesh-lifecycle/mesh-go/pkg/mesh"
)

func TestColorCode(t *testing.T) {
	tests := []struct {
		index int
		want  uint16
	}{
		{0, 1111},
		{1, 2222},
		{2, 3333},
		{3, 4444},
		{4, 1111},
		{-1, 1111},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ColorCode(tt.index), "index %d", tt.index)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, uint8(5), cfg.AttentionTimer)
	assert.Equal(t, mesh.WellKnownGroup, cfg.Configuration.Group)

	cfg.Configuration.MaxRetries = -1
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = DefaultConfig()
	cfg.Configuration.Group = 0x0010
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg.Configuration.Group = mesh.AllNodes
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}

func TestServiceStateString(t *testing.T) {
	assert.Equal(t, "IDLE", StateIdle.String())
	assert.Equal(t, "RUNNING", StateRunning.String())
	assert.Equal(t, "UNKNOWN", ServiceState(9).String())
}
