package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-lifecycle/mesh-go/pkg/mesh"
)

func TestCompositionDataRoundTrip(t *testing.T) {
	cd := CompositionData{
		CompanyID: 0x0059,
		ProductID: 0x0001,
		VersionID: 0x0002,
		CRPL:      0x0028,
		Features:  FeatureRelay | FeatureProxy,
		Elements: []mesh.Element{
			{Index: 0, Location: 0x0100, Models: []mesh.Model{
				{ID: mesh.ConfigurationServer},
				{ID: mesh.GenericOnOffServer},
				{ID: mesh.CustomVendorServer},
			}},
			{Index: 1, Location: 0x0101, Models: []mesh.Model{
				{ID: mesh.GenericColorServer},
			}},
		},
	}

	status := CompositionDataStatus{Page: 0, Composition: cd}
	decoded, err := DecodePDU(EncodePDU(status))
	require.NoError(t, err)

	got, ok := decoded.(CompositionDataStatus)
	require.True(t, ok)
	assert.Equal(t, cd, got.Composition)
}

func TestCompositionDataParse(t *testing.T) {
	body := []byte{
		0x59, 0x00, 0x01, 0x00, 0x02, 0x00, 0x28, 0x00, 0x03, 0x00,
		0x00, 0x00, 0x02, 0x00,
		0x00, 0x00,
		0x00, 0x10,
	}

	cd, err := ParseCompositionData(body)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0059), cd.CompanyID)
	require.Len(t, cd.Elements, 1)
	require.Len(t, cd.Elements[0].Models, 2)
	assert.Equal(t, mesh.GenericOnOffServer, cd.Elements[0].Models[1].ID)
}

func TestCompositionDataTruncated(t *testing.T) {
	_, err := ParseCompositionData(make([]byte, 9))
	assert.ErrorIs(t, err, ErrInvalidLength)

	body := append(make([]byte, 10), 0x00, 0x00, 0x02, 0x00, 0x00, 0x00)
	_, err = ParseCompositionData(body)
	assert.ErrorIs(t, err, ErrInvalidLength)
}
