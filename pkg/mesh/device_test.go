package mesh

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUnprovisionedDevice(t *testing.T) {
	id := uuid.MustParse("4b2c1c3e-9f36-4c6e-8a55-0f1d2e3c4b5a")

	t.Run("without uri hash", func(t *testing.T) {
		data := append(id[:], 0x00, 0x20)

		dev, err := ParseUnprovisionedDevice("Lamp", data)
		require.NoError(t, err)
		assert.Equal(t, id, dev.UUID)
		assert.Equal(t, "Lamp", dev.Name)
		assert.Equal(t, uint16(0x0020), dev.OOBInformation)
		assert.Nil(t, dev.URIHash)
		assert.Equal(t, data, dev.ServiceData())
	})

	t.Run("with uri hash", func(t *testing.T) {
		data := append(id[:], 0x00, 0x02, 0xDE, 0xAD, 0xBE, 0xEF)

		dev, err := ParseUnprovisionedDevice("", data)
		require.NoError(t, err)
		assert.Equal(t, "Unknown Device", dev.Name)
		assert.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, dev.URIHash)
	})

	t.Run("invalid lengths", func(t *testing.T) {
		for _, n := range []int{0, 1, 16, 17, 19, 21, 23} {
			_, err := ParseUnprovisionedDevice("x", make([]byte, n))
			assert.ErrorIs(t, err, ErrInvalidAdvertisement, "length %d", n)
		}
	})
}

func TestParseProxyAdvertisement(t *testing.T) {
	adv, err := ParseProxyAdvertisement(append([]byte{0x00}, make([]byte, 8)...))
	require.NoError(t, err)
	assert.Equal(t, ProxyNetworkID, adv.Type)
	assert.Len(t, adv.Data, 8)

	adv, err = ParseProxyAdvertisement(append([]byte{0x01}, make([]byte, 16)...))
	require.NoError(t, err)
	assert.Equal(t, ProxyNodeIdentity, adv.Type)

	_, err = ParseProxyAdvertisement([]byte{0x01, 0x02})
	assert.ErrorIs(t, err, ErrInvalidAdvertisement)

	_, err = ParseProxyAdvertisement([]byte{0x05})
	assert.ErrorIs(t, err, ErrInvalidAdvertisement)

	_, err = ParseProxyAdvertisement(nil)
	assert.ErrorIs(t, err, ErrInvalidAdvertisement)
}
