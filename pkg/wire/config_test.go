package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-lifecycle/mesh-go/pkg/mesh"
)

func TestAppKeyAddLayout(t *testing.T) {
	key := mesh.Key{0x01, 0x02, 0x03}
	msg := AppKeyAdd{NetKeyIndex: 0, AppKeyIndex: 1, Key: key}

	pdu := EncodePDU(msg)
	require.Len(t, pdu, 20)
	assert.Equal(t, []byte{0x00, 0x00, 0x10, 0x00}, pdu[:4])

	decoded, err := DecodePDU(pdu)
	require.NoError(t, err)
	assert.Equal(t, msg, decoded)
}

func TestKeyIndexPacking(t *testing.T) {
	b := appendKeyIndexes(nil, 0x123, 0xABC)
	assert.Equal(t, []byte{0x23, 0xC1, 0xAB}, b)

	net, app := readKeyIndexes(b)
	assert.Equal(t, mesh.KeyIndex(0x123), net)
	assert.Equal(t, mesh.KeyIndex(0xABC), app)
}

func TestAppKeyStatusDecode(t *testing.T) {
	msg, err := DecodePDU([]byte{0x80, 0x03, 0x00, 0x00, 0x10, 0x00})
	require.NoError(t, err)

	status, ok := msg.(AppKeyStatus)
	require.True(t, ok)
	assert.True(t, status.Status.IsSuccess())
	assert.Equal(t, mesh.KeyIndex(1), status.AppKeyIndex)
}

func TestModelAppBindLayout(t *testing.T) {
	t.Run("sig model", func(t *testing.T) {
		msg := ModelAppBind{ElementAddress: 0x0010, AppKeyIndex: 1, ModelID: mesh.GenericOnOffServer}
		assert.Equal(t, []byte{0x10, 0x00, 0x01, 0x00, 0x00, 0x10}, msg.Parameters())
	})

	t.Run("vendor model", func(t *testing.T) {
		msg := ModelAppBind{ElementAddress: 0x0010, AppKeyIndex: 1, ModelID: mesh.CustomVendorServer}
		params := msg.Parameters()
		assert.Equal(t, []byte{0x10, 0x00, 0x01, 0x00, 0xFF, 0xFF, 0x01, 0x00}, params)

		decoded, err := DecodeModelAppBind(params)
		require.NoError(t, err)
		assert.Equal(t, msg, decoded)
	})
}

func TestConfigStatusesRoundTrip(t *testing.T) {
	msgs := []Message{
		ModelAppStatus{Status: StatusCannotBind, ElementAddress: 0x0011, AppKeyIndex: 2, ModelID: mesh.GenericColorServer},
		ModelSubscriptionStatus{Status: StatusSuccess, ElementAddress: 0x0011, Address: mesh.WellKnownGroup, ModelID: mesh.GenericOnOffServer},
		ModelPublicationStatus{
			Status:         StatusSuccess,
			ElementAddress: 0x0011,
			Publish: mesh.Publish{
				Address:                 mesh.WellKnownGroup,
				AppKeyIndex:             1,
				CredentialFlag:          true,
				TTL:                     5,
				PeriodSteps:             10,
				PeriodResolution:        Resolution1s,
				RetransmitCount:         2,
				RetransmitIntervalSteps: 3,
			},
			ModelID: mesh.CustomVendorServer,
		},
		CompositionDataGet{Page: 0},
		NodeReset{},
		NodeResetStatus{},
	}
	for _, msg := range msgs {
		t.Run(msg.Opcode().String(), func(t *testing.T) {
			decoded, err := DecodePDU(EncodePDU(msg))
			require.NoError(t, err)
			assert.Equal(t, msg, decoded)
		})
	}
}

func TestConfigDecodeRejectsBadLength(t *testing.T) {
	_, err := DecodeAppKeyStatus([]byte{0x00})
	assert.ErrorIs(t, err, ErrInvalidLength)

	_, err = DecodeModelAppStatus(make([]byte, 8))
	assert.ErrorIs(t, err, ErrInvalidLength)

	_, err = DecodeNodeResetStatus([]byte{0x01})
	assert.ErrorIs(t, err, ErrInvalidLength)
}

func TestStatusCodeString(t *testing.T) {
	assert.Equal(t, "SUCCESS", StatusSuccess.String())
	assert.Equal(t, "CANNOT_BIND", StatusCannotBind.String())
	assert.Equal(t, "UNKNOWN", StatusCode(0x42).String())
}
