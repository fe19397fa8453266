package wire

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenericColorSetUnacknowledgedRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		msg  GenericColorSetUnacknowledged
		size int
	}{
		{
			name: "short",
			msg:  GenericColorSetUnacknowledged{Color: 0x1111, Color2: 0x2222, Color3: 0xABCD, TID: 7},
			size: 7,
		},
		{
			name: "with transition",
			msg: GenericColorSetUnacknowledged{
				Color: 1, Color2: 0xFFFF, Color3: 0x8000, TID: 255,
				Transition: &Transition{Time: NewTransitionTime(20, Resolution100ms), Delay: 4},
			},
			size: 9,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := tt.msg.Parameters()
			require.Len(t, params, tt.size)

			decoded, err := DecodeGenericColorSetUnacknowledged(params)
			require.NoError(t, err)
			assert.Equal(t, tt.msg, decoded)
		})
	}
}

func TestGenericColorSetUnacknowledgedLayout(t *testing.T) {
	msg := GenericColorSetUnacknowledged{Color: 0x0102, Color2: 0x0304, Color3: 0x0506, TID: 0x07}
	assert.Equal(t, []byte{0x02, 0x01, 0x04, 0x03, 0x06, 0x05, 0x07}, msg.Parameters())
	assert.Equal(t, []byte{0x82, 0x03, 0x02, 0x01, 0x04, 0x03, 0x06, 0x05, 0x07}, EncodePDU(msg))
}

func TestGenericColorSetRoundTrip(t *testing.T) {
	short := GenericColorSet{Phase: 1, Color: 2222, Color2: 3333, TID: 9}
	require.Len(t, short.Parameters(), 7)
	decoded, err := DecodeGenericColorSet(short.Parameters())
	require.NoError(t, err)
	assert.Equal(t, short, decoded)

	long := GenericColorSet{
		Phase: 2, Color: 1111, Color2: 2222, TID: 10,
		Extended: &GenericColorExtension{
			Color3: 3333, Color4: 4444, Color5: 5555,
			Transition: Transition{Time: NewTransitionTime(3, Resolution1s), Delay: 1},
		},
	}
	require.Len(t, long.Parameters(), 15)
	decoded, err = DecodeGenericColorSet(long.Parameters())
	require.NoError(t, err)
	assert.Equal(t, long, decoded)

	_, err = DecodeGenericColorSet(make([]byte, 9))
	assert.ErrorIs(t, err, ErrInvalidLength)
}

func TestGenericColorStatus(t *testing.T) {
	s, err := DecodeGenericColorStatus([]byte{0x03})
	require.NoError(t, err)
	assert.Equal(t, uint8(3), s.Color)
	assert.Nil(t, s.Target)

	target := uint8(4)
	full := GenericColorStatus{Color: 3, Target: &target, RemainingTime: NewTransitionTime(5, Resolution10s)}
	s, err = DecodeGenericColorStatus(full.Parameters())
	require.NoError(t, err)
	assert.Equal(t, full, s)

	_, err = DecodeGenericColorStatus([]byte{1, 2})
	assert.ErrorIs(t, err, ErrInvalidLength)
}

func TestSwitchColorDispatch(t *testing.T) {
	set := SwitchColorSet{ColorNum: 1, ColorNum2: 2, ColorNum3: 3, TID: 4}
	msg, err := DecodePDU(EncodePDU(set))
	require.NoError(t, err)
	assert.Equal(t, set, msg)

	status := SwitchColorStatus{ColorNum: 2}
	msg, err = DecodePDU(EncodePDU(status))
	require.NoError(t, err)
	assert.Equal(t, status, msg)
}

func TestGenericOnOff(t *testing.T) {
	set := GenericOnOffSet{On: true, TID: 1, Transition: &Transition{Time: NewTransitionTime(1, Resolution1s)}}
	msg, err := DecodePDU(EncodePDU(set))
	require.NoError(t, err)
	assert.Equal(t, set, msg)

	msg, err = DecodePDU([]byte{0x82, 0x04, 0x01})
	require.NoError(t, err)
	assert.Equal(t, GenericOnOffStatus{On: true}, msg)
}

func TestTransitionTimeDuration(t *testing.T) {
	assert.Equal(t, 2*time.Second, NewTransitionTime(20, Resolution100ms).Duration())
	assert.Equal(t, 30*time.Second, NewTransitionTime(3, Resolution10s).Duration())
	assert.Equal(t, 20*time.Minute, NewTransitionTime(2, Resolution10min).Duration())
	assert.Equal(t, time.Duration(0), UnknownTransitionTime.Duration())
	assert.Equal(t, uint8(20), NewTransitionTime(20, Resolution1s).Steps())
	assert.Equal(t, Resolution1s, NewTransitionTime(20, Resolution1s).Resolution())
}
