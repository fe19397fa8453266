package bearer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentComplete(t *testing.T) {
	segs := segment(PDUProvisioning, []byte{0x00, 0x05}, DefaultMTU)
	require.Len(t, segs, 1)
	assert.Equal(t, []byte{0x03, 0x00, 0x05}, segs[0])
}

func TestSegmentSplitsAtMTU(t *testing.T) {
	data := bytes.Repeat([]byte{0xAB}, 45)
	segs := segment(PDUNetwork, data, DefaultMTU)
	require.Len(t, segs, 3)

	assert.Equal(t, byte(0x40), segs[0][0], "first")
	assert.Equal(t, byte(0x80), segs[1][0], "continuation")
	assert.Equal(t, byte(0xC0), segs[2][0], "last")
	for _, s := range segs {
		assert.LessOrEqual(t, len(s), DefaultMTU)
	}
}

func TestReassembleRoundTrip(t *testing.T) {
	data := make([]byte, 70)
	for i := range data {
		data[i] = byte(i)
	}

	var r reassembler
	var got []byte
	var gotType PDUType
	for _, seg := range segment(PDUProvisioning, data, DefaultMTU) {
		typ, pdu, ok, err := r.push(seg)
		require.NoError(t, err)
		if ok {
			got, gotType = pdu, typ
		}
	}
	assert.Equal(t, PDUProvisioning, gotType)
	assert.Equal(t, data, got)
}

func TestReassembleRejectsOrphanSegment(t *testing.T) {
	var r reassembler
	_, _, ok, err := r.push([]byte{0x80, 0x01})
	assert.False(t, ok)
	assert.Error(t, err)

	_, _, _, err = r.push(nil)
	assert.Error(t, err)
}

func TestReassembleRejectsTypeChange(t *testing.T) {
	var r reassembler
	_, _, ok, err := r.push([]byte{0x43, 0x01})
	require.NoError(t, err)
	require.False(t, ok)

	_, _, ok, err = r.push([]byte{0xC0, 0x02})
	assert.False(t, ok)
	assert.Error(t, err)
}

func TestPDUTypeString(t *testing.T) {
	assert.Equal(t, "PROVISIONING", PDUProvisioning.String())
	assert.Equal(t, "NETWORK", PDUNetwork.String())
	assert.Equal(t, "UNKNOWN", PDUType(0x3F).String())
}
