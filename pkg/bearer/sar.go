package bearer

import "fmt"

// Proxy PDU segmentation flags (top two bits of the header).
const (
	sarComplete     = 0b00
	sarFirst        = 0b01
	sarContinuation = 0b10
	sarLast         = 0b11
)

// proxyHeader builds the one-byte proxy PDU header.
func proxyHeader(sar uint8, t PDUType) byte {
	return sar<<6 | byte(t)&0x3F
}

// segment splits a PDU into proxy PDUs no larger than mtu bytes.
func segment(t PDUType, data []byte, mtu int) [][]byte {
	if mtu < 2 {
		mtu = 2
	}
	room := mtu - 1
	if len(data) <= room {
		return [][]byte{append([]byte{proxyHeader(sarComplete, t)}, data...)}
	}
	var out [][]byte
	for off := 0; off < len(data); off += room {
		end := min(off+room, len(data))
		sar := uint8(sarContinuation)
		switch {
		case off == 0:
			sar = sarFirst
		case end == len(data):
			sar = sarLast
		}
		out = append(out, append([]byte{proxyHeader(sar, t)}, data[off:end]...))
	}
	return out
}

// reassembler rebuilds PDUs from proxy segments.
type reassembler struct {
	buf     []byte
	pduType PDUType
	active  bool
}

// push adds a proxy PDU and returns the complete PDU once available.
func (r *reassembler) push(pdu []byte) (PDUType, []byte, bool, error) {
	if len(pdu) < 1 {
		return 0, nil, false, fmt.Errorf("empty proxy pdu")
	}
	sar := pdu[0] >> 6
	t := PDUType(pdu[0] & 0x3F)
	payload := pdu[1:]

	switch sar {
	case sarComplete:
		r.active = false
		return t, append([]byte(nil), payload...), true, nil
	case sarFirst:
		r.buf = append(r.buf[:0], payload...)
		r.pduType = t
		r.active = true
		return 0, nil, false, nil
	default:
		if !r.active || t != r.pduType {
			r.active = false
			return 0, nil, false, fmt.Errorf("unexpected proxy segment (sar %d, type %s)", sar, t)
		}
		r.buf = append(r.buf, payload...)
		if sar == sarLast {
			r.active = false
			return t, append([]byte(nil), r.buf...), true, nil
		}
		return 0, nil, false, nil
	}
}
