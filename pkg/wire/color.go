package wire

import "encoding/binary"

// GenericColorSet sets the color scene of a Generic Color server.
// The short form carries phase, two colors and a TID (7 bytes); the long
// form adds three more colors and a transition (15 bytes).
type GenericColorSet struct {
	Phase  uint16
	Color  uint16
	Color2 uint16
	TID    uint8

	// Extended is nil for the short form.
	Extended *GenericColorExtension
}

// GenericColorExtension holds the long-form fields of GenericColorSet.
type GenericColorExtension struct {
	Color3     uint16
	Color4     uint16
	Color5     uint16
	Transition Transition
}

func (GenericColorSet) Opcode() Opcode         { return OpGenericColorSet }
func (GenericColorSet) ResponseOpcode() Opcode { return OpGenericColorStatus }

func (m GenericColorSet) Parameters() []byte {
	b := make([]byte, 0, 15)
	b = binary.LittleEndian.AppendUint16(b, m.Phase)
	b = binary.LittleEndian.AppendUint16(b, m.Color)
	b = binary.LittleEndian.AppendUint16(b, m.Color2)
	b = append(b, m.TID)
	if x := m.Extended; x != nil {
		b = binary.LittleEndian.AppendUint16(b, x.Color3)
		b = binary.LittleEndian.AppendUint16(b, x.Color4)
		b = binary.LittleEndian.AppendUint16(b, x.Color5)
		b = append(b, byte(x.Transition.Time), x.Transition.Delay)
	}
	return b
}

// DecodeGenericColorSet decodes GenericColorSet parameters.
func DecodeGenericColorSet(p []byte) (GenericColorSet, error) {
	if len(p) != 7 && len(p) != 15 {
		return GenericColorSet{}, lengthError(len(p), 7, 15)
	}
	m := GenericColorSet{
		Phase:  binary.LittleEndian.Uint16(p[0:]),
		Color:  binary.LittleEndian.Uint16(p[2:]),
		Color2: binary.LittleEndian.Uint16(p[4:]),
		TID:    p[6],
	}
	if len(p) == 15 {
		m.Extended = &GenericColorExtension{
			Color3:     binary.LittleEndian.Uint16(p[7:]),
			Color4:     binary.LittleEndian.Uint16(p[9:]),
			Color5:     binary.LittleEndian.Uint16(p[11:]),
			Transition: Transition{Time: TransitionTime(p[13]), Delay: p[14]},
		}
	}
	return m, nil
}

// GenericColorSetUnacknowledged sets three colors without expecting a
// status: 7 bytes, or 9 with a transition.
type GenericColorSetUnacknowledged struct {
	Color      uint16
	Color2     uint16
	Color3     uint16
	TID        uint8
	Transition *Transition
}

func (GenericColorSetUnacknowledged) Opcode() Opcode { return OpGenericColorSetUnack }

func (m GenericColorSetUnacknowledged) Parameters() []byte {
	return appendColorTriple(m.Color, m.Color2, m.Color3, m.TID, m.Transition)
}

// DecodeGenericColorSetUnacknowledged decodes GenericColorSetUnacknowledged parameters.
func DecodeGenericColorSetUnacknowledged(p []byte) (GenericColorSetUnacknowledged, error) {
	c1, c2, c3, tid, tr, err := readColorTriple(p)
	if err != nil {
		return GenericColorSetUnacknowledged{}, err
	}
	return GenericColorSetUnacknowledged{Color: c1, Color2: c2, Color3: c3, TID: tid, Transition: tr}, nil
}

// GenericColorStatus reports the current color of a Generic Color server.
type GenericColorStatus struct {
	Color         uint8
	Target        *uint8
	RemainingTime TransitionTime
}

func (GenericColorStatus) Opcode() Opcode       { return OpGenericColorStatus }
func (m GenericColorStatus) Parameters() []byte { return appendColorStatus(m.Color, m.Target, m.RemainingTime) }

// DecodeGenericColorStatus decodes GenericColorStatus parameters.
func DecodeGenericColorStatus(p []byte) (GenericColorStatus, error) {
	c, target, rt, err := readColorStatus(p)
	return GenericColorStatus{Color: c, Target: target, RemainingTime: rt}, err
}

// SwitchColorSet is the vendor color switch request.
type SwitchColorSet struct {
	ColorNum   uint16
	ColorNum2  uint16
	ColorNum3  uint16
	TID        uint8
	Transition *Transition
}

func (SwitchColorSet) Opcode() Opcode         { return OpSwitchColor }
func (SwitchColorSet) ResponseOpcode() Opcode { return OpSwitchColor }

func (m SwitchColorSet) Parameters() []byte {
	return appendColorTriple(m.ColorNum, m.ColorNum2, m.ColorNum3, m.TID, m.Transition)
}

// DecodeSwitchColorSet decodes SwitchColorSet parameters.
func DecodeSwitchColorSet(p []byte) (SwitchColorSet, error) {
	c1, c2, c3, tid, tr, err := readColorTriple(p)
	if err != nil {
		return SwitchColorSet{}, err
	}
	return SwitchColorSet{ColorNum: c1, ColorNum2: c2, ColorNum3: c3, TID: tid, Transition: tr}, nil
}

// SwitchColorStatus is the vendor color switch status.
type SwitchColorStatus struct {
	ColorNum      uint8
	Target        *uint8
	RemainingTime TransitionTime
}

func (SwitchColorStatus) Opcode() Opcode { return OpSwitchColor }

func (m SwitchColorStatus) Parameters() []byte {
	return appendColorStatus(m.ColorNum, m.Target, m.RemainingTime)
}

// DecodeSwitchColorStatus decodes SwitchColorStatus parameters.
func DecodeSwitchColorStatus(p []byte) (SwitchColorStatus, error) {
	c, target, rt, err := readColorStatus(p)
	return SwitchColorStatus{ColorNum: c, Target: target, RemainingTime: rt}, err
}

func appendColorTriple(c1, c2, c3 uint16, tid uint8, tr *Transition) []byte {
	b := make([]byte, 0, 9)
	b = binary.LittleEndian.AppendUint16(b, c1)
	b = binary.LittleEndian.AppendUint16(b, c2)
	b = binary.LittleEndian.AppendUint16(b, c3)
	b = append(b, tid)
	if tr != nil {
		b = append(b, byte(tr.Time), tr.Delay)
	}
	return b
}

func readColorTriple(p []byte) (c1, c2, c3 uint16, tid uint8, tr *Transition, err error) {
	if len(p) != 7 && len(p) != 9 {
		return 0, 0, 0, 0, nil, lengthError(len(p), 7, 9)
	}
	c1 = binary.LittleEndian.Uint16(p[0:])
	c2 = binary.LittleEndian.Uint16(p[2:])
	c3 = binary.LittleEndian.Uint16(p[4:])
	tid = p[6]
	if len(p) == 9 {
		tr = &Transition{Time: TransitionTime(p[7]), Delay: p[8]}
	}
	return c1, c2, c3, tid, tr, nil
}

func appendColorStatus(c uint8, target *uint8, rt TransitionTime) []byte {
	b := []byte{c}
	if target != nil {
		b = append(b, *target, byte(rt))
	}
	return b
}

func readColorStatus(p []byte) (uint8, *uint8, TransitionTime, error) {
	if len(p) != 1 && len(p) != 3 {
		return 0, nil, 0, lengthError(len(p), 1, 3)
	}
	if len(p) == 1 {
		return p[0], nil, 0, nil
	}
	target := p[1]
	return p[0], &target, TransitionTime(p[2]), nil
}
