package wire

import (
	"time"
)

// TransitionTime is the Generic Default Transition Time format: a 6-bit
// step count and a 2-bit step resolution.
type TransitionTime uint8

// Step resolutions.
const (
	Resolution100ms uint8 = 0
	Resolution1s    uint8 = 1
	Resolution10s   uint8 = 2
	Resolution10min uint8 = 3
)

// UnknownTransitionTime is the reserved "unknown" value.
const UnknownTransitionTime TransitionTime = 0x3F

// NewTransitionTime builds a transition time from steps and resolution.
func NewTransitionTime(steps, resolution uint8) TransitionTime {
	return TransitionTime(steps&0x3F | resolution<<6)
}

// Steps returns the number of steps.
func (t TransitionTime) Steps() uint8 { return uint8(t) & 0x3F }

// Resolution returns the step resolution.
func (t TransitionTime) Resolution() uint8 { return uint8(t) >> 6 }

// Duration converts the transition time to a duration. Unknown returns 0.
func (t TransitionTime) Duration() time.Duration {
	if t.Steps() == 0x3F {
		return 0
	}
	var step time.Duration
	switch t.Resolution() {
	case Resolution100ms:
		step = 100 * time.Millisecond
	case Resolution1s:
		step = time.Second
	case Resolution10s:
		step = 10 * time.Second
	default:
		step = 10 * time.Minute
	}
	return time.Duration(t.Steps()) * step
}

// Transition is an optional transition time and delay (in 5 ms steps).
type Transition struct {
	Time  TransitionTime
	Delay uint8
}

// GenericOnOffSet sets the Generic OnOff state and expects a status.
type GenericOnOffSet struct {
	On         bool
	TID        uint8
	Transition *Transition
}

func (GenericOnOffSet) Opcode() Opcode         { return OpGenericOnOffSet }
func (GenericOnOffSet) ResponseOpcode() Opcode { return OpGenericOnOffStatus }
func (m GenericOnOffSet) Parameters() []byte   { return appendOnOff(m.On, m.TID, m.Transition) }

// DecodeGenericOnOffSet decodes GenericOnOffSet parameters.
func DecodeGenericOnOffSet(p []byte) (GenericOnOffSet, error) {
	on, tid, tr, err := readOnOff(p)
	return GenericOnOffSet{On: on, TID: tid, Transition: tr}, err
}

// GenericOnOffSetUnacknowledged sets the Generic OnOff state.
type GenericOnOffSetUnacknowledged struct {
	On         bool
	TID        uint8
	Transition *Transition
}

func (GenericOnOffSetUnacknowledged) Opcode() Opcode { return OpGenericOnOffSetUnack }

func (m GenericOnOffSetUnacknowledged) Parameters() []byte {
	return appendOnOff(m.On, m.TID, m.Transition)
}

// DecodeGenericOnOffSetUnacknowledged decodes GenericOnOffSetUnacknowledged parameters.
func DecodeGenericOnOffSetUnacknowledged(p []byte) (GenericOnOffSetUnacknowledged, error) {
	on, tid, tr, err := readOnOff(p)
	return GenericOnOffSetUnacknowledged{On: on, TID: tid, Transition: tr}, err
}

func appendOnOff(on bool, tid uint8, tr *Transition) []byte {
	b := []byte{0, tid}
	if on {
		b[0] = 1
	}
	if tr != nil {
		b = append(b, byte(tr.Time), tr.Delay)
	}
	return b
}

func readOnOff(p []byte) (bool, uint8, *Transition, error) {
	if len(p) != 2 && len(p) != 4 {
		return false, 0, nil, lengthError(len(p), 2, 4)
	}
	var tr *Transition
	if len(p) == 4 {
		tr = &Transition{Time: TransitionTime(p[2]), Delay: p[3]}
	}
	return p[0] == 1, p[1], tr, nil
}

// GenericOnOffStatus reports the Generic OnOff state.
type GenericOnOffStatus struct {
	On            bool
	TargetOn      *bool
	RemainingTime TransitionTime
}

func (GenericOnOffStatus) Opcode() Opcode { return OpGenericOnOffStatus }

func (m GenericOnOffStatus) Parameters() []byte {
	b := []byte{boolByte(m.On)}
	if m.TargetOn != nil {
		b = append(b, boolByte(*m.TargetOn), byte(m.RemainingTime))
	}
	return b
}

// DecodeGenericOnOffStatus decodes GenericOnOffStatus parameters.
func DecodeGenericOnOffStatus(p []byte) (GenericOnOffStatus, error) {
	if len(p) != 1 && len(p) != 3 {
		return GenericOnOffStatus{}, lengthError(len(p), 1, 3)
	}
	m := GenericOnOffStatus{On: p[0] == 1}
	if len(p) == 3 {
		target := p[1] == 1
		m.TargetOn = &target
		m.RemainingTime = TransitionTime(p[2])
	}
	return m, nil
}

func boolByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}
