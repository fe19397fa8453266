package wire

import (
	"encoding/binary"

	"github.com/mesh-lifecycle/mesh-go/pkg/mesh"
)

// AppKeyAdd adds an application key to a node.
type AppKeyAdd struct {
	NetKeyIndex mesh.KeyIndex
	AppKeyIndex mesh.KeyIndex
	Key         mesh.Key
}

// NewAppKeyAdd builds an AppKeyAdd for the application key.
func NewAppKeyAdd(key mesh.ApplicationKey) AppKeyAdd {
	return AppKeyAdd{NetKeyIndex: key.BoundNetworkKey, AppKeyIndex: key.Index, Key: key.Key}
}

func (AppKeyAdd) Opcode() Opcode         { return OpAppKeyAdd }
func (AppKeyAdd) ResponseOpcode() Opcode { return OpAppKeyStatus }

func (m AppKeyAdd) Parameters() []byte {
	b := appendKeyIndexes(make([]byte, 0, 19), m.NetKeyIndex, m.AppKeyIndex)
	return append(b, m.Key[:]...)
}

// DecodeAppKeyAdd decodes AppKeyAdd parameters.
func DecodeAppKeyAdd(p []byte) (AppKeyAdd, error) {
	if len(p) != 19 {
		return AppKeyAdd{}, lengthError(len(p), 19)
	}
	var m AppKeyAdd
	m.NetKeyIndex, m.AppKeyIndex = readKeyIndexes(p)
	copy(m.Key[:], p[3:])
	return m, nil
}

// AppKeyStatus reports the result of an application key change.
type AppKeyStatus struct {
	Status      StatusCode
	NetKeyIndex mesh.KeyIndex
	AppKeyIndex mesh.KeyIndex
}

func (AppKeyStatus) Opcode() Opcode { return OpAppKeyStatus }

func (m AppKeyStatus) Parameters() []byte {
	return appendKeyIndexes([]byte{byte(m.Status)}, m.NetKeyIndex, m.AppKeyIndex)
}

// DecodeAppKeyStatus decodes AppKeyStatus parameters.
func DecodeAppKeyStatus(p []byte) (AppKeyStatus, error) {
	if len(p) != 4 {
		return AppKeyStatus{}, lengthError(len(p), 4)
	}
	m := AppKeyStatus{Status: StatusCode(p[0])}
	m.NetKeyIndex, m.AppKeyIndex = readKeyIndexes(p[1:])
	return m, nil
}

// CompositionDataGet requests a composition data page.
type CompositionDataGet struct {
	Page uint8
}

func (CompositionDataGet) Opcode() Opcode         { return OpCompositionDataGet }
func (CompositionDataGet) ResponseOpcode() Opcode { return OpCompositionDataStatus }
func (m CompositionDataGet) Parameters() []byte   { return []byte{m.Page} }

// DecodeCompositionDataGet decodes CompositionDataGet parameters.
func DecodeCompositionDataGet(p []byte) (CompositionDataGet, error) {
	if len(p) != 1 {
		return CompositionDataGet{}, lengthError(len(p), 1)
	}
	return CompositionDataGet{Page: p[0]}, nil
}

// CompositionDataStatus carries a composition data page.
type CompositionDataStatus struct {
	Page        uint8
	Composition CompositionData
}

func (CompositionDataStatus) Opcode() Opcode { return OpCompositionDataStatus }

func (m CompositionDataStatus) Parameters() []byte {
	return m.Composition.AppendTo([]byte{m.Page})
}

// DecodeCompositionDataStatus decodes CompositionDataStatus parameters.
// Only page 0 is understood.
func DecodeCompositionDataStatus(p []byte) (CompositionDataStatus, error) {
	if len(p) < 1 {
		return CompositionDataStatus{}, lengthError(len(p), 1)
	}
	cd, err := ParseCompositionData(p[1:])
	if err != nil {
		return CompositionDataStatus{}, err
	}
	return CompositionDataStatus{Page: p[0], Composition: cd}, nil
}

// ModelAppBind binds an application key to a model.
type ModelAppBind struct {
	ElementAddress mesh.Address
	AppKeyIndex    mesh.KeyIndex
	ModelID        mesh.ModelID
}

func (ModelAppBind) Opcode() Opcode         { return OpModelAppBind }
func (ModelAppBind) ResponseOpcode() Opcode { return OpModelAppStatus }

func (m ModelAppBind) Parameters() []byte {
	b := binary.LittleEndian.AppendUint16(make([]byte, 0, 8), uint16(m.ElementAddress))
	b = binary.LittleEndian.AppendUint16(b, uint16(m.AppKeyIndex))
	return appendModelID(b, m.ModelID)
}

// DecodeModelAppBind decodes ModelAppBind parameters.
func DecodeModelAppBind(p []byte) (ModelAppBind, error) {
	if len(p) != 6 && len(p) != 8 {
		return ModelAppBind{}, lengthError(len(p), 6, 8)
	}
	return ModelAppBind{
		ElementAddress: mesh.Address(binary.LittleEndian.Uint16(p)),
		AppKeyIndex:    mesh.KeyIndex(binary.LittleEndian.Uint16(p[2:])),
		ModelID:        readModelID(p[4:]),
	}, nil
}

// ModelAppStatus reports the result of a model binding.
type ModelAppStatus struct {
	Status         StatusCode
	ElementAddress mesh.Address
	AppKeyIndex    mesh.KeyIndex
	ModelID        mesh.ModelID
}

func (ModelAppStatus) Opcode() Opcode { return OpModelAppStatus }

func (m ModelAppStatus) Parameters() []byte {
	b := ModelAppBind{m.ElementAddress, m.AppKeyIndex, m.ModelID}.Parameters()
	return append([]byte{byte(m.Status)}, b...)
}

// DecodeModelAppStatus decodes ModelAppStatus parameters.
func DecodeModelAppStatus(p []byte) (ModelAppStatus, error) {
	if len(p) != 7 && len(p) != 9 {
		return ModelAppStatus{}, lengthError(len(p), 7, 9)
	}
	b, err := DecodeModelAppBind(p[1:])
	if err != nil {
		return ModelAppStatus{}, err
	}
	return ModelAppStatus{StatusCode(p[0]), b.ElementAddress, b.AppKeyIndex, b.ModelID}, nil
}

// ModelSubscriptionAdd subscribes a model to a group address.
type ModelSubscriptionAdd struct {
	ElementAddress mesh.Address
	Address        mesh.Address
	ModelID        mesh.ModelID
}

func (ModelSubscriptionAdd) Opcode() Opcode         { return OpModelSubscriptionAdd }
func (ModelSubscriptionAdd) ResponseOpcode() Opcode { return OpModelSubscriptionStatus }

func (m ModelSubscriptionAdd) Parameters() []byte {
	b := binary.LittleEndian.AppendUint16(make([]byte, 0, 8), uint16(m.ElementAddress))
	b = binary.LittleEndian.AppendUint16(b, uint16(m.Address))
	return appendModelID(b, m.ModelID)
}

// DecodeModelSubscriptionAdd decodes ModelSubscriptionAdd parameters.
func DecodeModelSubscriptionAdd(p []byte) (ModelSubscriptionAdd, error) {
	if len(p) != 6 && len(p) != 8 {
		return ModelSubscriptionAdd{}, lengthError(len(p), 6, 8)
	}
	return ModelSubscriptionAdd{
		ElementAddress: mesh.Address(binary.LittleEndian.Uint16(p)),
		Address:        mesh.Address(binary.LittleEndian.Uint16(p[2:])),
		ModelID:        readModelID(p[4:]),
	}, nil
}

// ModelSubscriptionStatus reports the result of a subscription change.
type ModelSubscriptionStatus struct {
	Status         StatusCode
	ElementAddress mesh.Address
	Address        mesh.Address
	ModelID        mesh.ModelID
}

func (ModelSubscriptionStatus) Opcode() Opcode { return OpModelSubscriptionStatus }

func (m ModelSubscriptionStatus) Parameters() []byte {
	b := ModelSubscriptionAdd{m.ElementAddress, m.Address, m.ModelID}.Parameters()
	return append([]byte{byte(m.Status)}, b...)
}

// DecodeModelSubscriptionStatus decodes ModelSubscriptionStatus parameters.
func DecodeModelSubscriptionStatus(p []byte) (ModelSubscriptionStatus, error) {
	if len(p) != 7 && len(p) != 9 {
		return ModelSubscriptionStatus{}, lengthError(len(p), 7, 9)
	}
	s, err := DecodeModelSubscriptionAdd(p[1:])
	if err != nil {
		return ModelSubscriptionStatus{}, err
	}
	return ModelSubscriptionStatus{StatusCode(p[0]), s.ElementAddress, s.Address, s.ModelID}, nil
}

// ModelPublicationSet configures a model's publication.
type ModelPublicationSet struct {
	ElementAddress mesh.Address
	Publish        mesh.Publish
	ModelID        mesh.ModelID
}

func (ModelPublicationSet) Opcode() Opcode         { return OpModelPublicationSet }
func (ModelPublicationSet) ResponseOpcode() Opcode { return OpModelPublicationStatus }

func (m ModelPublicationSet) Parameters() []byte {
	return appendPublication(make([]byte, 0, 13), m.ElementAddress, m.Publish, m.ModelID)
}

// DecodeModelPublicationSet decodes ModelPublicationSet parameters.
func DecodeModelPublicationSet(p []byte) (ModelPublicationSet, error) {
	if len(p) != 11 && len(p) != 13 {
		return ModelPublicationSet{}, lengthError(len(p), 11, 13)
	}
	elem, pub, model := readPublication(p)
	return ModelPublicationSet{ElementAddress: elem, Publish: pub, ModelID: model}, nil
}

// ModelPublicationStatus reports a model's publication.
type ModelPublicationStatus struct {
	Status         StatusCode
	ElementAddress mesh.Address
	Publish        mesh.Publish
	ModelID        mesh.ModelID
}

func (ModelPublicationStatus) Opcode() Opcode { return OpModelPublicationStatus }

func (m ModelPublicationStatus) Parameters() []byte {
	return appendPublication([]byte{byte(m.Status)}, m.ElementAddress, m.Publish, m.ModelID)
}

// DecodeModelPublicationStatus decodes ModelPublicationStatus parameters.
func DecodeModelPublicationStatus(p []byte) (ModelPublicationStatus, error) {
	if len(p) != 12 && len(p) != 14 {
		return ModelPublicationStatus{}, lengthError(len(p), 12, 14)
	}
	elem, pub, model := readPublication(p[1:])
	return ModelPublicationStatus{Status: StatusCode(p[0]), ElementAddress: elem, Publish: pub, ModelID: model}, nil
}

func appendPublication(b []byte, elem mesh.Address, pub mesh.Publish, model mesh.ModelID) []byte {
	b = binary.LittleEndian.AppendUint16(b, uint16(elem))
	b = binary.LittleEndian.AppendUint16(b, uint16(pub.Address))
	idx := uint16(pub.AppKeyIndex & mesh.MaxKeyIndex)
	if pub.CredentialFlag {
		idx |= 1 << 12
	}
	b = binary.LittleEndian.AppendUint16(b, idx)
	b = append(b,
		pub.TTL,
		pub.PeriodSteps&0x3F|pub.PeriodResolution<<6,
		pub.RetransmitCount&0x07|pub.RetransmitIntervalSteps<<3,
	)
	return appendModelID(b, model)
}

func readPublication(p []byte) (mesh.Address, mesh.Publish, mesh.ModelID) {
	idx := binary.LittleEndian.Uint16(p[4:])
	pub := mesh.Publish{
		Address:                 mesh.Address(binary.LittleEndian.Uint16(p[2:])),
		AppKeyIndex:             mesh.KeyIndex(idx & 0x0FFF),
		CredentialFlag:          idx&(1<<12) != 0,
		TTL:                     p[6],
		PeriodSteps:             p[7] & 0x3F,
		PeriodResolution:        p[7] >> 6,
		RetransmitCount:         p[8] & 0x07,
		RetransmitIntervalSteps: p[8] >> 3,
	}
	return mesh.Address(binary.LittleEndian.Uint16(p)), pub, readModelID(p[9:])
}

// NodeReset removes a node from the network.
type NodeReset struct{}

func (NodeReset) Opcode() Opcode         { return OpNodeReset }
func (NodeReset) ResponseOpcode() Opcode { return OpNodeResetStatus }
func (NodeReset) Parameters() []byte     { return nil }

// DecodeNodeReset decodes NodeReset parameters.
func DecodeNodeReset(p []byte) (NodeReset, error) {
	if len(p) != 0 {
		return NodeReset{}, lengthError(len(p), 0)
	}
	return NodeReset{}, nil
}

// NodeResetStatus acknowledges a NodeReset.
type NodeResetStatus struct{}

func (NodeResetStatus) Opcode() Opcode     { return OpNodeResetStatus }
func (NodeResetStatus) Parameters() []byte { return nil }

// DecodeNodeResetStatus decodes NodeResetStatus parameters.
func DecodeNodeResetStatus(p []byte) (NodeResetStatus, error) {
	if len(p) != 0 {
		return NodeResetStatus{}, lengthError(len(p), 0)
	}
	return NodeResetStatus{}, nil
}
