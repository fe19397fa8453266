package mesh

import (
	"fmt"
	"slices"
)

// ModelID identifies a model. SIG models use the low 16 bits; vendor
// models carry the company identifier in the high 16 bits.
type ModelID uint32

// Well-known model identifiers.
const (
	GenericOnOffServer ModelID = 0x1000
	GenericOnOffClient ModelID = 0x1001

	// Generic Color models are assigned by the device firmware, not the SIG.
	GenericColorServer ModelID = 0xFFFF
	GenericColorClient ModelID = 0xFFFE

	CustomVendorClient ModelID = 0xFFFF0000
	CustomVendorServer ModelID = 0xFFFF0001

	ConfigurationServer ModelID = 0x0000
	ConfigurationClient ModelID = 0x0001
)

// ServerModelPreference is the order in which server models are chosen
// when a node hosts more than one recognized model.
var ServerModelPreference = []ModelID{
	GenericOnOffServer,
	GenericColorServer,
}

var clientModels = map[ModelID]ModelID{
	GenericOnOffServer: GenericOnOffClient,
	GenericColorServer: GenericColorClient,
	CustomVendorServer: CustomVendorClient,
}

// ClientModelFor returns the client counterpart of a server model.
func ClientModelFor(server ModelID) (ModelID, bool) {
	client, ok := clientModels[server]
	return client, ok
}

// VendorModel builds a vendor model identifier.
func VendorModel(companyID, modelID uint16) ModelID {
	return ModelID(uint32(companyID)<<16 | uint32(modelID))
}

// IsVendor reports whether m is a vendor model.
func (m ModelID) IsVendor() bool {
	return m > 0xFFFF
}

// CompanyID returns the company identifier of a vendor model, or 0.
func (m ModelID) CompanyID() uint16 {
	return uint16(m >> 16)
}

// Number returns the model number within its namespace.
func (m ModelID) Number() uint16 {
	return uint16(m)
}

// String returns the model identifier in hex.
func (m ModelID) String() string {
	if m.IsVendor() {
		return fmt.Sprintf("0x%04X:0x%04X", m.CompanyID(), m.Number())
	}
	return fmt.Sprintf("0x%04X", uint16(m))
}

// Publish describes a model publication.
type Publish struct {
	Address                 Address  `json:"address"`
	AppKeyIndex             KeyIndex `json:"appKeyIndex"`
	CredentialFlag          bool     `json:"credentialFlag,omitempty"`
	TTL                     uint8    `json:"ttl"`
	PeriodSteps             uint8    `json:"periodSteps"`
	PeriodResolution        uint8    `json:"periodResolution"`
	RetransmitCount         uint8    `json:"retransmitCount"`
	RetransmitIntervalSteps uint8    `json:"retransmitIntervalSteps"`
}

// Model is a functional unit hosted on an element.
type Model struct {
	ID            ModelID    `json:"id"`
	Bind          []KeyIndex `json:"bind,omitempty"`
	Subscriptions []Address  `json:"subscribe,omitempty"`
	Publish       *Publish   `json:"publish,omitempty"`
}

// IsBoundTo reports whether the application key is bound to the model.
func (m Model) IsBoundTo(idx KeyIndex) bool {
	return slices.Contains(m.Bind, idx)
}

// IsSubscribedTo reports whether the model subscribes to addr.
func (m Model) IsSubscribedTo(addr Address) bool {
	return slices.Contains(m.Subscriptions, addr)
}

// Element is an addressable entity within a node.
type Element struct {
	Index    uint8   `json:"index"`
	Location uint16  `json:"location"`
	Models   []Model `json:"models"`
}

// Model returns the model with the given identifier, if present.
func (e Element) Model(id ModelID) (Model, bool) {
	for _, m := range e.Models {
		if m.ID == id {
			return m, true
		}
	}
	return Model{}, false
}

// Clone returns a deep copy of the element.
func (e Element) Clone() Element {
	out := e
	out.Models = make([]Model, len(e.Models))
	for i, m := range e.Models {
		out.Models[i] = m.clone()
	}
	return out
}

func (m Model) clone() Model {
	out := m
	out.Bind = slices.Clone(m.Bind)
	out.Subscriptions = slices.Clone(m.Subscriptions)
	if m.Publish != nil {
		p := *m.Publish
		out.Publish = &p
	}
	return out
}
