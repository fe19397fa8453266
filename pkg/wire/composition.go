package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/mesh-lifecycle/mesh-go/pkg/mesh"
)

// Feature bits of composition data page 0.
const (
	FeatureRelay    uint16 = 1 << 0
	FeatureProxy    uint16 = 1 << 1
	FeatureFriend   uint16 = 1 << 2
	FeatureLowPower uint16 = 1 << 3
)

// CompositionData is page 0 of a node's composition data.
type CompositionData struct {
	CompanyID uint16
	ProductID uint16
	VersionID uint16
	CRPL      uint16
	Features  uint16
	Elements  []mesh.Element
}

// ParseCompositionData parses the body of composition data page 0.
func ParseCompositionData(b []byte) (CompositionData, error) {
	if len(b) < 10 {
		return CompositionData{}, lengthError(len(b), 10)
	}
	cd := CompositionData{
		CompanyID: binary.LittleEndian.Uint16(b[0:]),
		ProductID: binary.LittleEndian.Uint16(b[2:]),
		VersionID: binary.LittleEndian.Uint16(b[4:]),
		CRPL:      binary.LittleEndian.Uint16(b[6:]),
		Features:  binary.LittleEndian.Uint16(b[8:]),
	}
	rest := b[10:]
	for index := 0; len(rest) > 0; index++ {
		if len(rest) < 4 {
			return CompositionData{}, fmt.Errorf("%w: truncated element %d header", ErrInvalidLength, index)
		}
		loc := binary.LittleEndian.Uint16(rest)
		numS, numV := int(rest[2]), int(rest[3])
		rest = rest[4:]
		if len(rest) < numS*2+numV*4 {
			return CompositionData{}, fmt.Errorf("%w: truncated element %d models", ErrInvalidLength, index)
		}
		el := mesh.Element{Index: uint8(index), Location: loc, Models: make([]mesh.Model, 0, numS+numV)}
		for i := 0; i < numS; i++ {
			el.Models = append(el.Models, mesh.Model{ID: readModelID(rest[:2])})
			rest = rest[2:]
		}
		for i := 0; i < numV; i++ {
			el.Models = append(el.Models, mesh.Model{ID: readModelID(rest[:4])})
			rest = rest[4:]
		}
		cd.Elements = append(cd.Elements, el)
	}
	return cd, nil
}

// AppendTo appends the encoded page 0 body to b.
func (cd CompositionData) AppendTo(b []byte) []byte {
	b = binary.LittleEndian.AppendUint16(b, cd.CompanyID)
	b = binary.LittleEndian.AppendUint16(b, cd.ProductID)
	b = binary.LittleEndian.AppendUint16(b, cd.VersionID)
	b = binary.LittleEndian.AppendUint16(b, cd.CRPL)
	b = binary.LittleEndian.AppendUint16(b, cd.Features)
	for _, el := range cd.Elements {
		var sig, vendor []mesh.ModelID
		for _, m := range el.Models {
			if m.ID.IsVendor() {
				vendor = append(vendor, m.ID)
			} else {
				sig = append(sig, m.ID)
			}
		}
		b = binary.LittleEndian.AppendUint16(b, el.Location)
		b = append(b, byte(len(sig)), byte(len(vendor)))
		for _, id := range sig {
			b = appendModelID(b, id)
		}
		for _, id := range vendor {
			b = appendModelID(b, id)
		}
	}
	return b
}
