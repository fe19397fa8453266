package provisioning

import (
	"fmt"
	"strings"

	"github.com/mesh-lifecycle/mesh-go/pkg/bearer"
	"github.com/mesh-lifecycle/mesh-go/pkg/mesh"
)

// Algorithm is a provisioning key-exchange algorithm.
type Algorithm uint8

const (
	AlgorithmP256CMACAES128 Algorithm = iota
	AlgorithmP256HMACSHA256
)

// String returns the algorithm name.
func (a Algorithm) String() string {
	switch a {
	case AlgorithmP256CMACAES128:
		return "BTM_ECDH_P256_CMAC_AES128_AES_CCM"
	case AlgorithmP256HMACSHA256:
		return "BTM_ECDH_P256_HMAC_SHA256_AES_CCM"
	default:
		return fmt.Sprintf("Algorithm(%d)", uint8(a))
	}
}

// Algorithms is the bit field of algorithms a device supports.
type Algorithms uint16

// Bits of Algorithms.
const (
	SupportsP256CMACAES128 Algorithms = 1 << iota
	SupportsP256HMACSHA256
)

// Strongest returns the strongest supported algorithm. A device that
// advertises nothing still gets the mandatory CMAC algorithm.
func (a Algorithms) Strongest() Algorithm {
	if a&SupportsP256HMACSHA256 != 0 {
		return AlgorithmP256HMACSHA256
	}
	return AlgorithmP256CMACAES128
}

// String lists the supported algorithms.
func (a Algorithms) String() string {
	var names []string
	if a&SupportsP256CMACAES128 != 0 {
		names = append(names, AlgorithmP256CMACAES128.String())
	}
	if a&SupportsP256HMACSHA256 != 0 {
		names = append(names, AlgorithmP256HMACSHA256.String())
	}
	return "[" + strings.Join(names, ", ") + "]"
}

// PublicKeyType is the bit field of public key delivery options.
type PublicKeyType uint8

// PublicKeyOOBAvailable is set when the public key is available out of band.
const PublicKeyOOBAvailable PublicKeyType = 1 << 0

// String returns the supported public key types.
func (p PublicKeyType) String() string {
	if p&PublicKeyOOBAvailable != 0 {
		return "[Public Key OOB Information Available]"
	}
	return "[]"
}

// OOBType is the bit field of static OOB options.
type OOBType uint8

// StaticOOBAvailable is set when static OOB information is available.
const StaticOOBAvailable OOBType = 1 << 0

// String returns the supported OOB types.
func (o OOBType) String() string {
	if o&StaticOOBAvailable != 0 {
		return "[Static OOB Information Available]"
	}
	return "[]"
}

// Capabilities are the provisioning capabilities reported by a device.
type Capabilities struct {
	NumberOfElements uint8
	Algorithms       Algorithms
	PublicKeyType    PublicKeyType
	OOBType          OOBType
	OutputOOBSize    uint8
	OutputOOBActions uint16
	InputOOBSize     uint8
	InputOOBActions  uint16
}

// PublicKeyMethod selects how the device public key is obtained.
type PublicKeyMethod uint8

const (
	NoOOBPublicKey PublicKeyMethod = iota
	OOBPublicKey
)

// AuthenticationMethod selects the authentication step.
type AuthenticationMethod uint8

const (
	NoOOB AuthenticationMethod = iota
	StaticOOB
	OutputOOB
	InputOOB
)

// AuthAction is an authentication action the stack asks the user to take.
type AuthAction uint8

const (
	AuthProvideStaticKey AuthAction = iota
	AuthProvideNumeric
	AuthProvideAlphanumeric
	AuthDisplayNumber
	AuthDisplayAlphanumeric
)

// String returns the action name.
func (a AuthAction) String() string {
	switch a {
	case AuthProvideStaticKey:
		return "provideStaticKey"
	case AuthProvideNumeric:
		return "provideNumeric"
	case AuthProvideAlphanumeric:
		return "provideAlphanumeric"
	case AuthDisplayNumber:
		return "displayNumber"
	case AuthDisplayAlphanumeric:
		return "displayAlphanumeric"
	default:
		return "unknown"
	}
}

// ProtocolStateKind tags a ProtocolState.
type ProtocolStateKind uint8

const (
	ProtocolReady ProtocolStateKind = iota
	ProtocolRequestingCapabilities
	ProtocolCapabilitiesReceived
	ProtocolProvisioning
	ProtocolComplete
	ProtocolFailed
)

// String returns the kind name.
func (k ProtocolStateKind) String() string {
	switch k {
	case ProtocolReady:
		return "ready"
	case ProtocolRequestingCapabilities:
		return "requestingCapabilities"
	case ProtocolCapabilitiesReceived:
		return "capabilitiesReceived"
	case ProtocolProvisioning:
		return "provisioning"
	case ProtocolComplete:
		return "complete"
	case ProtocolFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ProtocolState is the state of the stack's provisioning protocol.
// Capabilities is set for ProtocolCapabilitiesReceived, Err for
// ProtocolFailed.
type ProtocolState struct {
	Kind         ProtocolStateKind
	Capabilities Capabilities
	Err          error
}

// RequestingCapabilities returns the requestingCapabilities state.
func RequestingCapabilities() ProtocolState {
	return ProtocolState{Kind: ProtocolRequestingCapabilities}
}

// CapabilitiesReceived returns the capabilitiesReceived state.
func CapabilitiesReceived(caps Capabilities) ProtocolState {
	return ProtocolState{Kind: ProtocolCapabilitiesReceived, Capabilities: caps}
}

// Complete returns the complete state.
func Complete() ProtocolState {
	return ProtocolState{Kind: ProtocolComplete}
}

// Failed returns the failed state.
func Failed(err error) ProtocolState {
	return ProtocolState{Kind: ProtocolFailed, Err: err}
}

// String renders the state.
func (s ProtocolState) String() string {
	if s.Kind == ProtocolFailed && s.Err != nil {
		return fmt.Sprintf("failed(%v)", s.Err)
	}
	return s.Kind.String()
}

// ProtocolDelegate receives provisioning protocol callbacks.
type ProtocolDelegate interface {
	ProtocolStateChanged(state ProtocolState)
	AuthenticationActionRequired(action AuthAction)
	InputComplete()
}

// ProtocolSession is the stack's handle on one provisioning exchange.
type ProtocolSession interface {
	SetDelegate(d ProtocolDelegate)

	// Identify asks the device to attract attention for the given number
	// of seconds and requests its capabilities.
	Identify(attentionTimer uint8) error

	// Capabilities returns the capabilities once received.
	Capabilities() (Capabilities, bool)

	NetworkKey() (mesh.NetworkKey, bool)
	SetNetworkKey(key mesh.NetworkKey)

	// Provision starts the key exchange.
	Provision(alg Algorithm, publicKey PublicKeyMethod, auth AuthenticationMethod) error

	// State returns the last protocol state.
	State() ProtocolState
}

// Registry is the mesh stack entry point used for provisioning.
type Registry interface {
	Network() mesh.Network

	// Provision prepares a protocol session for the device over an open
	// bearer.
	Provision(device mesh.UnprovisionedDevice, b bearer.Bearer) (ProtocolSession, error)

	// Save persists the mesh configuration database.
	Save() error
}
