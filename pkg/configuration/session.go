package configuration

import (
	"time"

	"github.com/mesh-lifecycle/mesh-go/pkg/mesh"
)

// Step is the status a node's configuration session is waiting for.
type Step uint8

const (
	StepIdle Step = iota
	AwaitingAppKeyStatus
	AwaitingCompositionData
	AwaitingModelBindStatus
	AwaitingClientBindStatus
	AwaitingSubscriptionStatus
	AwaitingPublicationStatus
	AwaitingResetStatus
)

// String returns the step name.
func (s Step) String() string {
	switch s {
	case StepIdle:
		return "IDLE"
	case AwaitingAppKeyStatus:
		return "AWAITING_APP_KEY_STATUS"
	case AwaitingCompositionData:
		return "AWAITING_COMPOSITION_DATA"
	case AwaitingModelBindStatus:
		return "AWAITING_MODEL_BIND_STATUS"
	case AwaitingClientBindStatus:
		return "AWAITING_CLIENT_BIND_STATUS"
	case AwaitingSubscriptionStatus:
		return "AWAITING_SUBSCRIPTION_STATUS"
	case AwaitingPublicationStatus:
		return "AWAITING_PUBLICATION_STATUS"
	case AwaitingResetStatus:
		return "AWAITING_RESET_STATUS"
	default:
		return "UNKNOWN"
	}
}

// Session is the configuration progress of one node.
type Session struct {
	Node        mesh.Address
	Step        Step
	AppKeyIndex mesh.KeyIndex

	// Set once composition data selected the models.
	ServerModel   mesh.ModelID
	ServerElement mesh.Address
	ClientModel   mesh.ModelID
	ClientElement mesh.Address

	StartedAt time.Time
	UpdatedAt time.Time
}

// Settings are the fixed parameters of the configuration flow.
type Settings struct {
	// RetryInterval is the composition data retry period.
	RetryInterval time.Duration

	// MaxRetries is the number of composition data resends after the
	// first request. Zero selects the default.
	MaxRetries int

	// Group is the group nodes are subscribed and publish to.
	Group     mesh.Address
	GroupName string

	// AppKeyName names application keys created by ConfigureNode.
	AppKeyName string

	// Publish holds the publication parameters. Address and AppKeyIndex
	// are filled in per node.
	Publish mesh.Publish
}

// DefaultSettings returns the default flow parameters.
func DefaultSettings() Settings {
	return Settings{
		RetryInterval: 5 * time.Second,
		MaxRetries:    3,
		Group:         mesh.WellKnownGroup,
		GroupName:     "Mesh Group",
		AppKeyName:    "Main Application Key",
		Publish: mesh.Publish{
			TTL:                     5,
			PeriodSteps:             0,
			PeriodResolution:        0,
			RetransmitCount:         1,
			RetransmitIntervalSteps: 2,
		},
	}
}

func (s Settings) withDefaults() Settings {
	d := DefaultSettings()
	if s.RetryInterval <= 0 {
		s.RetryInterval = d.RetryInterval
	}
	if s.MaxRetries <= 0 {
		s.MaxRetries = d.MaxRetries
	}
	if s.Group == mesh.UnassignedAddress {
		s.Group = d.Group
	}
	if s.GroupName == "" {
		s.GroupName = d.GroupName
	}
	if s.AppKeyName == "" {
		s.AppKeyName = d.AppKeyName
	}
	if s.Publish == (mesh.Publish{}) {
		s.Publish = d.Publish
	}
	return s
}
