package wire

// StatusCode is the status field of configuration status messages.
type StatusCode uint8

const (
	StatusSuccess                        StatusCode = 0x00
	StatusInvalidAddress                 StatusCode = 0x01
	StatusInvalidModel                   StatusCode = 0x02
	StatusInvalidAppKeyIndex             StatusCode = 0x03
	StatusInvalidNetKeyIndex             StatusCode = 0x04
	StatusInsufficientResources          StatusCode = 0x05
	StatusKeyIndexAlreadyStored          StatusCode = 0x06
	StatusInvalidPublishParameters       StatusCode = 0x07
	StatusNotASubscribeModel             StatusCode = 0x08
	StatusStorageFailure                 StatusCode = 0x09
	StatusFeatureNotSupported            StatusCode = 0x0A
	StatusCannotUpdate                   StatusCode = 0x0B
	StatusCannotRemove                   StatusCode = 0x0C
	StatusCannotBind                     StatusCode = 0x0D
	StatusTemporarilyUnableToChangeState StatusCode = 0x0E
	StatusCannotSet                      StatusCode = 0x0F
	StatusUnspecifiedError               StatusCode = 0x10
	StatusInvalidBinding                 StatusCode = 0x11
)

// String returns the status name.
func (s StatusCode) String() string {
	switch s {
	case StatusSuccess:
		return "SUCCESS"
	case StatusInvalidAddress:
		return "INVALID_ADDRESS"
	case StatusInvalidModel:
		return "INVALID_MODEL"
	case StatusInvalidAppKeyIndex:
		return "INVALID_APP_KEY_INDEX"
	case StatusInvalidNetKeyIndex:
		return "INVALID_NET_KEY_INDEX"
	case StatusInsufficientResources:
		return "INSUFFICIENT_RESOURCES"
	case StatusKeyIndexAlreadyStored:
		return "KEY_INDEX_ALREADY_STORED"
	case StatusInvalidPublishParameters:
		return "INVALID_PUBLISH_PARAMETERS"
	case StatusNotASubscribeModel:
		return "NOT_A_SUBSCRIBE_MODEL"
	case StatusStorageFailure:
		return "STORAGE_FAILURE"
	case StatusFeatureNotSupported:
		return "FEATURE_NOT_SUPPORTED"
	case StatusCannotUpdate:
		return "CANNOT_UPDATE"
	case StatusCannotRemove:
		return "CANNOT_REMOVE"
	case StatusCannotBind:
		return "CANNOT_BIND"
	case StatusTemporarilyUnableToChangeState:
		return "TEMPORARILY_UNABLE_TO_CHANGE_STATE"
	case StatusCannotSet:
		return "CANNOT_SET"
	case StatusUnspecifiedError:
		return "UNSPECIFIED_ERROR"
	case StatusInvalidBinding:
		return "INVALID_BINDING"
	default:
		return "UNKNOWN"
	}
}

// IsSuccess returns true if the status indicates success.
func (s StatusCode) IsSuccess() bool {
	return s == StatusSuccess
}
