package skills

import (
	"net/http"

	"github.com/pkg/errors"
)

// ErrorKind classifies failures of the skill pipeline and catalog
type ErrorKind string

// Error kinds surfaced to callers
const (
	KindValidation          ErrorKind = "ValidationError"
	KindConfiguration       ErrorKind = "ConfigurationError"
	KindInvalidCredential   ErrorKind = "InvalidCredentialError"
	KindUpstreamRateLimit   ErrorKind = "UpstreamRateLimitError"
	KindUpstreamUnavailable ErrorKind = "UpstreamUnavailableError"
	KindGenerationFailed    ErrorKind = "GenerationFailedError"
	KindNotFound            ErrorKind = "NotFound"
	KindStorage             ErrorKind = "StorageError"
)

// Error is a classified failure. Message is safe to show to end users;
// Err carries the internal cause and is only ever logged.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Message + ": " + e.Err.Error()
	}
	return string(e.Kind) + ": " + e.Message
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// Cause supports github.com/pkg/errors.Cause
func (e *Error) Cause() error {
	return e.Err
}

// NewError creates a classified error
func NewError(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// ValidationError reports user-correctable input
func ValidationError(message string) *Error {
	return NewError(KindValidation, message, nil)
}

// NotFoundError reports an unknown skill id
func NotFoundError(id string) *Error {
	return NewError(KindNotFound, "Skill not found.", errors.Errorf("skill %q not found", id))
}

// StorageError wraps a persistence fault
func StorageError(message string, cause error) *Error {
	return NewError(KindStorage, message, cause)
}

// KindOf returns the kind of the first classified error in err's chain,
// or the empty kind when err is unclassified.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err is classified as kind
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// IsNotFound reports whether err is a NotFound error
func IsNotFound(err error) bool {
	return IsKind(err, KindNotFound)
}

// HTTPStatus maps an error to the status code returned to HTTP callers.
// Credential rejection is deliberately reported as 503.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConfiguration, KindInvalidCredential, KindUpstreamRateLimit, KindUpstreamUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the user-facing message for err. Unclassified
// errors get a generic message so internal details never leak.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "An unexpected error occurred. Please try again."
}
