package certificate

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a failure so callers can render a specific message.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindUnauthorized
	KindInvalidType
	KindDuplicateRequest
	KindInvalidTransition
	KindUpstreamFailure
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindUnauthorized:
		return "Unauthorized"
	case KindInvalidType:
		return "InvalidType"
	case KindDuplicateRequest:
		return "DuplicateRequest"
	case KindInvalidTransition:
		return "InvalidTransition"
	case KindUpstreamFailure:
		return "UpstreamFailure"
	default:
		return "Unknown"
	}
}

// InvalidType reasons
const (
	ReasonUnknownType = "unknown_type"
	ReasonNotEligible = "not_eligible"
)

// Error is the error type returned by every operation in this package.
type Error struct {
	Kind    Kind
	Reason  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Kind, and on Reason when the target sets one, so
// errors.Is(err, ErrInvalidType) holds for both InvalidType reasons.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Reason == "" || t.Reason == e.Reason)
}

// Sentinels for errors.Is.
var (
	ErrNotFound          = &Error{Kind: KindNotFound, Message: "not found"}
	ErrUnauthorized      = &Error{Kind: KindUnauthorized, Message: "unauthorized"}
	ErrInvalidType       = &Error{Kind: KindInvalidType, Message: "invalid certificate type"}
	ErrUnknownType       = &Error{Kind: KindInvalidType, Reason: ReasonUnknownType, Message: "unknown certificate type"}
	ErrNotEligible       = &Error{Kind: KindInvalidType, Reason: ReasonNotEligible, Message: "participant not eligible"}
	ErrDuplicateRequest  = &Error{Kind: KindDuplicateRequest, Message: "duplicate request"}
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition, Message: "invalid transition"}
	ErrUpstreamFailure   = &Error{Kind: KindUpstreamFailure, Message: "upstream failure"}
)

func newError(kind Kind, reason, format string, args ...interface{}) error {
	return &Error{Kind: kind, Reason: reason, Message: fmt.Sprintf(format, args...)}
}

func notFound(format string, args ...interface{}) error {
	return newError(KindNotFound, "", format, args...)
}

// upstream wraps a collaborator failure, keeping the cause and a stack.
func upstream(err error, format string, args ...interface{}) error {
	return &Error{
		Kind:    KindUpstreamFailure,
		Message: fmt.Sprintf(format, args...),
		Err:     errors.WithStack(err),
	}
}

// KindOf returns the Kind of err, looking through any wrapping.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// ReasonOf returns the Reason of err, or "" when it has none.
func ReasonOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return ""
}

// Retryable reports whether a caller may retry the whole operation.
func Retryable(err error) bool {
	return KindOf(err) == KindUpstreamFailure
}
