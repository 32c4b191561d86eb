package truelicense

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/zzq1314zll/truelicense/internal/messages"
)

// Kind classifies a license management failure: a flat classification
// rather than a type hierarchy, so callers branch on a field instead of
// type-switching over a family of error types.
type Kind int

const (
	// Unexpected wraps any failure that does not fit one of the named kinds
	// below (codec errors, initializer errors, etc).
	Unexpected Kind = iota
	ConfigError
	AuthorizationDenied
	AuthenticationFailure
	ValidationFailure
	StoreFailure
	PasswordPolicyFailure
)

func (k Kind) String() string {
	switch k {
	case ConfigError:
		return "ConfigError"
	case AuthorizationDenied:
		return "AuthorizationDenied"
	case AuthenticationFailure:
		return "AuthenticationFailure"
	case ValidationFailure:
		return "ValidationFailure"
	case StoreFailure:
		return "StoreFailure"
	case PasswordPolicyFailure:
		return "PasswordPolicyFailure"
	default:
		return "Unexpected"
	}
}

// Error is the single checked failure type every manager operation returns.
// It carries a Kind for programmatic branching plus a human-readable,
// catalogue-backed message.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the wrapped cause, if any, to errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.cause }

// newError builds an *Error with a plain message.
func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// newErrorf builds an *Error from a message-catalogue id.
func newErrorf(kind Kind, id messages.ID, args ...any) *Error {
	return &Error{Kind: kind, Message: messages.Message(id, args...)}
}

// wrap turns an arbitrary error from a collaborator (codec, store,
// transformation, authentication) into an *Error of the given kind,
// preserving the original as the cause (with a pkg/errors stack trace) so
// that errors.Is/errors.As reach it through Unwrap. An err that already
// contains an *Error is returned as that *Error, keeping its own Kind.
func wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	var le *Error
	if errors.As(err, &le) {
		return le
	}
	return &Error{Kind: kind, Message: err.Error(), cause: errors.WithStack(err)}
}

// wrapf is wrap with an explicit message instead of err.Error().
func wrapf(kind Kind, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), cause: errors.WithStack(err)}
}

// Cause is pkg/errors' Cause: it follows Cause() methods. *Error has no
// Cause method, so for an *Error it returns err itself.
func Cause(err error) error { return errors.Cause(err) }

// NewStoreError builds a StoreFailure *Error, for use by Store
// implementations outside this module (e.g. memstore, filestore, sqlitestore).
func NewStoreError(msg string) error { return newError(StoreFailure, msg) }

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind == kind
	}
	return false
}
