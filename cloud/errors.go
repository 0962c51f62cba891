package cloud

import (
	"errors"
	"fmt"
)

// Kind classifies construction failures. Every kind is fatal to the build.
type Kind uint8

const (
	// ConfigurationError is an invalid builder input, detected before any
	// spatial index or file work starts.
	ConfigurationError Kind = iota + 1
	// ParseError is a malformed or incomplete mesh file.
	ParseError
	// GeometryError is a node layout that cannot produce normals.
	GeometryError
)

func (k Kind) String() string {
	switch k {
	case ConfigurationError:
		return "configuration error"
	case ParseError:
		return "parse error"
	case GeometryError:
		return "geometry error"
	}
	return "unknown error"
}

// Error is a construction failure with its kind and optional cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// Sentinels for errors.Is
var (
	ErrConfiguration = &Error{Kind: ConfigurationError}
	ErrParse         = &Error{Kind: ParseError}
	ErrGeometry      = &Error{Kind: GeometryError}
)

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches the kind sentinels: errors.Is(err, cloud.ErrParse)
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Message == "" && t.Cause == nil && t.Kind == e.Kind
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapError(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// IsKind reports whether err, or anything it wraps, is a construction
// error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
