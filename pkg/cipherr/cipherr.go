// Package cipherr defines the single error type returned by every layer of the
// cipher library, together with the closed set of error kinds it carries.
package cipherr

import (
	"errors"
	"fmt"
)

// Kind classifies a cipher failure.
// A Kind is itself an error, so callers can match with errors.Is(err, cipherr.InvalidPadding).
type Kind uint8

const (
	// Unknown is the zero Kind, reported by KindOf for foreign errors.
	Unknown Kind = iota
	// InvalidKeyLength is returned when a key is not 16, 24 or 32 bytes,
	// or does not match the requested key size.
	InvalidKeyLength
	// InvalidBlockAlignment is returned when input or IV lengths do not line up with the block size.
	InvalidBlockAlignment
	// InvalidPadding is returned when padding removal finds a malformed trailer.
	InvalidPadding
	// UnsupportedConfiguration is returned for enumeration values or parameters outside their closed set.
	UnsupportedConfiguration
	// EntropyUnavailable is returned when every entropy source failed after its retries.
	EntropyUnavailable
	// NonceReuse is returned when a (key, nonce) pair is presented twice for CTR encryption.
	NonceReuse
)

//nolint:gochecknoglobals
var messages = map[Kind]string{
	Unknown:                  "unknown cipher error",
	InvalidKeyLength:         "invalid key length",
	InvalidBlockAlignment:    "invalid block alignment",
	InvalidPadding:           "invalid padding",
	UnsupportedConfiguration: "unsupported configuration",
	EntropyUnavailable:       "entropy unavailable",
	NonceReuse:               "nonce reuse",
}

// String returns the human-readable message for the kind.
func (k Kind) String() string {
	if msg, ok := messages[k]; ok {
		return msg
	}

	return fmt.Sprintf("cipher error kind %d", uint8(k))
}

// Error implements the error interface.
func (k Kind) Error() string {
	return k.String()
}

// Error is a cipher failure: a kind plus a message describing the violation.
// Values are never mutated after creation.
type Error struct {
	Kind Kind
	Msg  string
}

// Newf creates an Error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}

	return e.Kind.String() + ": " + e.Msg
}

// Is reports whether target is the same Kind, or an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	switch t := target.(type) {
	case Kind:
		return e.Kind == t
	case *Error:
		return e.Kind == t.Kind
	default:
		return false
	}
}

// KindOf extracts the Kind from err, looking through wrapping.
// It returns Unknown when err carries no cipher error.
func KindOf(err error) Kind {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Kind
	}

	var kind Kind
	if errors.As(err, &kind) {
		return kind
	}

	return Unknown
}
