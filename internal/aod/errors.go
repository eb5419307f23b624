package aod

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure so callers can branch on the category
// instead of matching error strings.
type Kind int

const (
	// KindUnknown is the zero value; it is never produced by pipeline stages.
	KindUnknown Kind = iota

	// KindConfiguration: missing or invalid configuration, detected before any I/O.
	KindConfiguration

	// KindLookup: a search produced no usable result (no geocode match, no
	// granule, no download link).
	KindLookup

	// KindAuth: the download endpoint rejected the supplied credentials.
	KindAuth

	// KindTransport: a network-level failure (non-2xx status, timeout,
	// connection failure).
	KindTransport

	// KindData: the raster held no valid measurement near the target.
	KindData
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindLookup:
		return "lookup"
	case KindAuth:
		return "auth"
	case KindTransport:
		return "transport"
	case KindData:
		return "data"
	default:
		return "unknown"
	}
}

// Error is a pipeline failure carrying its taxonomy kind and the stage that
// produced it.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s error", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Errorf builds a kind-carrying error for stage op.
func Errorf(kind Kind, op, format string, args ...interface{}) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// WrapErr attaches kind and op to an underlying error.
func WrapErr(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf extracts the taxonomy kind from err, or KindUnknown if err was not
// produced by a pipeline stage.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
