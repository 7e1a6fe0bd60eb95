// Package fault defines the error taxonomy shared by the aggregates and the
// transaction engine.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies an error for boundary handling.
type Kind int

const (
	// KindValidation marks bad input shape: empty cart, non-positive quantity.
	KindValidation Kind = iota
	// KindNotFound marks an unknown item name or customer id.
	KindNotFound
	// KindInsufficientStock marks a requested quantity above availability.
	KindInsufficientStock
	// KindStorage marks a snapshot load or save failure; retryable.
	KindStorage
	// KindConflict marks a serialization violation. Under correct locking it
	// never occurs; if seen it is an internal invariant failure.
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindInsufficientStock:
		return "insufficient_stock"
	case KindStorage:
		return "storage"
	case KindConflict:
		return "conflict"
	}
	return "unknown"
}

// Error is a structured domain error. Item and the quantity fields are set
// only for the kinds that carry them.
type Error struct {
	Op        string
	Kind      Kind
	Item      string
	Requested int64
	Available int64
	Msg       string
	Err       error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindInsufficientStock:
		return fmt.Sprintf("%s: insufficient stock for %q: requested %d, available %d", e.Op, e.Item, e.Requested, e.Available)
	case e.Item != "":
		return fmt.Sprintf("%s: %s: %q", e.Op, e.Msg, e.Item)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Validationf reports a malformed request.
func Validationf(op, format string, args ...any) *Error {
	return &Error{Op: op, Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// NotFound reports a missing entity by name or id.
func NotFound(op, what, key string) *Error {
	return &Error{Op: op, Kind: KindNotFound, Item: key, Msg: what + " not found"}
}

// InsufficientStock reports an oversell attempt on one item.
func InsufficientStock(op, item string, requested, available int64) *Error {
	return &Error{Op: op, Kind: KindInsufficientStock, Item: item, Requested: requested, Available: available}
}

// Storage wraps a load/save failure.
func Storage(op string, err error) *Error {
	return &Error{Op: op, Kind: KindStorage, Msg: "storage failure", Err: err}
}

// Conflict reports a broken serialization invariant.
func Conflict(op, format string, args ...any) *Error {
	return &Error{Op: op, Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

// KindOf extracts the Kind from err, or KindStorage for unclassified errors
// so callers treat surprises as retryable rather than crashing.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindStorage
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, k Kind) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Kind == k
}
