// Package apperrors defines the closed error taxonomy of the account engine.
// Every failure the engine can surface maps to exactly one Kind; callers
// branch on kinds via IsKind instead of string matching.
package apperrors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies engine failures.
type Kind string

const (
	// KindUnsupportedChain is returned when the requested chain or
	// chain/account-type combination has no configuration or factory.
	// Rejected before any secret access.
	KindUnsupportedChain Kind = "unsupported_chain"

	// KindSeedRetrieval is returned when secret material is unavailable or
	// cannot be decrypted. Fatal for the request, never retried in-core.
	KindSeedRetrieval Kind = "seed_retrieval"

	// KindInvalidIndex is returned for a negative or out-of-range account
	// index. Rejected before derivation.
	KindInvalidIndex Kind = "invalid_index"

	// KindAddressValidation is returned when a derived address fails its
	// checksum or prefix post-condition. This signals a software defect,
	// not bad input; it is always fatal and never retried.
	KindAddressValidation Kind = "address_validation"

	// KindOwnershipMismatch is returned when no delegation record exists
	// for the claimed (user, chain, address). Rejected before secret
	// retrieval; user-facing as "not authorized".
	KindOwnershipMismatch Kind = "ownership_mismatch"

	// KindInternal wraps failures of collaborators (database, crypto
	// runtime) that do not belong to the user-correctable kinds above.
	KindInternal Kind = "internal"
)

// Error is the structured error type carried across the engine boundary.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]any
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As chains.
func (e *Error) Unwrap() error {
	return e.cause
}

// WithDetail attaches a diagnostic key/value pair and returns the error.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = map[string]any{}
	}
	e.Details[key] = value
	return e
}

// New creates an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an Error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error of the given kind wrapping a cause.
func Wrap(err error, kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, cause: err}
}

// IsKind reports whether err (or anything it wraps) is an Error of kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

// KindOf returns the kind of err, or KindInternal if err carries none.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
