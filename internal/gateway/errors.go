package gateway

import (
	"errors"
	"fmt"

	"github.com/guzmanes/routeboard/internal/domain"
)

// ErrorKind classifies a failed backend call so callers can branch on the
// failure mode instead of treating every error as "operation failed".
type ErrorKind string

const (
	// KindUnavailable covers transport-level failures: connection refused,
	// DNS, timeouts. The backend may never have seen the request.
	KindUnavailable ErrorKind = "unavailable"

	// KindStatus covers non-2xx HTTP responses. Status holds the code.
	KindStatus ErrorKind = "status"

	// KindDecode covers 2xx responses whose body could not be decoded.
	KindDecode ErrorKind = "decode"
)

// Error is the typed failure returned by every Client operation.
type Error struct {
	Op     string    // backend operation, e.g. "list routes"
	Kind   ErrorKind // failure classification
	Status int       // HTTP status code, set when Kind is KindStatus
	Err    error     // underlying cause, may wrap domain sentinels
}

func (e *Error) Error() string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("gateway: %s: unexpected status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("gateway: %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsUnavailable reports whether err represents a transport failure,
// i.e. the situation where the cached route list is the right fallback.
func IsUnavailable(err error) bool {
	var ge *Error
	return errors.As(err, &ge) && ge.Kind == KindUnavailable
}

// statusError builds the Error for a non-2xx response. A 404 wraps
// domain.ErrNotFound so callers can use errors.Is directly.
func statusError(op string, status int) *Error {
	e := &Error{Op: op, Kind: KindStatus, Status: status}
	if status == 404 {
		e.Err = domain.ErrNotFound
	}
	return e
}
