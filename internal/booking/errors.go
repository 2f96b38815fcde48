package booking

import "errors"

// ErrNotFound is returned when a ledger lookup misses.
var ErrNotFound = errors.New("not found")

// StatusUnavailableError reports an operation that is invalid for the
// entity's current lifecycle status: paying a cancelled order, reserving a
// seat on a deleted flight, shrinking capacity below occupancy, and so on.
type StatusUnavailableError struct {
	// Status is the offending status name. It is empty for the few
	// operations that fail without a meaningful status to report.
	Status string
}

func (e *StatusUnavailableError) Error() string {
	if e.Status == "" {
		return "status unavailable"
	}
	return "status unavailable: " + e.Status
}

// PermissionDeniedError reports that the acting party lacks the privilege an
// operation requires. Privilege itself is decided by the calling layer; the
// ledger only propagates the decision as a typed failure.
type PermissionDeniedError struct {
	Reason string
}

func (e *PermissionDeniedError) Error() string {
	if e.Reason == "" {
		return "permission denied"
	}
	return "permission denied: " + e.Reason
}

// IsStatusUnavailable reports whether err is (or wraps) a
// StatusUnavailableError.
func IsStatusUnavailable(err error) bool {
	var se *StatusUnavailableError
	return errors.As(err, &se)
}

// IsPermissionDenied reports whether err is (or wraps) a
// PermissionDeniedError.
func IsPermissionDenied(err error) bool {
	var pe *PermissionDeniedError
	return errors.As(err, &pe)
}
