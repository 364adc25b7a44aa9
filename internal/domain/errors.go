package domain

import "errors"

// ErrNotFound is returned when the backend reports that the requested
// route no longer exists (HTTP 404). Handlers should surface this as a
// "route is gone" message rather than a failure banner.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when route input fails business rule validation
// (e.g. missing name, unknown route type, negative distance).
var ErrValidation = errors.New("validation error")

// ErrRouteBusy is returned when a mutation is requested for a route that
// already has one in flight. The caller should retry after the pending
// mutation's reload completes.
var ErrRouteBusy = errors.New("route mutation already in flight")
