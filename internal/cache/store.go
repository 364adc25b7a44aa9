// Package cache is the local fallback store: it mirrors the last route list
// the backend successfully served and the last display name the member set.
// It is read only when the backend is unreachable (route list) or at startup
// (user name) — never as the primary source of truth.
package cache

import "github.com/guzmanes/routeboard/internal/domain"

// Storage keys, shared by every implementation. They carry over the key
// names the backend's other clients already use.
const (
	routesKey = "cycling_routes"
	userKey   = "cycling_user"
)

// Store is the synchronous key-value bridge backing the cache. Reads of
// absent values return zero values, not errors; an error means the storage
// itself misbehaved.
type Store interface {
	// ReadRoutes returns the last cached route list, or nil when nothing
	// has been cached yet.
	ReadRoutes() ([]domain.Route, error)

	// WriteRoutes replaces the cached route list wholesale.
	WriteRoutes(routes []domain.Route) error

	// ReadCurrentUser returns the last-set display name, or "" when none.
	ReadCurrentUser() (string, error)

	// WriteCurrentUser replaces the stored display name.
	WriteCurrentUser(name string) error
}
