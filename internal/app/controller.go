// Package app holds the view-state controller: the single owner of the
// in-memory route list and the current display name. Every mutation is a
// pessimistic refresh — call the backend, then reload the full list — so
// local and remote state can never silently diverge. Handlers depend on
// this package, never on the gateway directly.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"

	"github.com/guzmanes/routeboard/internal/cache"
	"github.com/guzmanes/routeboard/internal/domain"
)

// Gateway defines the backend operations the controller depends on.
// Defining the interface here (in the consumer package) lets controller
// tests inject a mock without touching the network.
type Gateway interface {
	ListRoutes(ctx context.Context) ([]domain.Route, error)
	CreateRoute(ctx context.Context, in domain.RouteInput) (domain.Route, error)
	UpdateRoute(ctx context.Context, id int64, in domain.RouteInput) (domain.Route, error)
	DeleteRoute(ctx context.Context, id int64) error
	JoinRoute(ctx context.Context, id int64, username string) (domain.Route, error)
	LeaveRoute(ctx context.Context, id int64, username string) (domain.Route, error)
	UpsertUser(ctx context.Context, username string) (domain.User, error)
}

// Controller orchestrates gateway calls and owns the route snapshot.
type Controller struct {
	gw       Gateway
	store    cache.Store
	log      *slog.Logger
	validate *validator.Validate

	mu     sync.RWMutex
	routes []domain.Route
	stale  bool // snapshot came from the cache fallback, not the backend
	user   string

	// reload coalesces concurrent full-list fetches into one backend call.
	reload singleflight.Group

	// inflight guards each route against overlapping mutations, closing
	// the lost-reload race of two quick joins on the same route.
	inflightMu sync.Mutex
	inflight   map[int64]struct{}
}

// New constructs a Controller and bootstraps the current user name from the
// cache store. The route snapshot starts empty; call Load to populate it.
func New(gw Gateway, store cache.Store, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	c := &Controller{
		gw:       gw,
		store:    store,
		log:      log,
		validate: validator.New(),
		inflight: make(map[int64]struct{}),
	}

	name, err := store.ReadCurrentUser()
	if err != nil {
		log.Warn("reading cached user failed", "error", err)
	}
	c.user = strings.TrimSpace(name)

	return c
}

// Routes returns the current snapshot and whether it is a stale cache
// fallback. The returned slice is shared; callers must not modify it —
// the snapshot is only ever replaced wholesale, never edited in place.
func (c *Controller) Routes() ([]domain.Route, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.routes, c.stale
}

// CurrentUser returns the active display name, or "" when none is set.
func (c *Controller) CurrentUser() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user
}

// Load fetches the full route list from the backend and replaces the
// snapshot wholesale, writing through to the cache. On gateway failure the
// last cached list is installed instead (flagged stale) and the gateway
// error is returned so the caller can surface it; the snapshot is valid
// either way. Concurrent calls coalesce into one backend fetch.
func (c *Controller) Load(ctx context.Context) error {
	_, err, _ := c.reload.Do("routes", func() (any, error) {
		routes, err := c.gw.ListRoutes(ctx)
		if err != nil {
			c.fallback(err)
			return nil, fmt.Errorf("app.Controller.Load: %w", err)
		}

		c.mu.Lock()
		c.routes = routes
		c.stale = false
		c.mu.Unlock()

		if werr := c.store.WriteRoutes(routes); werr != nil {
			c.log.Warn("writing route cache failed", "error", werr)
		}
		return nil, nil
	})
	return err
}

// fallback installs the cached route list after a failed load. An existing
// fresh snapshot is kept in preference to the cache.
func (c *Controller) fallback(cause error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.routes) > 0 && !c.stale {
		c.stale = true
		return
	}

	cached, err := c.store.ReadRoutes()
	if err != nil {
		c.log.Warn("reading route cache failed", "error", err)
		return
	}
	c.log.Info("serving cached routes", "count", len(cached), "cause", cause)
	c.routes = cached
	c.stale = true
}

// SetUser updates the display name optimistically: local state and cache
// first, then a best-effort backend registration whose failure is only
// logged. The name stays set locally regardless of sync outcome.
func (c *Controller) SetUser(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("app.Controller.SetUser: %w: name is required", domain.ErrValidation)
	}

	c.mu.Lock()
	c.user = name
	c.mu.Unlock()

	if err := c.store.WriteCurrentUser(name); err != nil {
		c.log.Warn("writing cached user failed", "error", err)
	}
	if _, err := c.gw.UpsertUser(ctx, name); err != nil {
		c.log.Warn("user sync failed", "user", name, "error", err)
	}
	return nil
}

// AddRoute validates and submits a new route, then reloads the list. A
// failed create returns the gateway error without reloading, so the failure
// reaches the user instead of being masked by a refresh.
func (c *Controller) AddRoute(ctx context.Context, in domain.RouteInput) error {
	if err := c.validateInput("AddRoute", in); err != nil {
		return err
	}
	if _, err := c.gw.CreateRoute(ctx, in); err != nil {
		return fmt.Errorf("app.Controller.AddRoute: %w", err)
	}
	return c.Load(ctx)
}

// UpdateRoute overwrites a route's descriptive fields, then reloads.
// Participants are untouched: the backend owns that list.
func (c *Controller) UpdateRoute(ctx context.Context, id int64, in domain.RouteInput) error {
	if err := c.validateInput("UpdateRoute", in); err != nil {
		return err
	}
	if err := c.acquire(id); err != nil {
		return err
	}
	defer c.release(id)

	if _, err := c.gw.UpdateRoute(ctx, id, in); err != nil {
		return fmt.Errorf("app.Controller.UpdateRoute: %w", err)
	}
	return c.Load(ctx)
}

// DeleteRoute removes a route, then reloads. Authorization happens at the
// presentation layer before this is ever invoked.
func (c *Controller) DeleteRoute(ctx context.Context, id int64) error {
	if err := c.acquire(id); err != nil {
		return err
	}
	defer c.release(id)

	if err := c.gw.DeleteRoute(ctx, id); err != nil {
		return fmt.Errorf("app.Controller.DeleteRoute: %w", err)
	}
	return c.Load(ctx)
}

// JoinRoute adds username to a route's roster, then reloads.
func (c *Controller) JoinRoute(ctx context.Context, id int64, username string) error {
	return c.member(ctx, "JoinRoute", id, username, c.gw.JoinRoute)
}

// LeaveRoute removes username from a route's roster, then reloads.
func (c *Controller) LeaveRoute(ctx context.Context, id int64, username string) error {
	return c.member(ctx, "LeaveRoute", id, username, c.gw.LeaveRoute)
}

func (c *Controller) member(ctx context.Context, op string, id int64, username string,
	call func(context.Context, int64, string) (domain.Route, error)) error {

	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("app.Controller.%s: %w: username is required", op, domain.ErrValidation)
	}
	if err := c.acquire(id); err != nil {
		return err
	}
	defer c.release(id)

	if _, err := call(ctx, id, username); err != nil {
		return fmt.Errorf("app.Controller.%s: %w", op, err)
	}
	return c.Load(ctx)
}

// validateInput runs struct validation over the form fields. Failures wrap
// domain.ErrValidation so handlers can map them to a form error.
func (c *Controller) validateInput(op string, in domain.RouteInput) error {
	if err := c.validate.Struct(in); err != nil {
		return fmt.Errorf("app.Controller.%s: %w: %v", op, domain.ErrValidation, err)
	}
	return nil
}

// acquire marks a route mutation as in flight, failing with ErrRouteBusy
// when one already is.
func (c *Controller) acquire(id int64) error {
	c.inflightMu.Lock()
	defer c.inflightMu.Unlock()
	if _, busy := c.inflight[id]; busy {
		return fmt.Errorf("app.Controller: route %d: %w", id, domain.ErrRouteBusy)
	}
	c.inflight[id] = struct{}{}
	return nil
}

func (c *Controller) release(id int64) {
	c.inflightMu.Lock()
	defer c.inflightMu.Unlock()
	delete(c.inflight, id)
}
