// Package handler implements the HTTP surface of the route board: the
// server-rendered pages and the form endpoints behind them. All handlers are
// methods on Server. Handlers talk to the view-state controller only; the
// gateway and cache are invisible from here.
package handler

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/guzmanes/routeboard/internal/domain"
)

// Controller defines the view-state operations the handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the network or the cache.
type Controller interface {
	// Load refreshes the route snapshot from the backend. The snapshot is
	// valid even when Load errors (cache fallback).
	Load(ctx context.Context) error

	// Routes returns the current snapshot and whether it is stale.
	Routes() ([]domain.Route, bool)

	// CurrentUser returns the last-set display name, "" when none.
	CurrentUser() string

	SetUser(ctx context.Context, name string) error
	AddRoute(ctx context.Context, in domain.RouteInput) error
	UpdateRoute(ctx context.Context, id int64, in domain.RouteInput) error
	DeleteRoute(ctx context.Context, id int64) error
	JoinRoute(ctx context.Context, id int64, username string) error
	LeaveRoute(ctx context.Context, id int64, username string) error
}

// Server holds the handler dependencies.
type Server struct {
	board       Controller
	adminSecret string
	log         *slog.Logger
}

// NewServer constructs the Server. adminSecret gates delete and edit; it
// comes from config, never from a constant in code.
func NewServer(board Controller, adminSecret string, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{board: board, adminSecret: adminSecret, log: log}
}

// Routes registers every page and form endpoint on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/", s.getIndex)
	r.Get("/healthz", s.getHealth)

	r.Post("/user", s.postUser)

	r.Post("/routes", s.postRoute)
	r.Get("/routes/{id}", s.getRouteDetail)
	r.Post("/routes/{id}/edit", s.postEditRoute)
	r.Post("/routes/{id}/delete", s.postDeleteRoute)
	r.Post("/routes/{id}/join", s.postJoinRoute)
	r.Post("/routes/{id}/leave", s.postLeaveRoute)
}

// getHealth handles GET /healthz.
// It returns HTTP 200 with {"status":"ok"} when the server is running.
func (s *Server) getHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// secretOK compares the submitted admin secret in constant time. A missing
// or wrong secret means the privileged operation is rejected before any
// backend call is made.
func (s *Server) secretOK(submitted string) bool {
	return subtle.ConstantTimeCompare([]byte(submitted), []byte(s.adminSecret)) == 1
}
