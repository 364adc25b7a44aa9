package handler

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/guzmanes/routeboard/internal/domain"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// pages holds every parsed template. Parsing happens once at init; a broken
// template is a programming error and fails fast.
var pages = template.Must(template.New("").Funcs(template.FuncMap{
	"join": strings.Join,
	"isType": func(t domain.RouteType, s string) bool {
		return string(t) == s
	},
}).ParseFS(templateFS, "templates/*.tmpl"))

// routeCard is the per-route view model: the wire record plus everything
// the template would otherwise have to compute.
type routeCard struct {
	domain.Route
	Participants []string
	Past         bool
	Joined       bool
}

// boardData drives the index page.
type boardData struct {
	Tab      string
	User     string
	Msg      string
	Err      string
	Stale    bool
	Today    string
	Upcoming []routeCard
	Past     []routeCard
	Calendar monthGrid
}

// detailData drives the route detail page.
type detailData struct {
	routeCard
	User string
}

// getIndex handles GET /: refresh the list from the backend, partition it,
// and render the requested tab. A failed refresh still renders — the
// snapshot falls back to the cache and the page says so.
func (s *Server) getIndex(w http.ResponseWriter, r *http.Request) {
	loadErr := s.board.Load(r.Context())
	routes, stale := s.board.Routes()

	today := domain.Today()
	upcoming, past := domain.Partition(routes, today)

	q := r.URL.Query()
	tab := q.Get("tab")
	if tab != "past" && tab != "calendar" {
		tab = "upcoming"
	}

	user := s.currentUser(r)
	data := boardData{
		Tab:      tab,
		User:     user,
		Msg:      q.Get("msg"),
		Err:      q.Get("err"),
		Stale:    stale,
		Today:    today,
		Upcoming: s.cards(upcoming, today, user),
		Past:     s.cards(past, today, user),
	}
	if loadErr != nil && data.Err == "" && !stale {
		data.Err = "the club server is unreachable and nothing is cached yet"
	}
	if tab == "calendar" {
		data.Calendar = s.monthGridFor(q.Get("month"), routes, today, user)
	}

	s.render(w, "index.tmpl", data)
}

// getRouteDetail handles GET /routes/{id}: the read-only summary reached
// from a calendar entry, with the join-or-leave toggle for the active user.
func (s *Server) getRouteDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := s.routeID(w, r)
	if !ok {
		return
	}

	if err := s.board.Load(r.Context()); err != nil {
		s.log.Warn("detail refresh failed", "route", id, "error", err)
	}
	routes, _ := s.board.Routes()

	today := domain.Today()
	for _, rt := range routes {
		if rt.ID != id {
			continue
		}
		user := s.currentUser(r)
		s.render(w, "detail.tmpl", detailData{
			routeCard: s.card(rt, today, user),
			User:      user,
		})
		return
	}
	http.NotFound(w, r)
}

// cards builds the view models for a list of routes.
func (s *Server) cards(routes []domain.Route, today, user string) []routeCard {
	out := make([]routeCard, len(routes))
	for i, r := range routes {
		out[i] = s.card(r, today, user)
	}
	return out
}

// card builds one view model. A malformed participants payload is a
// per-record defect: log it and render the route with an empty roster.
func (s *Server) card(r domain.Route, today, user string) routeCard {
	names, ok := domain.ParseParticipants(r.ParticipantsJSON)
	if !ok {
		s.log.Warn("malformed participants payload", "route", r.ID)
	}
	c := routeCard{
		Route:        r,
		Participants: names,
		Past:         r.IsPast(today),
	}
	if user != "" {
		for _, p := range names {
			if p == user {
				c.Joined = true
				break
			}
		}
	}
	return c
}

// render executes a template into a buffer first so a template error can
// still produce a clean 500 instead of a half-written page.
func (s *Server) render(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		s.log.Error("template render failed", "template", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
