package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/guzmanes/routeboard/internal/domain"
	"github.com/guzmanes/routeboard/internal/gateway"
)

// postRoute handles POST /routes: create a route from the form fields.
// A failed create does not silently refresh — the error lands back on the
// form so the member knows the route was not saved.
func (s *Server) postRoute(w http.ResponseWriter, r *http.Request) {
	in, err := formToRouteInput(r)
	if err != nil {
		s.redirect(w, r, "", "", err.Error())
		return
	}

	if err := s.board.AddRoute(r.Context(), in); err != nil {
		s.redirect(w, r, "", "", actionError("saving the route", err))
		return
	}
	s.redirect(w, r, "", "route published", "")
}

// postEditRoute handles POST /routes/{id}/edit: full descriptive-field
// replacement, admin-gated. Participants are never touched by an edit.
func (s *Server) postEditRoute(w http.ResponseWriter, r *http.Request) {
	id, ok := s.routeID(w, r)
	if !ok {
		return
	}
	if !s.secretOK(r.FormValue("admin_secret")) {
		s.redirect(w, r, "", "", "wrong admin password, route not changed")
		return
	}

	in, err := formToRouteInput(r)
	if err != nil {
		s.redirect(w, r, "", "", err.Error())
		return
	}

	if err := s.board.UpdateRoute(r.Context(), id, in); err != nil {
		s.redirect(w, r, "", "", actionError("updating the route", err))
		return
	}
	s.redirect(w, r, "", "route updated", "")
}

// postDeleteRoute handles POST /routes/{id}/delete, admin-gated. With a
// wrong secret the controller (and thus the backend) is never invoked.
func (s *Server) postDeleteRoute(w http.ResponseWriter, r *http.Request) {
	id, ok := s.routeID(w, r)
	if !ok {
		return
	}
	if !s.secretOK(r.FormValue("admin_secret")) {
		s.redirect(w, r, "", "", "wrong admin password, route not deleted")
		return
	}

	if err := s.board.DeleteRoute(r.Context(), id); err != nil {
		s.redirect(w, r, "", "", actionError("deleting the route", err))
		return
	}
	s.redirect(w, r, "", "route deleted", "")
}

// postJoinRoute handles POST /routes/{id}/join. Blocked with a message when
// no rider name is set; no backend call happens in that case.
func (s *Server) postJoinRoute(w http.ResponseWriter, r *http.Request) {
	s.memberAction(w, r, "joined the ride", s.board.JoinRoute)
}

// postLeaveRoute handles POST /routes/{id}/leave.
func (s *Server) postLeaveRoute(w http.ResponseWriter, r *http.Request) {
	s.memberAction(w, r, "left the ride", s.board.LeaveRoute)
}

// memberAction is the shared join/leave flow: resolve the rider name,
// refuse without one, invoke the controller, and bounce back to the board.
func (s *Server) memberAction(w http.ResponseWriter, r *http.Request, done string,
	call func(ctx context.Context, id int64, username string) error) {

	id, ok := s.routeID(w, r)
	if !ok {
		return
	}

	user := s.currentUser(r)
	if user == "" {
		s.redirect(w, r, r.FormValue("tab"), "", "enter your rider name first")
		return
	}

	if err := call(r.Context(), id, user); err != nil {
		s.redirect(w, r, r.FormValue("tab"), "", actionError("updating the roster", err))
		return
	}
	s.redirect(w, r, r.FormValue("tab"), done, "")
}

// routeID parses the {id} path parameter, answering 404 for garbage.
func (s *Server) routeID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return 0, false
	}
	return id, true
}

// formToRouteInput maps the route form fields onto a RouteInput, coercing
// the numeric fields. Detailed validation happens in the controller; this
// only rejects values that cannot be represented at all.
func formToRouteInput(r *http.Request) (domain.RouteInput, error) {
	in := domain.RouteInput{
		Name:      strings.TrimSpace(r.FormValue("name")),
		Date:      strings.TrimSpace(r.FormValue("date")),
		Time:      strings.TrimSpace(r.FormValue("time")),
		Type:      domain.RouteType(r.FormValue("type")),
		TrackLink: strings.TrimSpace(r.FormValue("trackLink")),
	}

	var err error
	if v := strings.TrimSpace(r.FormValue("distance")); v != "" {
		if in.Distance, err = strconv.ParseFloat(v, 64); err != nil {
			return domain.RouteInput{}, errors.New("distance must be a number")
		}
	}
	if v := strings.TrimSpace(r.FormValue("elevation")); v != "" {
		if in.Elevation, err = strconv.ParseFloat(v, 64); err != nil {
			return domain.RouteInput{}, errors.New("elevation must be a number")
		}
	}
	return in, nil
}

// actionError maps a controller error onto the sentence shown to the member.
func actionError(doing string, err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return "check the form: " + doing + " failed validation"
	case errors.Is(err, domain.ErrNotFound):
		return "that route no longer exists"
	case errors.Is(err, domain.ErrRouteBusy):
		return "someone else is changing that route, try again"
	case gateway.IsUnavailable(err):
		return "the club server is unreachable, " + doing + " did not happen"
	default:
		return doing + " failed, please try again"
	}
}
