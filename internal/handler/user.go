package handler

import (
	"net/http"
	"net/url"
	"strings"
)

// userCookie is the per-browser identity channel. The value is the display
// name itself — there is no session or credential, matching the best-effort
// registration model of the backend.
const userCookie = "cycling_user"

// currentUser resolves the active display name: the browser cookie wins,
// the controller's cached bootstrap value is the fallback.
func (s *Server) currentUser(r *http.Request) string {
	if c, err := r.Cookie(userCookie); err == nil {
		if name, err := url.QueryUnescape(c.Value); err == nil {
			if name = strings.TrimSpace(name); name != "" {
				return name
			}
		}
	}
	return s.board.CurrentUser()
}

// postUser handles POST /user: set the display name locally, remember it in
// a cookie, and let the controller sync it to the backend best-effort.
func (s *Server) postUser(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.FormValue("username"))
	if err := s.board.SetUser(r.Context(), name); err != nil {
		s.redirect(w, r, r.FormValue("tab"), "", "enter your rider name first")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     userCookie,
		Value:    url.QueryEscape(name),
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.redirect(w, r, r.FormValue("tab"), "riding as "+name, "")
}

// redirect implements POST-redirect-GET: every mutation lands back on the
// board, which re-fetches the full list. Outcome text travels as query
// params so the redirected GET can show it once.
func (s *Server) redirect(w http.ResponseWriter, r *http.Request, tab, msg, errMsg string) {
	q := url.Values{}
	if tab != "" && tab != "upcoming" {
		q.Set("tab", tab)
	}
	if msg != "" {
		q.Set("msg", msg)
	}
	if errMsg != "" {
		q.Set("err", errMsg)
	}
	target := "/"
	if enc := q.Encode(); enc != "" {
		target += "?" + enc
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
