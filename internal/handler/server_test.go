package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guzmanes/routeboard/internal/domain"
	"github.com/guzmanes/routeboard/internal/handler"
)

const testSecret = "pedal-hard-secret"

// mockController is a test double for handler.Controller.
// Set only the method fields your test needs; unset lookups fall back to
// benign defaults so rendering always has something to show.
type mockController struct {
	load        func(ctx context.Context) error
	routes      func() ([]domain.Route, bool)
	currentUser func() string
	setUser     func(ctx context.Context, name string) error
	addRoute    func(ctx context.Context, in domain.RouteInput) error
	updateRoute func(ctx context.Context, id int64, in domain.RouteInput) error
	deleteRoute func(ctx context.Context, id int64) error
	joinRoute   func(ctx context.Context, id int64, username string) error
	leaveRoute  func(ctx context.Context, id int64, username string) error
}

func (m *mockController) Load(ctx context.Context) error {
	if m.load == nil {
		return nil
	}
	return m.load(ctx)
}

func (m *mockController) Routes() ([]domain.Route, bool) {
	if m.routes == nil {
		return nil, false
	}
	return m.routes()
}

func (m *mockController) CurrentUser() string {
	if m.currentUser == nil {
		return ""
	}
	return m.currentUser()
}

func (m *mockController) SetUser(ctx context.Context, name string) error {
	return m.setUser(ctx, name)
}
func (m *mockController) AddRoute(ctx context.Context, in domain.RouteInput) error {
	return m.addRoute(ctx, in)
}
func (m *mockController) UpdateRoute(ctx context.Context, id int64, in domain.RouteInput) error {
	return m.updateRoute(ctx, id, in)
}
func (m *mockController) DeleteRoute(ctx context.Context, id int64) error {
	return m.deleteRoute(ctx, id)
}
func (m *mockController) JoinRoute(ctx context.Context, id int64, username string) error {
	return m.joinRoute(ctx, id, username)
}
func (m *mockController) LeaveRoute(ctx context.Context, id int64, username string) error {
	return m.leaveRoute(ctx, id, username)
}

// compile-time check: mockController must satisfy handler.Controller.
var _ handler.Controller = (*mockController)(nil)

// ---- helpers ---------------------------------------------------------------

// newRouter wires a Server with the given mock the same way main.go does.
func newRouter(board handler.Controller) http.Handler {
	r := chi.NewRouter()
	handler.NewServer(board, testSecret, nil).Routes(r)
	return r
}

// upcomingRoute is dated far in the future so it always renders as upcoming.
func upcomingRoute() domain.Route {
	return domain.Route{
		ID:               1,
		Name:             "Sierra Loop",
		Date:             "2099-03-10",
		Type:             domain.RouteTypeRoad,
		Distance:         40,
		Elevation:        300,
		ParticipantsJSON: "[]",
	}
}

func withRoutes(routes ...domain.Route) *mockController {
	return &mockController{
		routes: func() ([]domain.Route, bool) { return routes, false },
	}
}

func postForm(h http.Handler, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func userCookie(name string) *http.Cookie {
	return &http.Cookie{Name: "cycling_user", Value: url.QueryEscape(name)}
}

// redirectQuery parses the query part of a 303 redirect target.
func redirectQuery(t *testing.T, rec *httptest.ResponseRecorder) url.Values {
	t.Helper()
	require.Equal(t, http.StatusSeeOther, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	return loc.Query()
}

// ---- GET / -----------------------------------------------------------------

// TestGetIndex_ShowsUpcomingCard covers the basic render: one upcoming
// route with an empty roster shows its card, no participants line, and an
// enabled join form.
func TestGetIndex_ShowsUpcomingCard(t *testing.T) {
	h := newRouter(withRoutes(upcomingRoute()))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Sierra Loop")
	assert.NotContains(t, body, "Participants:")
	assert.Contains(t, body, `action="/routes/1/join"`)
	assert.NotContains(t, body, `action="/routes/1/leave"`)
}

func TestGetIndex_JoinedUserSeesLeave(t *testing.T) {
	r := upcomingRoute()
	r.ParticipantsJSON = `["ana","berto"]`
	h := newRouter(withRoutes(r))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(userCookie("ana"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	body := rec.Body.String()
	assert.Contains(t, body, "Participants: ana, berto")
	assert.Contains(t, body, `action="/routes/1/leave"`)
}

// TestGetIndex_MalformedParticipantsStillRenders verifies that a defective
// participants payload is absorbed per record: the card renders with an
// empty roster instead of erroring the page.
func TestGetIndex_MalformedParticipantsStillRenders(t *testing.T) {
	r := upcomingRoute()
	r.ParticipantsJSON = `{"broken":`
	h := newRouter(withRoutes(r))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Sierra Loop")
	assert.NotContains(t, body, "Participants:")
}

func TestGetIndex_PastTab(t *testing.T) {
	past := domain.Route{ID: 2, Name: "Winter Classic", Date: "2001-01-01", Type: domain.RouteTypeRoad}
	h := newRouter(withRoutes(upcomingRoute(), past))

	req := httptest.NewRequest(http.MethodGet, "/?tab=past", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	body := rec.Body.String()
	assert.Contains(t, body, "Winter Classic")
	assert.Contains(t, body, "Ride completed")
	assert.NotContains(t, body, `action="/routes/2/join"`, "past routes have no join affordance")
}

// TestGetIndex_StaleBanner verifies degraded mode is visible: when the
// controller reports a stale cache-backed snapshot, the page says so while
// still rendering the list.
func TestGetIndex_StaleBanner(t *testing.T) {
	board := &mockController{
		load:   func(context.Context) error { return context.DeadlineExceeded },
		routes: func() ([]domain.Route, bool) { return []domain.Route{upcomingRoute()}, true },
	}
	h := newRouter(board)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "last saved list")
	assert.Contains(t, body, "Sierra Loop")
}

func TestGetHealth(t *testing.T) {
	h := newRouter(withRoutes())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
