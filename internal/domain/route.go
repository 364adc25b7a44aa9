// Package domain contains the core data types for the route board client.
// This package has zero external dependencies and is imported by every other
// internal package (gateway, cache, app, handler).
package domain

import (
	"encoding/json"
	"slices"
	"strings"
	"time"
)

// RouteType classifies a route by terrain.
type RouteType string

const (
	RouteTypeRoad RouteType = "road"
	RouteTypeMTB  RouteType = "mtb"
)

// Valid reports whether t is one of the known route types.
func (t RouteType) Valid() bool {
	return t == RouteTypeRoad || t == RouteTypeMTB
}

// Route represents a scheduled group ride as the backend serves it.
// The JSON tags match the backend wire format exactly: trackLink is
// camelCase and the participant list travels as an encoded JSON string
// under participants_json. The client never constructs or mutates a
// Route locally — every state transition is a backend round trip.
type Route struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Date             string    `json:"date"` // YYYY-MM-DD, compared lexicographically
	Time             string    `json:"time"` // HH:MM, may be empty
	Type             RouteType `json:"type"`
	Distance         float64   `json:"distance"`  // kilometers
	Elevation        float64   `json:"elevation"` // meters
	TrackLink        string    `json:"trackLink"`
	ParticipantsJSON string    `json:"participants_json"`
}

// ParseParticipants decodes a participants_json payload into the list of
// display names. The second return value reports whether the payload was a
// well-formed JSON array of strings; absent, malformed, or non-array content
// degrades to an empty list with ok=false so callers can log the defect and
// keep rendering.
func ParseParticipants(raw string) (names []string, ok bool) {
	if strings.TrimSpace(raw) == "" {
		return nil, true
	}
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		return nil, false
	}
	if names == nil {
		// Literal "null" decodes without error but carries no list.
		return nil, false
	}
	return names, true
}

// Participants returns the decoded participant list, substituting the empty
// set for any payload ParseParticipants rejects.
func (r Route) Participants() []string {
	names, _ := ParseParticipants(r.ParticipantsJSON)
	return names
}

// HasParticipant reports whether name has joined the route.
func (r Route) HasParticipant(name string) bool {
	return slices.Contains(r.Participants(), name)
}

// IsPast reports whether the route's date is strictly before today
// (YYYY-MM-DD). Time of day is ignored: a route dated today is upcoming
// regardless of its start time.
func (r Route) IsPast(today string) bool {
	return r.Date < today
}

// sortKey orders routes by date then start time. A missing time counts as
// midnight so routes without a time sort first within their day.
func (r Route) sortKey() string {
	t := r.Time
	if t == "" {
		t = "00:00"
	}
	return r.Date + "T" + t
}

// Today returns the client's current local date in YYYY-MM-DD form.
func Today() string {
	return time.Now().Format("2006-01-02")
}

// Partition splits routes into upcoming (date >= today, ascending by date
// then time) and past (date < today, descending). The input slice is not
// modified.
func Partition(routes []Route, today string) (upcoming, past []Route) {
	for _, r := range routes {
		if r.IsPast(today) {
			past = append(past, r)
		} else {
			upcoming = append(upcoming, r)
		}
	}
	slices.SortStableFunc(upcoming, func(a, b Route) int {
		return strings.Compare(a.sortKey(), b.sortKey())
	})
	slices.SortStableFunc(past, func(a, b Route) int {
		return strings.Compare(b.sortKey(), a.sortKey())
	})
	return upcoming, past
}

// ByDate buckets routes under their exact date string for calendar
// rendering. Routes within a day keep list order.
func ByDate(routes []Route) map[string][]Route {
	byDate := make(map[string][]Route, len(routes))
	for _, r := range routes {
		byDate[r.Date] = append(byDate[r.Date], r)
	}
	return byDate
}
