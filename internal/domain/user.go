package domain

// User is the backend's record of a registered display name. There is no
// credential attached: registration is a best-effort upsert keyed on the
// name itself.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// RouteInput carries the descriptive fields of a route from the form layer
// to the gateway. It never includes an id or a participant list: the backend
// assigns the former and owns the latter.
type RouteInput struct {
	Name      string    `json:"name" validate:"required"`
	Date      string    `json:"date" validate:"required,datetime=2006-01-02"`
	Time      string    `json:"time" validate:"omitempty,datetime=15:04"`
	Type      RouteType `json:"type" validate:"required,oneof=road mtb"`
	Distance  float64   `json:"distance" validate:"gte=0"`
	Elevation float64   `json:"elevation" validate:"gte=0"`
	TrackLink string    `json:"trackLink" validate:"omitempty,url"`
}
