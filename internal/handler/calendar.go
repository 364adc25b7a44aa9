package handler

import (
	"time"

	"github.com/guzmanes/routeboard/internal/domain"
)

// calendarDay is one cell of the month grid.
type calendarDay struct {
	Day     int    // day of month, for display
	Date    string // YYYY-MM-DD, the bucket key
	InMonth bool   // false for leading/trailing cells of adjacent months
	Today   bool
	Routes  []routeCard
}

// monthGrid is a whole month laid out in ISO weeks, Monday first.
type monthGrid struct {
	Label string // e.g. "March 2025"
	Prev  string // YYYY-MM of the previous month, for navigation
	Next  string // YYYY-MM of the next month
	Weeks [][7]calendarDay
}

// monthGridFor builds the grid for the ?month=YYYY-MM selection, defaulting
// to the current month when the parameter is absent or unparseable. Routes
// are bucketed by exact date-string match.
func (s *Server) monthGridFor(month string, routes []domain.Route, today, user string) monthGrid {
	first, err := time.Parse("2006-01", month)
	if err != nil {
		now := time.Now()
		first = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)
	}
	return s.buildMonthGrid(first, routes, today, user)
}

func (s *Server) buildMonthGrid(first time.Time, routes []domain.Route, today, user string) monthGrid {
	first = time.Date(first.Year(), first.Month(), 1, 0, 0, 0, 0, time.Local)
	byDate := domain.ByDate(routes)

	// Monday-first offset: Monday=0 ... Sunday=6.
	offset := (int(first.Weekday()) + 6) % 7
	start := first.AddDate(0, 0, -offset)

	nextMonth := first.AddDate(0, 1, 0)
	// Day arithmetic, not hour arithmetic: a DST month is not 24h*days long.
	daysInMonth := nextMonth.AddDate(0, 0, -1).Day()
	weeks := (offset + daysInMonth + 6) / 7

	grid := monthGrid{
		Label: first.Format("January 2006"),
		Prev:  first.AddDate(0, -1, 0).Format("2006-01"),
		Next:  nextMonth.Format("2006-01"),
	}

	day := start
	for w := 0; w < weeks; w++ {
		var week [7]calendarDay
		for d := 0; d < 7; d++ {
			date := day.Format("2006-01-02")
			cell := calendarDay{
				Day:     day.Day(),
				Date:    date,
				InMonth: day.Month() == first.Month(),
				Today:   date == today,
			}
			for _, r := range byDate[date] {
				cell.Routes = append(cell.Routes, s.card(r, today, user))
			}
			week[d] = cell
			day = day.AddDate(0, 0, 1)
		}
		grid.Weeks = append(grid.Weeks, week)
	}
	return grid
}
