// Package calendar does the date-window math behind relative date phrases.
//
// All computations happen in one explicit location. Naive timestamps from the corpus are
// interpreted in that location and "now" is converted into it, so "today" means the calendar
// day of the configured zone rather than of the host.
package calendar

import (
	"strings"
	"time"

	"github.com/0xcro3dile/boardchat/internal/domain/entities"
)

// Clock supplies the evaluation instant.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant. Useful for tests and replays.
type FixedClock time.Time

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time { return time.Time(c) }

// Calendar evaluates date windows in a fixed location.
type Calendar struct {
	loc *time.Location
}

// New returns a Calendar for loc. A nil loc means UTC.
func New(loc *time.Location) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return Calendar{loc: loc}
}

// Location returns the calendar's zone.
func (c Calendar) Location() *time.Location {
	return c.loc
}

// StartOfDay returns 00:00 of t's calendar day.
func (c Calendar) StartOfDay(t time.Time) time.Time {
	t = t.In(c.loc)
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.loc)
}

// SameDay reports whether a and b fall on the same calendar day.
func (c Calendar) SameDay(a, b time.Time) bool {
	ay, am, ad := a.In(c.loc).Date()
	by, bm, bd := b.In(c.loc).Date()
	return ay == by && am == bm && ad == bd
}

// SameMonth reports whether a and b fall in the same calendar month of the same year.
func (c Calendar) SameMonth(a, b time.Time) bool {
	ay, am, _ := a.In(c.loc).Date()
	by, bm, _ := b.In(c.loc).Date()
	return ay == by && am == bm
}

// WeekStart returns 00:00 of the Sunday that begins t's week.
func (c Calendar) WeekStart(t time.Time) time.Time {
	day := c.StartOfDay(t)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// PreviousMonth returns the first instant of the month before t's month.
// Anchoring on the 1st keeps AddDate from overflowing into the next month (e.g. March 31).
func (c Calendar) PreviousMonth(t time.Time) time.Time {
	t = t.In(c.loc)
	y, m, _ := t.Date()
	return time.Date(y, m-1, 1, 0, 0, 0, 0, c.loc)
}

// Contains reports whether ts falls in the window r denotes at instant now.
// DateNone contains every timestamp.
func (c Calendar) Contains(r entities.DateRange, ts, now time.Time) bool {
	switch r {
	case entities.DateToday:
		return c.SameDay(ts, now)
	case entities.DateYesterday:
		return c.SameDay(ts, c.StartOfDay(now).AddDate(0, 0, -1))
	case entities.DateThisWeek:
		return !ts.Before(c.WeekStart(now))
	case entities.DateLastWeek:
		start := c.WeekStart(now)
		return !ts.Before(start.AddDate(0, 0, -7)) && ts.Before(start)
	case entities.DateThisMonth:
		return c.SameMonth(ts, now)
	case entities.DateLastMonth:
		return c.SameMonth(ts, c.PreviousMonth(now))
	case entities.DateRecent:
		return !ts.Before(now.Add(-7 * 24 * time.Hour))
	default:
		return true
	}
}

// layouts are the registration-date formats seen in board exports, most specific first.
var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
}

// Parse reads a registration date. Zone-less values are taken to be in the calendar's location.
// ok is false for empty or unrecognised input.
func (c Calendar) Parse(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, raw, c.loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ISO is the layout corpus documents use for normalised registration dates.
const ISO = "2006-01-02T15:04:05"
