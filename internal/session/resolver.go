package session

import (
	"fmt"
	"log"
	"time"

	calclient "github.com/Anoesj/google-calendar-logger/internal/calendar"

	"google.golang.org/api/calendar/v3"
)

// Resolver locates the event representing the currently open session. The remote
// store can only list events ascending by start time within a window, so the
// resolver scans a bounded lookback window and inspects markers itself.
type Resolver struct {
	store      calclient.EventStore
	calendarID string
	lookback   time.Duration

	// Warnf receives non-fatal anomaly reports, e.g. when more than one event
	// carries an open marker. Defaults to log.Printf.
	Warnf func(format string, args ...any)
}

// NewResolver creates a Resolver scanning the given lookback window.
func NewResolver(store calclient.EventStore, calendarID string, lookback time.Duration) *Resolver {
	return &Resolver{
		store:      store,
		calendarID: calendarID,
		lookback:   lookback,
		Warnf:      log.Printf,
	}
}

// FindOpenSession returns the single event that represents the session open as of
// the given time, or ErrNoOpenSession if none exists in the lookback window.
//
// Under correct operation at most one event carries an open marker, but prior
// crashes or concurrent writers can leave several. That case is recovered, not
// failed: the event with the latest start time wins (event id breaks exact ties
// so repeated calls agree), and the anomaly is reported through Warnf.
func (r *Resolver) FindOpenSession(asOf time.Time) (*calendar.Event, error) {
	events, err := r.store.ListEvents(r.calendarID, asOf.Add(-r.lookback), asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent events: %w", err)
	}

	var open []*calendar.Event
	for _, event := range events {
		if IsOpen(event) {
			open = append(open, event)
		}
	}

	if len(open) == 0 {
		return nil, ErrNoOpenSession
	}

	if len(open) > 1 {
		r.Warnf("Warning: found %d events with an open session marker, expected at most one; using the most recent", len(open))
	}

	winner := open[0]
	for _, candidate := range open[1:] {
		if beats(candidate, winner) {
			winner = candidate
		}
	}

	return winner, nil
}

// beats reports whether a wins the tie-break against b: later start time first,
// then greater event id.
func beats(a, b *calendar.Event) bool {
	aStart, aOK := eventStart(a)
	bStart, bOK := eventStart(b)

	// Events with an unparsable or missing start lose outright.
	if !aOK {
		return false
	}
	if !bOK {
		return true
	}

	if !aStart.Equal(bStart) {
		return aStart.After(bStart)
	}
	return a.Id > b.Id
}

// eventStart extracts the event's start time, tolerating missing fields.
func eventStart(event *calendar.Event) (time.Time, bool) {
	if event.Start == nil || event.Start.DateTime == "" {
		return time.Time{}, false
	}
	start, err := time.Parse(time.RFC3339, event.Start.DateTime)
	if err != nil {
		return time.Time{}, false
	}
	return start, true
}
