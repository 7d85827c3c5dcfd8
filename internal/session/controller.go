// Package session implements the work-session state machine on top of a remote
// calendar: one "incomplete" event per session, extended on activity, closed on
// end or after an inactivity lapse.
package session

import (
	"context"
	"fmt"
	"log"
	"time"

	calclient "github.com/Anoesj/google-calendar-logger/internal/calendar"
	"github.com/Anoesj/google-calendar-logger/internal/config"

	"github.com/google/uuid"
	"google.golang.org/api/calendar/v3"
)

// Controller orchestrates the three public operations (Start, ReportActivity,
// End) against one calendar. It holds no state between operations beyond the
// resolved calendar id; the remote store owns all event state, and other writers
// may change it between calls.
//
// Controllers are not safe for concurrent use, and two processes sharing one
// calendar can violate the single-open-session invariant; callers must serialize
// access themselves.
type Controller struct {
	store      calclient.EventStore
	resolver   *Resolver
	cfg        *config.Config
	calendarID string
	threshold  time.Duration

	// now is the clock; tests substitute a fixed one.
	now func() time.Time
}

// NewController creates a Controller for the given, already resolved calendar.
func NewController(store calclient.EventStore, cfg *config.Config, calendarID string) *Controller {
	return &Controller{
		store:      store,
		resolver:   NewResolver(store, calendarID, time.Duration(cfg.LookbackDays)*24*time.Hour),
		cfg:        cfg,
		calendarID: calendarID,
		threshold:  time.Duration(cfg.ThresholdMinutes) * time.Minute,
		now:        time.Now,
	}
}

// Start opens a new session: a fresh event with an open marker, a one-second
// placeholder duration, and the started-message as the first log line.
//
// Start deliberately does not look for an existing open session; callers are
// expected to invoke it only when none is open. Calling it anyway leaves two
// open events, which FindOpenSession later recovers from deterministically.
func (c *Controller) Start(ctx context.Context) (*calendar.Event, error) {
	return c.startAt(c.now())
}

func (c *Controller) startAt(now time.Time) (*calendar.Event, error) {
	started := renderMessage(c.cfg.Messages.Started, c.cfg.CalendarName)

	draft := &calendar.Event{
		Summary:            renderMessage(c.cfg.Messages.OpenSummary, c.cfg.CalendarName),
		Description:        AppendActivityLine("", now, started),
		Start:              c.eventTime(now),
		End:                c.eventTime(now.Add(1 * time.Second)),
		ExtendedProperties: openMarker(uuid.NewString()),
	}

	created, err := c.store.InsertEvent(c.calendarID, draft)
	if err != nil {
		return nil, fmt.Errorf("failed to create session event: %w", err)
	}

	c.logLink("Started session", created)
	return created, nil
}

// ReportActivity records one activity message against the open session,
// extending its end time to now. If the session has lapsed, the stale session is
// closed first, a fresh one is started, and the activity is recorded against the
// fresh session — three strictly sequential remote calls, so the activity is
// never lost across the session boundary and no two open events coexist.
//
// Returns ErrNoOpenSession if nothing is open in the lookback window.
func (c *Controller) ReportActivity(ctx context.Context, message string) (*calendar.Event, error) {
	now := c.now()

	open, err := c.resolver.FindOpenSession(now)
	if err != nil {
		return nil, err
	}

	lapsed, err := IsLapsed(open, now, c.threshold)
	if err != nil {
		return nil, err
	}

	if !lapsed {
		return c.recordActivity(open, now, message)
	}

	// Close must fully resolve before Start is issued: Start's correctness
	// precondition is that no other open session exists. If Start fails after
	// the close succeeded, no session is open and the next call reports
	// ErrNoOpenSession; no rollback is attempted.
	inactivity := renderMessage(c.cfg.Messages.Inactivity, c.cfg.CalendarName)
	if _, err := c.closeSession(open, now, inactivity, false); err != nil {
		return nil, err
	}

	fresh, err := c.startAt(now)
	if err != nil {
		return nil, err
	}

	// The fresh session cannot itself be lapsed, so this terminates.
	return c.recordActivity(fresh, now, message)
}

// End concludes the open session. A lapsed session is closed with the inactivity
// notice and keeps its last extent; an active one is closed normally, with its
// end extended to now and the concluded message appended.
//
// Returns ErrNoOpenSession if nothing is open in the lookback window.
func (c *Controller) End(ctx context.Context) (*calendar.Event, error) {
	now := c.now()

	open, err := c.resolver.FindOpenSession(now)
	if err != nil {
		return nil, err
	}

	lapsed, err := IsLapsed(open, now, c.threshold)
	if err != nil {
		return nil, err
	}

	if lapsed {
		inactivity := renderMessage(c.cfg.Messages.Inactivity, c.cfg.CalendarName)
		return c.closeSession(open, now, inactivity, false)
	}

	concluded := renderMessage(c.cfg.Messages.Concluded, c.cfg.CalendarName)
	return c.closeSession(open, now, concluded, true)
}

// recordActivity patches the open event: end extended to now, one log line
// appended, marker left open.
func (c *Controller) recordActivity(open *calendar.Event, now time.Time, message string) (*calendar.Event, error) {
	patch := &calendar.Event{
		Description: AppendActivityLine(open.Description, now, message),
		End:         c.eventTime(now),
	}

	updated, err := c.store.PatchEvent(c.calendarID, open.Id, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to record activity: %w", err)
	}

	c.logLink("Recorded activity", updated)
	return updated, nil
}

// closeSession patches the event closed: marker set, final line appended,
// summary switched to the concluded form. extendEnd moves the end time to now;
// lapse closes leave the end where the last activity put it.
func (c *Controller) closeSession(open *calendar.Event, now time.Time, finalMessage string, extendEnd bool) (*calendar.Event, error) {
	patch := &calendar.Event{
		Summary:            renderMessage(c.cfg.Messages.ClosedSummary, c.cfg.CalendarName),
		Description:        AppendActivityLine(open.Description, now, finalMessage),
		ExtendedProperties: closedMarker(),
	}
	if extendEnd {
		patch.End = c.eventTime(now)
	}

	updated, err := c.store.PatchEvent(c.calendarID, open.Id, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to close session: %w", err)
	}

	c.logLink("Closed session", updated)
	return updated, nil
}

// eventTime renders a point in time as an event boundary.
func (c *Controller) eventTime(t time.Time) *calendar.EventDateTime {
	return &calendar.EventDateTime{
		DateTime: t.Format(time.RFC3339),
		TimeZone: c.cfg.TimeZone,
	}
}

// logLink prints the event link when verbose output is enabled.
func (c *Controller) logLink(action string, event *calendar.Event) {
	if c.cfg.Verbose && event.HtmlLink != "" {
		log.Printf("%s: %s", action, event.HtmlLink)
	}
}
