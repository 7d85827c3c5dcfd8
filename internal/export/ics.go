// Package export renders logged work sessions to an iCalendar file, so the log
// can be inspected or imported outside Google Calendar.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/Anoesj/google-calendar-logger/internal/session"

	"github.com/emersion/go-ical"
	"google.golang.org/api/calendar/v3"
)

// WriteSessions writes the concluded session events to w as a VCALENDAR.
// Events that are not sessions (no session id) or are still open are skipped;
// an export must never show an in-flight session as finished work.
func WriteSessions(w io.Writer, events []*calendar.Event) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//Google Calendar Logger//EN")

	count := 0
	for _, event := range events {
		if session.SessionID(event) == "" || session.IsOpen(event) {
			continue
		}

		vevent, err := sessionToVEvent(event)
		if err != nil {
			return fmt.Errorf("failed to convert event %s: %w", event.Id, err)
		}
		cal.Children = append(cal.Children, vevent)
		count++
	}

	if count == 0 {
		return fmt.Errorf("no concluded sessions to export")
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}

	return nil
}

// sessionToVEvent converts one concluded session event to a VEVENT component.
func sessionToVEvent(event *calendar.Event) (*ical.Component, error) {
	vevent := ical.NewComponent(ical.CompEvent)

	vevent.Props.SetText(ical.PropUID, session.SessionID(event))

	if event.Summary != "" {
		vevent.Props.SetText(ical.PropSummary, event.Summary)
	}
	if event.Description != "" {
		vevent.Props.SetText(ical.PropDescription, event.Description)
	}

	start, err := parseEventTime(event.Start)
	if err != nil {
		return nil, fmt.Errorf("bad start time: %w", err)
	}
	end, err := parseEventTime(event.End)
	if err != nil {
		return nil, fmt.Errorf("bad end time: %w", err)
	}

	vevent.Props.SetDateTime(ical.PropDateTimeStart, start)
	vevent.Props.SetDateTime(ical.PropDateTimeEnd, end)
	vevent.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())

	return vevent, nil
}

func parseEventTime(boundary *calendar.EventDateTime) (time.Time, error) {
	if boundary == nil || boundary.DateTime == "" {
		return time.Time{}, fmt.Errorf("missing dateTime")
	}
	return time.Parse(time.RFC3339, boundary.DateTime)
}
