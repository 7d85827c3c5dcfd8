// Package calendar wraps the Google Calendar API behind the EventStore interface
// the session logger needs: find-or-create a calendar, list events in a time
// window, insert events, and patch events. Nothing here knows about sessions.
package calendar

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// EventStore is the remote event store consumed by the session logger. The Google
// client implements it; tests substitute an in-memory fake. ListEvents returns
// events in ascending start-time order only; the remote API offers no descending
// listing and no filtering on private properties, so callers scan windows.
type EventStore interface {
	FindOrCreateCalendarByName(name string, colorID string) (string, error)
	ListEvents(calendarID string, timeMin, timeMax time.Time) ([]*calendar.Event, error)
	InsertEvent(calendarID string, event *calendar.Event) (*calendar.Event, error)
	PatchEvent(calendarID, eventID string, patch *calendar.Event) (*calendar.Event, error)
}

// Client is a wrapper around the Google Calendar API service.
type Client struct {
	service *calendar.Service
}

// NewClient creates a new Google Calendar API client using the provided HTTP client.
func NewClient(ctx context.Context, httpClient *http.Client) (*Client, error) {
	service, err := calendar.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	return &Client{service: service}, nil
}

// FindOrCreateCalendarByName finds an existing calendar by name or creates a new one.
// Returns the calendar ID. Not safe against concurrent callers racing on creation;
// a race can produce duplicate calendars.
func (c *Client) FindOrCreateCalendarByName(name string, colorID string) (string, error) {
	calendarList, err := c.service.CalendarList.List().Do()
	if err != nil {
		return "", fmt.Errorf("failed to list calendars: %w", err)
	}

	for _, cal := range calendarList.Items {
		if cal.Summary == name {
			return cal.Id, nil
		}
	}

	// Calendar doesn't exist, create it
	newCalendar := &calendar.Calendar{
		Summary:     name,
		Description: "Work session log",
	}

	created, err := c.service.Calendars.Insert(newCalendar).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create calendar: %w", err)
	}

	// Set the color if provided
	if colorID != "" {
		_, err = c.service.CalendarList.Patch(created.Id, &calendar.CalendarListEntry{
			ColorId: colorID,
		}).Do()
		if err != nil {
			// Log but don't fail if color setting fails
			fmt.Printf("Warning: failed to set calendar color: %v\n", err)
		}
	}

	return created.Id, nil
}

// ListEvents retrieves events from a calendar within the specified time window,
// ascending by start time.
func (c *Client) ListEvents(calendarID string, timeMin, timeMax time.Time) ([]*calendar.Event, error) {
	eventsList, err := c.service.Events.List(calendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	return eventsList.Items, nil
}

// InsertEvent inserts a new event into a calendar and returns the created event
// with its server-assigned id and timestamps.
// Important: Sets sendUpdates="none" to prevent notifications.
func (c *Client) InsertEvent(calendarID string, event *calendar.Event) (*calendar.Event, error) {
	created, err := c.service.Events.Insert(calendarID, event).
		SendUpdates("none"). // Disable notifications
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to insert event: %w", err)
	}

	return created, nil
}

// PatchEvent applies a partial update to an existing event. Only the fields set on
// patch are changed; private extended properties merge key by key.
func (c *Client) PatchEvent(calendarID, eventID string, patch *calendar.Event) (*calendar.Event, error) {
	updated, err := c.service.Events.Patch(calendarID, eventID, patch).
		SendUpdates("none"). // Disable notifications
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to patch event: %w", err)
	}

	return updated, nil
}
