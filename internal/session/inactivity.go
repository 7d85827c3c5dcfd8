package session

import (
	"time"

	"google.golang.org/api/calendar/v3"
)

// lastActivity returns the server-assigned timestamp of the event's most recent
// modification, falling back to its creation time if it has never been modified.
func lastActivity(event *calendar.Event) (time.Time, error) {
	field, stamp := "updated", event.Updated
	if stamp == "" {
		field, stamp = "created", event.Created
	}

	parsed, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		return time.Time{}, &MalformedTimestampError{Field: field, Value: stamp, Err: err}
	}
	return parsed, nil
}

// IsLapsed reports whether the open session has gone quiet for longer than the
// inactivity threshold. Pure: no clock access, no remote calls. Malformed
// timestamps produce a MalformedTimestampError, never a default answer.
func IsLapsed(event *calendar.Event, now time.Time, threshold time.Duration) (bool, error) {
	last, err := lastActivity(event)
	if err != nil {
		return false, err
	}
	return now.Sub(last) > threshold, nil
}
