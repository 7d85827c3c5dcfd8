package session

import (
	"strings"
	"time"

	"google.golang.org/api/calendar/v3"
)

// Session events are tagged through private extended properties. "completed" is
// the single source of truth for whether an event still represents the open
// session; "sessionId" is a client-assigned id that survives the event's lifetime.
const (
	propCompleted = "completed"
	propSessionID = "sessionId"
)

// activitySeparator joins the time prefix and the message in one log line.
const activitySeparator = " – "

// IsOpen reports whether the event carries an open session marker.
// Events without the marker (manually created, or foreign) are not sessions.
func IsOpen(event *calendar.Event) bool {
	if event.ExtendedProperties == nil || event.ExtendedProperties.Private == nil {
		return false
	}
	return event.ExtendedProperties.Private[propCompleted] == "false"
}

// SessionID returns the client-assigned session id of the event, or "" if the
// event was not created by this logger.
func SessionID(event *calendar.Event) string {
	if event.ExtendedProperties == nil || event.ExtendedProperties.Private == nil {
		return ""
	}
	return event.ExtendedProperties.Private[propSessionID]
}

// openMarker builds the extended properties for a freshly started session.
func openMarker(sessionID string) *calendar.EventExtendedProperties {
	return &calendar.EventExtendedProperties{
		Private: map[string]string{
			propCompleted: "false",
			propSessionID: sessionID,
		},
	}
}

// closedMarker builds the extended-properties patch that closes a session.
// Patch semantics merge private keys, so sessionId is left untouched.
func closedMarker() *calendar.EventExtendedProperties {
	return &calendar.EventExtendedProperties{
		Private: map[string]string{
			propCompleted: "true",
		},
	}
}

// AppendActivityLine appends one "HH:MM – message" line to the description log.
// The log is append-only; existing lines are never reordered or truncated.
func AppendActivityLine(description string, at time.Time, message string) string {
	line := at.Format("15:04") + activitySeparator + message
	if description == "" {
		return line
	}
	return description + "\n" + line
}

// LastActivityMessage parses the message back out of the log's last line.
// The second return value is false if the description holds no activity line.
func LastActivityMessage(description string) (string, bool) {
	if description == "" {
		return "", false
	}
	lines := strings.Split(description, "\n")
	last := lines[len(lines)-1]
	_, message, found := strings.Cut(last, activitySeparator)
	return message, found
}
