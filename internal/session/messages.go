package session

import "strings"

// calendarPlaceholder is substituted with the calendar title in every
// configurable message string.
const calendarPlaceholder = "{calendar}"

// renderMessage substitutes the calendar title into a message template. Pure;
// templates without the placeholder pass through unchanged.
func renderMessage(template, calendarTitle string) string {
	return strings.ReplaceAll(template, calendarPlaceholder, calendarTitle)
}
