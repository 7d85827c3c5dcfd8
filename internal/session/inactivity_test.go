package session

import (
	"errors"
	"testing"
	"time"

	"google.golang.org/api/calendar/v3"
)

func TestIsLapsed(t *testing.T) {
	lastModified := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	event := &calendar.Event{
		Created: lastModified.Add(-1 * time.Hour).Format(time.RFC3339),
		Updated: lastModified.Format(time.RFC3339),
	}
	threshold := 10 * time.Minute

	cases := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"immediately after", lastModified, false},
		{"just inside threshold", lastModified.Add(10 * time.Minute), false},
		{"just past threshold", lastModified.Add(10*time.Minute + time.Second), true},
		{"long after", lastModified.Add(2 * time.Hour), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lapsed, err := IsLapsed(event, tc.now, threshold)
			if err != nil {
				t.Fatalf("IsLapsed() returned an error: %v", err)
			}
			if lapsed != tc.want {
				t.Errorf("IsLapsed(now=%v) = %v, want %v", tc.now, lapsed, tc.want)
			}
		})
	}
}

func TestIsLapsed_Monotonic(t *testing.T) {
	lastModified := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	event := &calendar.Event{Updated: lastModified.Format(time.RFC3339)}
	threshold := 10 * time.Minute

	// Once lapsed, more elapsed time never flips the answer back
	seenLapsed := false
	for minutes := 0; minutes <= 60; minutes++ {
		lapsed, err := IsLapsed(event, lastModified.Add(time.Duration(minutes)*time.Minute), threshold)
		if err != nil {
			t.Fatalf("IsLapsed() returned an error at %d minutes: %v", minutes, err)
		}
		if seenLapsed && !lapsed {
			t.Fatalf("IsLapsed flipped back to false at %d minutes", minutes)
		}
		if lapsed {
			seenLapsed = true
		}
	}
	if !seenLapsed {
		t.Error("Expected the session to lapse within an hour")
	}
}

func TestIsLapsed_CreatedFallback(t *testing.T) {
	created := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	event := &calendar.Event{Created: created.Format(time.RFC3339)}

	lapsed, err := IsLapsed(event, created.Add(11*time.Minute), 10*time.Minute)
	if err != nil {
		t.Fatalf("IsLapsed() returned an error: %v", err)
	}
	if !lapsed {
		t.Error("Expected the creation time to be used when no modification occurred")
	}
}

func TestIsLapsed_MalformedTimestamp(t *testing.T) {
	event := &calendar.Event{Updated: "yesterday-ish"}

	_, err := IsLapsed(event, time.Now(), 10*time.Minute)
	if err == nil {
		t.Fatal("Expected an error for a malformed timestamp")
	}

	var malformed *MalformedTimestampError
	if !errors.As(err, &malformed) {
		t.Fatalf("Expected a MalformedTimestampError, got %T: %v", err, err)
	}

	if malformed.Field != "updated" {
		t.Errorf("Expected the 'updated' field to be reported, got '%s'", malformed.Field)
	}
}

func TestIsLapsed_MissingTimestamps(t *testing.T) {
	event := &calendar.Event{}

	_, err := IsLapsed(event, time.Now(), 10*time.Minute)
	var malformed *MalformedTimestampError
	if !errors.As(err, &malformed) {
		t.Fatalf("Expected a MalformedTimestampError for missing timestamps, got %v", err)
	}
}
