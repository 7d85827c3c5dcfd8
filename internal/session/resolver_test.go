package session

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"google.golang.org/api/calendar/v3"
)

func openEvent(id string, start time.Time) *calendar.Event {
	return &calendar.Event{
		Id: id,
		Start: &calendar.EventDateTime{
			DateTime: start.Format(time.RFC3339),
		},
		ExtendedProperties: openMarker("session-" + id),
	}
}

func closedEvent(id string, start time.Time) *calendar.Event {
	event := openEvent(id, start)
	event.ExtendedProperties.Private[propCompleted] = "true"
	return event
}

func TestFindOpenSession_None(t *testing.T) {
	now := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	store := newMockEventStore(func() time.Time { return now })
	store.events["cal"] = []*calendar.Event{
		closedEvent("a", now.Add(-2*time.Hour)),
		closedEvent("b", now.Add(-1*time.Hour)),
	}

	resolver := NewResolver(store, "cal", 14*24*time.Hour)
	resolver.Warnf = t.Logf

	_, err := resolver.FindOpenSession(now)
	if !errors.Is(err, ErrNoOpenSession) {
		t.Errorf("Expected ErrNoOpenSession, got %v", err)
	}
}

func TestFindOpenSession_Single(t *testing.T) {
	now := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	store := newMockEventStore(func() time.Time { return now })
	store.events["cal"] = []*calendar.Event{
		closedEvent("a", now.Add(-3*time.Hour)),
		openEvent("b", now.Add(-1*time.Hour)),
		closedEvent("c", now.Add(-2*time.Hour)),
	}

	resolver := NewResolver(store, "cal", 14*24*time.Hour)
	resolver.Warnf = t.Logf

	found, err := resolver.FindOpenSession(now)
	if err != nil {
		t.Fatalf("FindOpenSession() returned an error: %v", err)
	}

	if found.Id != "b" {
		t.Errorf("Expected event 'b', got '%s'", found.Id)
	}
}

func TestFindOpenSession_OutsideWindow(t *testing.T) {
	now := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	store := newMockEventStore(func() time.Time { return now })
	store.events["cal"] = []*calendar.Event{
		openEvent("old", now.Add(-15*24*time.Hour)),
	}

	resolver := NewResolver(store, "cal", 14*24*time.Hour)
	resolver.Warnf = t.Logf

	_, err := resolver.FindOpenSession(now)
	if !errors.Is(err, ErrNoOpenSession) {
		t.Errorf("Expected ErrNoOpenSession for an open event outside the window, got %v", err)
	}
}

func TestFindOpenSession_MultipleOpen(t *testing.T) {
	// Two open markers means a prior run crashed mid-rotation. The resolver
	// must not fail: it picks the latest start and reports the anomaly.
	now := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	store := newMockEventStore(func() time.Time { return now })
	store.events["cal"] = []*calendar.Event{
		openEvent("older", now.Add(-2*time.Hour)),
		openEvent("newer", now.Add(-30*time.Minute)),
	}

	resolver := NewResolver(store, "cal", 14*24*time.Hour)
	warnings := 0
	resolver.Warnf = func(format string, args ...any) {
		warnings++
		t.Logf(format, args...)
	}

	// Deterministic: repeated calls agree
	for i := 0; i < 3; i++ {
		found, err := resolver.FindOpenSession(now)
		if err != nil {
			t.Fatalf("FindOpenSession() returned an error on call %d: %v", i, err)
		}
		if found.Id != "newer" {
			t.Errorf("Expected the latest-started event 'newer' on call %d, got '%s'", i, found.Id)
		}
	}

	if warnings != 3 {
		t.Errorf("Expected a warning per call, got %d", warnings)
	}
}

func TestFindOpenSession_MultipleOpenEqualStarts(t *testing.T) {
	now := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	start := now.Add(-1 * time.Hour)
	store := newMockEventStore(func() time.Time { return now })
	store.events["cal"] = []*calendar.Event{
		openEvent("aaa", start),
		openEvent("zzz", start),
	}

	resolver := NewResolver(store, "cal", 14*24*time.Hour)
	resolver.Warnf = t.Logf

	found, err := resolver.FindOpenSession(now)
	if err != nil {
		t.Fatalf("FindOpenSession() returned an error: %v", err)
	}

	// Equal starts fall back to the greater event id
	if found.Id != "zzz" {
		t.Errorf("Expected 'zzz' to win the id tie-break, got '%s'", found.Id)
	}
}

func TestFindOpenSession_ListError(t *testing.T) {
	now := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	store := newMockEventStore(func() time.Time { return now })
	transportErr := fmt.Errorf("rate limited")
	store.listErr = transportErr

	resolver := NewResolver(store, "cal", 14*24*time.Hour)
	resolver.Warnf = t.Logf

	_, err := resolver.FindOpenSession(now)
	if !errors.Is(err, transportErr) {
		t.Errorf("Expected the transport error to propagate, got %v", err)
	}
	if errors.Is(err, ErrNoOpenSession) {
		t.Error("A transport failure must not be reported as ErrNoOpenSession")
	}
}
