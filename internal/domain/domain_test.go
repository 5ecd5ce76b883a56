package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestStatus_Valid(t *testing.T) {
	for _, s := range []Status{StatusUp, StatusDown, StatusDegraded, StatusPaused, StatusMaintenance} {
		if !s.Valid() {
			t.Fatalf("%q should be valid", s)
		}
	}
	if Status("pending").Valid() {
		t.Fatalf("unknown status accepted")
	}
	if Status("").Valid() {
		t.Fatalf("empty status accepted")
	}
}

func TestMonitor_Eligible(t *testing.T) {
	m := Monitor{Status: StatusUp}
	if !m.Eligible() {
		t.Fatalf("active monitor should be eligible")
	}
	m.Paused = true
	if m.Eligible() {
		t.Fatalf("paused monitor should not be eligible")
	}
	m.Paused = false
	m.Status = StatusMaintenance
	if m.Eligible() {
		t.Fatalf("maintenance monitor should not be eligible")
	}
}

func TestMonitor_JSONRoundTrip(t *testing.T) {
	at := time.Date(2025, 8, 18, 12, 0, 0, 0, time.UTC)
	want := Monitor{
		ID:          uuid.New(),
		OrgID:       uuid.New(),
		Name:        "example",
		URL:         "https://example.com",
		IntervalSec: 60,
		TimeoutSec:  30,
		Status:      StatusUp,
		HTTPCode:    200,
		LastChecked: &at,
		CreatedAt:   at,
	}
	b, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got Monitor
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != want.ID || got.URL != want.URL || got.Status != want.Status ||
		got.HTTPCode != want.HTTPCode || !got.LastChecked.Equal(*want.LastChecked) {
		t.Fatalf("mismatch after round-trip:\nwant=%+v\ngot =%+v", want, got)
	}
	if got.Timeout() != 30*time.Second {
		t.Fatalf("timeout: want 30s, got %v", got.Timeout())
	}
}
