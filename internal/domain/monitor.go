package domain

import (
	"time"

	"github.com/google/uuid"
)

// Status is the closed set of monitor states. Checks only ever resolve to
// up, down or degraded; paused and maintenance are set through the
// registry and exclude the monitor from probing.
type Status string

const (
	StatusUp          Status = "up"
	StatusDown        Status = "down"
	StatusDegraded    Status = "degraded"
	StatusPaused      Status = "paused"
	StatusMaintenance Status = "maintenance"
)

func (s Status) Valid() bool {
	switch s {
	case StatusUp, StatusDown, StatusDegraded, StatusPaused, StatusMaintenance:
		return true
	}
	return false
}

// Monitor is a configured endpoint under periodic observation. The check
// pipeline only ever mutates the live fields (Status, ResponseTimeMS,
// HTTPCode, LastChecked, DowntimeReason); everything else is owned by the
// registry.
type Monitor struct {
	ID             uuid.UUID  `json:"id"`
	OrgID          uuid.UUID  `json:"organization_id"`
	Name           string     `json:"name"`
	URL            string     `json:"url"`
	IntervalSec    int        `json:"interval"`
	TimeoutSec     int        `json:"timeout"`
	Paused         bool       `json:"is_paused"`
	Status         Status     `json:"status"`
	ResponseTimeMS int        `json:"response_time"`
	HTTPCode       int        `json:"http_code,omitempty"`
	LastChecked    *time.Time `json:"last_checked,omitempty"`
	DowntimeReason string     `json:"downtime_reason,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Timeout returns the per-probe deadline.
func (m *Monitor) Timeout() time.Duration {
	return time.Duration(m.TimeoutSec) * time.Second
}

// Eligible reports whether the monitor may be probed right now.
func (m *Monitor) Eligible() bool {
	return !m.Paused && m.Status != StatusMaintenance
}
