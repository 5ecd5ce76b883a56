package domain

import (
	"time"

	"github.com/google/uuid"
)

// CheckResult is the classified outcome of one probe. HTTPCode is 0 when
// the request never completed (transport failure), and ResponseTimeMS is 0
// in that case too.
type CheckResult struct {
	ID             uuid.UUID `json:"id"`
	MonitorID      uuid.UUID `json:"monitor_id"`
	Status         Status    `json:"status"`
	ResponseTimeMS int       `json:"response_time"`
	HTTPCode       int       `json:"http_code,omitempty"`
	CheckedAt      time.Time `json:"checked_at"`
}

const (
	AlertTypeDown    = "down"
	SeverityCritical = "critical"
)

// Alert is one row appended when a check resolves to down. There is no
// suppression window: an outage produces one alert per failing check.
type Alert struct {
	ID        uuid.UUID `json:"id"`
	MonitorID uuid.UUID `json:"monitor_id"`
	OrgID     uuid.UUID `json:"organization_id"`
	Type      string    `json:"type"`
	Severity  string    `json:"severity"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
