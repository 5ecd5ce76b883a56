// Package status maps raw probe outcomes onto monitor statuses and decides
// alerting. The classification table is load-bearing: dashboards, alert
// rows and the monitors' live fields all derive from it, so it lives in
// exactly one place.
package status

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pulseguard/pulseguard/internal/domain"
	"github.com/pulseguard/pulseguard/internal/probe"
)

// Classify maps an HTTP status code to a monitor status:
//
//	[200,400) -> up
//	[400,500) -> degraded
//	>= 500    -> down
//	< 200     -> degraded (informational codes are a response, but not a
//	             healthy one; same bucket as client errors)
func Classify(code int) domain.Status {
	switch {
	case code >= 200 && code < 400:
		return domain.StatusUp
	case code >= 500:
		return domain.StatusDown
	default:
		return domain.StatusDegraded
	}
}

// Evaluation is everything one probe outcome resolves to: the history row
// to record, and the alert to emit when the monitor is down.
type Evaluation struct {
	Result domain.CheckResult
	Alert  *domain.Alert
	Reason string // failure reason for the monitor's live fields, "" unless transport failure
}

// Evaluate classifies a probe outcome for a monitor. A transport failure is
// down with response time 0 and the error text as the failure reason; a
// completed probe is classified by code. An alert is produced iff the
// resulting status is down.
func Evaluate(m *domain.Monitor, out probe.Outcome, at time.Time) Evaluation {
	ev := Evaluation{
		Result: domain.CheckResult{
			ID:        uuid.New(),
			MonitorID: m.ID,
			CheckedAt: at,
		},
	}

	if !out.Completed() {
		ev.Result.Status = domain.StatusDown
		ev.Reason = out.Err
		ev.Alert = newAlert(m, out.Err)
		return ev
	}

	ev.Result.Status = Classify(out.StatusCode)
	ev.Result.HTTPCode = out.StatusCode
	ev.Result.ResponseTimeMS = out.LatencyMS
	if ev.Result.Status == domain.StatusDown {
		ev.Alert = newAlert(m, fmt.Sprintf("Server returned %d", out.StatusCode))
	}
	return ev
}

func newAlert(m *domain.Monitor, message string) *domain.Alert {
	return &domain.Alert{
		ID:        uuid.New(),
		MonitorID: m.ID,
		OrgID:     m.OrgID,
		Type:      domain.AlertTypeDown,
		Severity:  domain.SeverityCritical,
		Message:   message,
	}
}
