package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/pulseguard/pulseguard/internal/domain"
)

// ErrNotFound is returned by every adapter when a monitor id is unknown.
var ErrNotFound = errors.New("monitor not found")

// Ports. The scheduler and API only ever see these; swap in any DB
// adapter behind them.

// StatusUpdate overwrites a monitor's live fields after a check. HTTPCode 0
// leaves the stored code untouched (transport failures obtain no code), and
// an empty Reason leaves the stored downtime reason untouched.
type StatusUpdate struct {
	Status         domain.Status
	ResponseTimeMS int
	HTTPCode       int
	Reason         string
	CheckedAt      time.Time
}

// MonitorRegistry holds monitor definitions and their live status fields.
type MonitorRegistry interface {
	Create(ctx context.Context, m *domain.Monitor) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Monitor, error)
	List(ctx context.Context) ([]domain.Monitor, error)
	// ListEligible returns monitors with paused=false and status != maintenance.
	ListEligible(ctx context.Context) ([]domain.Monitor, error)
	SetPaused(ctx context.Context, id uuid.UUID, paused bool) error
	UpdateStatus(ctx context.Context, id uuid.UUID, up StatusUpdate) error
}

// HistoryStore is the append-only check history.
type HistoryStore interface {
	RecordCheck(ctx context.Context, r *domain.CheckResult) error
	RecentByMonitor(ctx context.Context, id uuid.UUID, limit int) ([]domain.CheckResult, error)
	DeleteCheckedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// AlertStore is the append-only alert log.
type AlertStore interface {
	Emit(ctx context.Context, a *domain.Alert) error
	Recent(ctx context.Context, limit int) ([]domain.Alert, error)
	DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
