// Package alerting persists alert rows and mirrors them to chat notifiers.
package alerting

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pulseguard/pulseguard/internal/domain"
	"github.com/pulseguard/pulseguard/internal/notify"
	"github.com/pulseguard/pulseguard/internal/repo"
)

type Emitter struct {
	log      *zap.Logger
	store    repo.AlertStore
	notifier notify.Notifier
}

// NewEmitter wires the alert store with an optional notifier (nil disables
// mirroring).
func NewEmitter(log *zap.Logger, store repo.AlertStore, notifier notify.Notifier) *Emitter {
	return &Emitter{log: log, store: store, notifier: notifier}
}

// Emit appends the alert row. The row is the contract with downstream
// consumers; a notifier failure is logged and swallowed.
func (e *Emitter) Emit(ctx context.Context, a *domain.Alert) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	if err := e.store.Emit(ctx, a); err != nil {
		return err
	}

	if e.notifier != nil {
		title := "🔴 Monitor DOWN"
		text := fmt.Sprintf("Monitor: %s\nSeverity: %s\n%s", a.MonitorID, a.Severity, a.Message)
		if err := e.notifier.Send(ctx, title, text); err != nil {
			e.log.Warn("alert_notify_error",
				zap.String("monitor_id", a.MonitorID.String()),
				zap.Error(err),
			)
		}
	}
	return nil
}
