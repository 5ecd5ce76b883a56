// Package jobs holds the housekeeping cron: retention cleanup for check
// history and alert rows. Kept apart from the check scheduler; these run
// daily, not per tick.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/pulseguard/pulseguard/internal/repo"
)

type Janitor struct {
	cron      *cron.Cron
	log       *zap.Logger
	history   repo.HistoryStore
	alerts    repo.AlertStore
	retention time.Duration
}

func NewJanitor(log *zap.Logger, history repo.HistoryStore, alerts repo.AlertStore, retentionDays int) *Janitor {
	if retentionDays < 1 {
		retentionDays = 90
	}
	return &Janitor{
		cron:      cron.New(),
		log:       log,
		history:   history,
		alerts:    alerts,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
	}
}

// Start schedules the cleanup passes. Daily at 03:14, off the busy hours.
func (j *Janitor) Start() error {
	_, err := j.cron.AddFunc("14 3 * * *", func() {
		j.CleanupOnce(context.Background())
	})
	if err != nil {
		return fmt.Errorf("schedule cleanup: %w", err)
	}
	j.cron.Start()
	j.log.Info("janitor_started", zap.Duration("retention", j.retention))
	return nil
}

// Stop halts the cron and waits for a running job to finish.
func (j *Janitor) Stop() {
	<-j.cron.Stop().Done()
	j.log.Info("janitor_stopped")
}

// CleanupOnce deletes history and alert rows older than the retention
// window. The two deletes are independent; one failing does not stop the
// other.
func (j *Janitor) CleanupOnce(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-j.retention)

	if n, err := j.history.DeleteCheckedBefore(ctx, cutoff); err != nil {
		j.log.Warn("history_cleanup_error", zap.Error(err))
	} else if n > 0 {
		j.log.Info("history_cleaned", zap.Int64("rows", n))
	}

	if n, err := j.alerts.DeleteCreatedBefore(ctx, cutoff); err != nil {
		j.log.Warn("alert_cleanup_error", zap.Error(err))
	} else if n > 0 {
		j.log.Info("alerts_cleaned", zap.Int64("rows", n))
	}
}
