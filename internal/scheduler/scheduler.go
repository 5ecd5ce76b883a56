// Package scheduler drives the recurring check cadence. Each tick fetches
// the eligible monitors and runs one independent pipeline per monitor:
// probe -> evaluate -> record history -> update live status -> maybe alert.
// A hanging or failing pipeline never delays its siblings or the next tick.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pulseguard/pulseguard/internal/domain"
	"github.com/pulseguard/pulseguard/internal/probe"
	"github.com/pulseguard/pulseguard/internal/repo"
	"github.com/pulseguard/pulseguard/internal/status"
)

// AlertSink receives the alert produced by a down check.
type AlertSink interface {
	Emit(ctx context.Context, a *domain.Alert) error
}

type Scheduler struct {
	log      *zap.Logger
	registry repo.MonitorRegistry
	history  repo.HistoryStore
	alerts   AlertSink
	prober   probe.Prober

	interval    time.Duration
	concurrency int
}

func New(
	log *zap.Logger,
	registry repo.MonitorRegistry,
	history repo.HistoryStore,
	alerts AlertSink,
	prober probe.Prober,
	interval time.Duration,
	concurrency int,
) *Scheduler {
	if interval <= 0 {
		interval = 60 * time.Second
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Scheduler{
		log:         log,
		registry:    registry,
		history:     history,
		alerts:      alerts,
		prober:      prober,
		interval:    interval,
		concurrency: concurrency,
	}
}

// Run starts the loop. It does an immediate pass, then one pass per tick,
// and returns once ctx is cancelled and the in-flight pass has drained.
func (s *Scheduler) Run(ctx context.Context) {
	t := time.NewTicker(s.interval)
	defer t.Stop()

	s.log.Info("scheduler_started",
		zap.Duration("interval", s.interval),
		zap.Int("concurrency", s.concurrency),
	)

	s.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler_stopped")
			return
		case <-t.C:
			s.runOnce(ctx)
		}
	}
}

// runOnce executes one tick. A registry failure skips the whole tick; a
// large monitor set is drained through a bounded number of workers.
func (s *Scheduler) runOnce(ctx context.Context) {
	monitors, err := s.registry.ListEligible(ctx)
	if err != nil {
		s.log.Warn("tick_list_error", zap.Error(err))
		return
	}
	if len(monitors) == 0 {
		return
	}

	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup

	for i := range monitors {
		m := monitors[i]
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer func() { <-sem }()
			defer wg.Done()
			s.checkMonitor(ctx, &m)
		}()
	}

	wg.Wait()
}

// checkMonitor runs one monitor's full pipeline. Every persistence call is
// independently fallible: a failed write is logged and the pipeline moves
// on, so a broken history insert still leaves the live status updated and
// the alert emitted.
func (s *Scheduler) checkMonitor(ctx context.Context, m *domain.Monitor) {
	// An already-dispatched pipeline runs to completion even during
	// shutdown: the probe's own timeout is its only cancellation, and its
	// writes must not be lost to a cancelled loop context.
	ctx = context.WithoutCancel(ctx)

	out := s.prober.Probe(ctx, m.URL, m.Timeout())
	ev := status.Evaluate(m, out, time.Now().UTC())

	if !out.Completed() {
		// The probe already failed; a DNS diagnosis tells apart "host gone"
		// from "host up, service down" in the logs.
		diag := probe.DiagnoseDNS(m.URL)
		s.log.Info("probe_transport_failure",
			zap.String("monitor_id", m.ID.String()),
			zap.String("url", m.URL),
			zap.String("error", out.Err),
			zap.String("dns_class", string(diag.Class)),
		)
	}

	if err := s.history.RecordCheck(ctx, &ev.Result); err != nil {
		s.log.Warn("record_check_error",
			zap.String("monitor_id", m.ID.String()),
			zap.Error(err),
		)
	}

	err := s.registry.UpdateStatus(ctx, m.ID, repo.StatusUpdate{
		Status:         ev.Result.Status,
		ResponseTimeMS: ev.Result.ResponseTimeMS,
		HTTPCode:       ev.Result.HTTPCode,
		Reason:         ev.Reason,
		CheckedAt:      ev.Result.CheckedAt,
	})
	if err != nil {
		s.log.Warn("update_status_error",
			zap.String("monitor_id", m.ID.String()),
			zap.Error(err),
		)
	}

	if ev.Alert != nil {
		if err := s.alerts.Emit(ctx, ev.Alert); err != nil {
			s.log.Warn("emit_alert_error",
				zap.String("monitor_id", m.ID.String()),
				zap.Error(err),
			)
		}
	}

	s.log.Debug("monitor_checked",
		zap.String("monitor_id", m.ID.String()),
		zap.String("url", m.URL),
		zap.String("status", string(ev.Result.Status)),
		zap.Int("http_code", ev.Result.HTTPCode),
		zap.Int("response_time_ms", ev.Result.ResponseTimeMS),
	)
}
