package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pulseguard/pulseguard/internal/domain"
	"github.com/pulseguard/pulseguard/internal/repo/memory"
)

func TestCleanupOnce_DeletesOnlyExpiredRows(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	id := uuid.New()

	old := time.Now().UTC().Add(-100 * 24 * time.Hour)
	fresh := time.Now().UTC().Add(-time.Hour)

	for _, at := range []time.Time{old, fresh} {
		if err := store.RecordCheck(ctx, &domain.CheckResult{
			ID: uuid.New(), MonitorID: id, Status: domain.StatusUp, CheckedAt: at,
		}); err != nil {
			t.Fatal(err)
		}
		if err := store.Emit(ctx, &domain.Alert{
			MonitorID: id, Type: domain.AlertTypeDown,
			Severity: domain.SeverityCritical, Message: "x", CreatedAt: at,
		}); err != nil {
			t.Fatal(err)
		}
	}

	j := NewJanitor(zap.NewNop(), store, store, 90)
	j.CleanupOnce(ctx)

	checks, err := store.RecentByMonitor(ctx, id, 10)
	if err != nil || len(checks) != 1 {
		t.Fatalf("want 1 surviving check, got %d err=%v", len(checks), err)
	}
	if !checks[0].CheckedAt.Equal(fresh) {
		t.Fatalf("wrong row survived: %v", checks[0].CheckedAt)
	}

	alerts, err := store.Recent(ctx, 10)
	if err != nil || len(alerts) != 1 {
		t.Fatalf("want 1 surviving alert, got %d err=%v", len(alerts), err)
	}
}

type brokenHistory struct {
	*memory.Store
}

func (b *brokenHistory) DeleteCheckedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, errors.New("relation missing")
}

func TestCleanupOnce_HistoryFailureStillCleansAlerts(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	old := time.Now().UTC().Add(-100 * 24 * time.Hour)
	if err := store.Emit(ctx, &domain.Alert{
		MonitorID: uuid.New(), Type: domain.AlertTypeDown,
		Severity: domain.SeverityCritical, Message: "x", CreatedAt: old,
	}); err != nil {
		t.Fatal(err)
	}

	j := NewJanitor(zap.NewNop(), &brokenHistory{store}, store, 90)
	j.CleanupOnce(ctx)

	alerts, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(alerts) != 0 {
		t.Fatalf("alert cleanup must run despite history failure, %d rows left", len(alerts))
	}
}

func TestNewJanitor_RetentionFloor(t *testing.T) {
	j := NewJanitor(zap.NewNop(), memory.New(), memory.New(), 0)
	if j.retention != 90*24*time.Hour {
		t.Fatalf("want 90d default, got %v", j.retention)
	}
}
