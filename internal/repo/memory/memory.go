package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pulseguard/pulseguard/internal/domain"
	"github.com/pulseguard/pulseguard/internal/repo"
)

// Store is the in-memory adapter for every port. Used when DATABASE_URL is
// empty and throughout the test suites.
type Store struct {
	mu       sync.RWMutex
	monitors map[uuid.UUID]*domain.Monitor
	history  []*domain.CheckResult
	alerts   []*domain.Alert
}

func New() *Store {
	return &Store{
		monitors: make(map[uuid.UUID]*domain.Monitor),
		history:  make([]*domain.CheckResult, 0, 128),
	}
}

// ---- MonitorRegistry ----

func (s *Store) Create(ctx context.Context, m *domain.Monitor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	cp := *m
	s.monitors[m.ID] = &cp
	return nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*domain.Monitor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.monitors[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *Store) List(ctx context.Context) ([]domain.Monitor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Monitor, 0, len(s.monitors))
	for _, m := range s.monitors {
		out = append(out, *m)
	}
	return out, nil
}

func (s *Store) ListEligible(ctx context.Context) ([]domain.Monitor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Monitor, 0, len(s.monitors))
	for _, m := range s.monitors {
		if m.Eligible() {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (s *Store) SetPaused(ctx context.Context, id uuid.UUID, paused bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.monitors[id]
	if !ok {
		return repo.ErrNotFound
	}
	m.Paused = paused
	if paused {
		m.Status = domain.StatusPaused
	}
	return nil
}

func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, up repo.StatusUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.monitors[id]
	if !ok {
		return repo.ErrNotFound
	}
	m.Status = up.Status
	m.ResponseTimeMS = up.ResponseTimeMS
	if up.HTTPCode != 0 {
		m.HTTPCode = up.HTTPCode
	}
	if up.Reason != "" {
		m.DowntimeReason = up.Reason
	}
	at := up.CheckedAt
	m.LastChecked = &at
	return nil
}

// ---- HistoryStore ----

func (s *Store) RecordCheck(ctx context.Context, r *domain.CheckResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.history = append(s.history, &cp)
	return nil
}

func (s *Store) RecentByMonitor(ctx context.Context, id uuid.UUID, limit int) ([]domain.CheckResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.CheckResult, 0, limit)
	for i := len(s.history) - 1; i >= 0 && len(out) < limit; i-- {
		if s.history[i].MonitorID == id {
			out = append(out, *s.history[i])
		}
	}
	return out, nil
}

func (s *Store) DeleteCheckedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.history[:0]
	var n int64
	for _, r := range s.history {
		if r.CheckedAt.Before(cutoff) {
			n++
			continue
		}
		kept = append(kept, r)
	}
	s.history = kept
	return n, nil
}

// ---- AlertStore ----

func (s *Store) Emit(ctx context.Context, a *domain.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	s.alerts = append(s.alerts, &cp)
	return nil
}

func (s *Store) Recent(ctx context.Context, limit int) ([]domain.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Alert, 0, limit)
	for i := len(s.alerts) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, *s.alerts[i])
	}
	return out, nil
}

func (s *Store) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.alerts[:0]
	var n int64
	for _, a := range s.alerts {
		if a.CreatedAt.Before(cutoff) {
			n++
			continue
		}
		kept = append(kept, a)
	}
	s.alerts = kept
	return n, nil
}
