package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/pulseguard/pulseguard/internal/domain"
	"github.com/pulseguard/pulseguard/internal/repo"
)

var _ repo.MonitorRegistry = (*Store)(nil)
var _ repo.HistoryStore = (*Store)(nil)
var _ repo.AlertStore = (*Store)(nil)

type Store struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

func New(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Store{pool: pool, log: log}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// ---- MonitorRegistry ----

func (s *Store) Create(ctx context.Context, m *domain.Monitor) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if m.Status == "" {
		m.Status = domain.StatusUp
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO monitors
		   (id, organization_id, name, url, interval_sec, timeout_sec, is_paused, status, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		m.ID, m.OrgID, m.Name, m.URL, m.IntervalSec, m.TimeoutSec, m.Paused, string(m.Status), m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert monitor: %w", err)
	}
	return nil
}

const monitorColumns = `id, organization_id, name, url, interval_sec, timeout_sec, is_paused,
       status, response_time_ms, http_code, last_checked, downtime_reason, created_at`

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*domain.Monitor, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+monitorColumns+` FROM monitors WHERE id = $1`, id)
	m, err := scanMonitor(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get monitor: %w", err)
	}
	return m, nil
}

func (s *Store) List(ctx context.Context) ([]domain.Monitor, error) {
	return s.queryMonitors(ctx,
		`SELECT `+monitorColumns+` FROM monitors ORDER BY created_at DESC, id DESC`)
}

func (s *Store) ListEligible(ctx context.Context) ([]domain.Monitor, error) {
	return s.queryMonitors(ctx,
		`SELECT `+monitorColumns+` FROM monitors
		  WHERE is_paused = false AND status <> 'maintenance'`)
}

func (s *Store) queryMonitors(ctx context.Context, sql string, args ...any) ([]domain.Monitor, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list monitors: %w", err)
	}
	defer rows.Close()

	var out []domain.Monitor
	for rows.Next() {
		m, err := scanMonitor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan monitor: %w", err)
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func scanMonitor(row pgx.Row) (*domain.Monitor, error) {
	var (
		m       domain.Monitor
		status  string
		rt      *int
		code    *int
		checked *time.Time
		reason  *string
	)
	err := row.Scan(&m.ID, &m.OrgID, &m.Name, &m.URL, &m.IntervalSec, &m.TimeoutSec,
		&m.Paused, &status, &rt, &code, &checked, &reason, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	m.Status = domain.Status(status)
	if rt != nil {
		m.ResponseTimeMS = *rt
	}
	if code != nil {
		m.HTTPCode = *code
	}
	m.LastChecked = checked
	if reason != nil {
		m.DowntimeReason = *reason
	}
	return &m, nil
}

func (s *Store) SetPaused(ctx context.Context, id uuid.UUID, paused bool) error {
	var (
		tag pgconn.CommandTag
		err error
	)
	if paused {
		tag, err = s.pool.Exec(ctx,
			`UPDATE monitors SET is_paused = true, status = 'paused' WHERE id = $1`, id)
	} else {
		tag, err = s.pool.Exec(ctx,
			`UPDATE monitors SET is_paused = false WHERE id = $1`, id)
	}
	if err != nil {
		return fmt.Errorf("set paused: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, up repo.StatusUpdate) error {
	// http_code and downtime_reason keep their previous values when the
	// update carries none; COALESCE over NULL args does that in one statement.
	var codePtr *int
	if up.HTTPCode != 0 {
		codePtr = &up.HTTPCode
	}
	var reasonPtr *string
	if up.Reason != "" {
		reasonPtr = &up.Reason
	}
	_, err := s.pool.Exec(ctx,
		`UPDATE monitors
		    SET status = $1,
		        response_time_ms = $2,
		        http_code = COALESCE($3, http_code),
		        downtime_reason = COALESCE($4, downtime_reason),
		        last_checked = $5
		  WHERE id = $6`,
		string(up.Status), up.ResponseTimeMS, codePtr, reasonPtr, up.CheckedAt, id,
	)
	if err != nil {
		return fmt.Errorf("update monitor status: %w", err)
	}
	return nil
}

// ---- HistoryStore ----

func (s *Store) RecordCheck(ctx context.Context, r *domain.CheckResult) error {
	var codePtr *int
	if r.HTTPCode != 0 {
		codePtr = &r.HTTPCode
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO response_history (id, monitor_id, response_time_ms, status, http_code, checked_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		r.ID, r.MonitorID, r.ResponseTimeMS, string(r.Status), codePtr, r.CheckedAt,
	)
	if err != nil {
		return fmt.Errorf("insert check: %w", err)
	}
	return nil
}

func (s *Store) RecentByMonitor(ctx context.Context, id uuid.UUID, limit int) ([]domain.CheckResult, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, monitor_id, response_time_ms, status, http_code, checked_at
		   FROM response_history
		  WHERE monitor_id = $1
		  ORDER BY checked_at DESC
		  LIMIT $2`, id, limit)
	if err != nil {
		return nil, fmt.Errorf("recent checks: %w", err)
	}
	defer rows.Close()

	var out []domain.CheckResult
	for rows.Next() {
		var (
			r      domain.CheckResult
			status string
			code   *int
		)
		if err := rows.Scan(&r.ID, &r.MonitorID, &r.ResponseTimeMS, &status, &code, &r.CheckedAt); err != nil {
			return nil, fmt.Errorf("scan check: %w", err)
		}
		r.Status = domain.Status(status)
		if code != nil {
			r.HTTPCode = *code
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) DeleteCheckedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM response_history WHERE checked_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete history: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ---- AlertStore ----

func (s *Store) Emit(ctx context.Context, a *domain.Alert) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO alerts (id, monitor_id, organization_id, type, severity, message, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		a.ID, a.MonitorID, a.OrgID, a.Type, a.Severity, a.Message, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

func (s *Store) Recent(ctx context.Context, limit int) ([]domain.Alert, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, monitor_id, organization_id, type, severity, message, created_at
		   FROM alerts
		  ORDER BY created_at DESC
		  LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent alerts: %w", err)
	}
	defer rows.Close()

	var out []domain.Alert
	for rows.Next() {
		var a domain.Alert
		if err := rows.Scan(&a.ID, &a.MonitorID, &a.OrgID, &a.Type, &a.Severity, &a.Message, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM alerts WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete alerts: %w", err)
	}
	return tag.RowsAffected(), nil
}
