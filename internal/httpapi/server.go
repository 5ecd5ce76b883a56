package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pulseguard/pulseguard/internal/domain"
	"github.com/pulseguard/pulseguard/internal/httpapi/middleware"
	"github.com/pulseguard/pulseguard/internal/probe"
	"github.com/pulseguard/pulseguard/internal/repo"
	"github.com/pulseguard/pulseguard/internal/status"
)

// Server is the thin ops surface over the registry and stores. The check
// engine itself has no API; this exists so operators and the dashboard can
// manage monitors and read what the engine persisted.
type Server struct {
	Logger   *zap.Logger
	Registry repo.MonitorRegistry
	History  repo.HistoryStore
	Alerts   repo.AlertStore
	Prober   probe.Prober

	DefaultTimeoutSec int
}

func NewServer(l *zap.Logger, reg repo.MonitorRegistry, hs repo.HistoryStore, as repo.AlertStore, p probe.Prober, defaultTimeoutSec int) *Server {
	if defaultTimeoutSec <= 0 {
		defaultTimeoutSec = 30
	}
	return &Server{
		Logger:            l,
		Registry:          reg,
		History:           hs,
		Alerts:            as,
		Prober:            p,
		DefaultTimeoutSec: defaultTimeoutSec,
	}
}

func (s *Server) Router(keys middleware.Keys, rpm, burst int) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)
	r.Use(middleware.RateLimit(rpm, burst))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAny(keys))
		r.Get("/api/monitors", s.handleListMonitors)
		r.Get("/api/monitors/{id}", s.handleGetMonitor)
		r.Get("/api/monitors/{id}/history", s.handleMonitorHistory)
		r.Get("/api/alerts", s.handleListAlerts)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin(keys))
		r.Post("/api/monitors", s.handleCreateMonitor)
		r.Post("/api/monitors/{id}/pause", s.handleSetPaused(true))
		r.Post("/api/monitors/{id}/resume", s.handleSetPaused(false))
	})

	return r
}

type createPayload struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	OrgID       string `json:"organization_id"`
	IntervalSec int    `json:"interval"`
	TimeoutSec  int    `json:"timeout"`
}

func (s *Server) handleCreateMonitor(w http.ResponseWriter, r *http.Request) {
	var p createPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "bad payload")
		return
	}
	p.URL = normalizeHTTPURL(p.URL)
	if !isValidHTTPURL(p.URL) {
		writeError(w, http.StatusBadRequest, "invalid url")
		return
	}

	orgID := uuid.Nil
	if p.OrgID != "" {
		var err error
		if orgID, err = uuid.Parse(p.OrgID); err != nil {
			writeError(w, http.StatusBadRequest, "invalid organization_id")
			return
		}
	}
	if p.IntervalSec <= 0 {
		p.IntervalSec = 60
	}
	if p.TimeoutSec <= 0 {
		p.TimeoutSec = s.DefaultTimeoutSec
	}
	if p.Name == "" {
		p.Name = p.URL
	}

	m := &domain.Monitor{
		OrgID:       orgID,
		Name:        p.Name,
		URL:         p.URL,
		IntervalSec: p.IntervalSec,
		TimeoutSec:  p.TimeoutSec,
		Status:      domain.StatusUp,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.Registry.Create(r.Context(), m); err != nil {
		writeError(w, http.StatusInternalServerError, "could not create monitor")
		return
	}

	// One synchronous check for immediate feedback; the scheduler takes
	// over from the next tick.
	out := s.Prober.Probe(r.Context(), m.URL, m.Timeout())
	ev := status.Evaluate(m, out, time.Now().UTC())
	_ = s.History.RecordCheck(r.Context(), &ev.Result)
	_ = s.Registry.UpdateStatus(r.Context(), m.ID, repo.StatusUpdate{
		Status:         ev.Result.Status,
		ResponseTimeMS: ev.Result.ResponseTimeMS,
		HTTPCode:       ev.Result.HTTPCode,
		Reason:         ev.Reason,
		CheckedAt:      ev.Result.CheckedAt,
	})
	m.Status = ev.Result.Status
	m.ResponseTimeMS = ev.Result.ResponseTimeMS
	if ev.Result.HTTPCode != 0 {
		m.HTTPCode = ev.Result.HTTPCode
	}

	s.Logger.Info("monitor_created",
		zap.String("monitor_id", m.ID.String()),
		zap.String("url", m.URL),
		zap.String("status", string(ev.Result.Status)),
	)

	writeJSON(w, http.StatusCreated, map[string]any{
		"monitor": m,
		"result":  ev.Result,
	})
}

func (s *Server) handleListMonitors(w http.ResponseWriter, r *http.Request) {
	ms, err := s.Registry.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list error")
		return
	}
	writeJSON(w, http.StatusOK, ms)
}

func (s *Server) handleGetMonitor(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	m, err := s.Registry.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			writeError(w, http.StatusNotFound, "monitor not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "get error")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleMonitorHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	limit := queryLimit(r, 100)
	rows, err := s.History.RecentByMonitor(r.Context(), id, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "history error")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r, 50)
	rows, err := s.Alerts.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "alerts error")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleSetPaused(paused bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		if err := s.Registry.SetPaused(r.Context(), id, paused); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				writeError(w, http.StatusNotFound, "monitor not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "update error")
			return
		}
		s.Logger.Info("monitor_paused_changed",
			zap.String("monitor_id", id.String()),
			zap.Bool("paused", paused),
		)
		writeJSON(w, http.StatusOK, map[string]any{"id": id, "is_paused": paused})
	}
}

// ---- helpers ----

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid monitor id")
		return uuid.Nil, false
	}
	return id, true
}

func queryLimit(r *http.Request, fallback int) int {
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
			return n
		}
	}
	return fallback
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func isValidHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Hostname() != ""
}

// normalizeHTTPURL lowercases the host, drops default ports and a bare
// trailing slash so the same endpoint is always keyed the same way.
func normalizeHTTPURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	u.Host = strings.ToLower(u.Host)
	if (u.Scheme == "http" && strings.HasSuffix(u.Host, ":80")) ||
		(u.Scheme == "https" && strings.HasSuffix(u.Host, ":443")) {
		u.Host = u.Hostname()
	}
	if u.Path == "/" {
		u.Path = ""
	}
	return u.String()
}
