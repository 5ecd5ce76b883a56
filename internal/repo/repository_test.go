package repo_test

import (
	"testing"

	"github.com/pulseguard/pulseguard/internal/repo"
	"github.com/pulseguard/pulseguard/internal/repo/memory"
	pg "github.com/pulseguard/pulseguard/internal/repo/postgres"
)

// Compile-time interface satisfaction checks.
// Using external test package avoids import cycle.
func TestInterfaceSatisfaction(t *testing.T) {
	var _ repo.MonitorRegistry = memory.New()
	var _ repo.HistoryStore = memory.New()
	var _ repo.AlertStore = memory.New()

	// Postgres store types compile against the ports, too.
	var _ repo.MonitorRegistry = (*pg.Store)(nil)
	var _ repo.HistoryStore = (*pg.Store)(nil)
	var _ repo.AlertStore = (*pg.Store)(nil)
}
