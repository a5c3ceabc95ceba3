package registry

import (
	"context"
	"testing"
	"time"

	"github.com/kbukum/servicehub/config"
	"github.com/kbukum/servicehub/observability"
)

func newTestMonitor(t *testing.T, s *Store, threshold time.Duration) *Monitor {
	t.Helper()
	metrics, err := observability.NewMetrics(observability.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics failed: %v", err)
	}
	return NewMonitor(s, config.MonitorConfig{
		Interval:           time.Hour, // background loop irrelevant to these tests
		StalenessThreshold: threshold,
	}, metrics)
}

func TestMonitor_Sweep_DemotesStale(t *testing.T) {
	s := NewStore()
	base := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	s.now = func() time.Time { return base.Add(-6 * time.Minute) }
	stale, _ := s.Register(sampleRegister("billing"))
	s.now = func() time.Time { return base }

	m := newTestMonitor(t, s, 5*time.Minute)
	report := m.Sweep(context.Background())

	if report.Count != 1 {
		t.Fatalf("expected 1 demotion, got %d", report.Count)
	}
	if report.Stale[0].ID != stale.ID || report.Stale[0].Name != "billing" {
		t.Errorf("unexpected stale entry %+v", report.Stale[0])
	}
	if report.CheckedAt.IsZero() {
		t.Error("checked_at must be set")
	}
}

func TestMonitor_Sweep_Idempotent(t *testing.T) {
	s := NewStore()
	base := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base.Add(-6 * time.Minute) }
	s.Register(sampleRegister("billing"))
	s.now = func() time.Time { return base }

	m := newTestMonitor(t, s, 5*time.Minute)
	if first := m.Sweep(context.Background()); first.Count != 1 {
		t.Fatalf("first sweep: expected 1 demotion, got %d", first.Count)
	}
	second := m.Sweep(context.Background())
	if second.Count != 0 {
		t.Errorf("second sweep must demote nothing, got %d", second.Count)
	}
	if second.Stale == nil {
		t.Error("stale list must be empty, not nil")
	}
}

func TestMonitor_Sweep_FreshHeartbeatSurvives(t *testing.T) {
	s := NewStore()
	base := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	s.now = func() time.Time { return base.Add(-6 * time.Minute) }
	svc, _ := s.Register(sampleRegister("billing"))

	s.now = func() time.Time { return base }
	if _, err := s.Heartbeat(HeartbeatRequest{ServiceID: svc.ID}); err != nil {
		t.Fatal(err)
	}

	m := newTestMonitor(t, s, 5*time.Minute)
	if report := m.Sweep(context.Background()); report.Count != 0 {
		t.Errorf("heartbeated record must survive the sweep, got %d demotions", report.Count)
	}
}

func TestMonitor_StartStop(t *testing.T) {
	s := NewStore()
	m := newTestMonitor(t, s, 5*time.Minute)

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := m.Stop(ctx); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
}
