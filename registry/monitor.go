package registry

import (
	"context"
	"time"

	"github.com/kbukum/servicehub/component"
	"github.com/kbukum/servicehub/config"
	"github.com/kbukum/servicehub/logger"
	"github.com/kbukum/servicehub/observability"
)

// StaleService identifies a record demoted by a liveness sweep.
type StaleService struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SweepReport summarizes one liveness sweep.
type SweepReport struct {
	CheckedAt time.Time      `json:"checked_at"`
	Count     int            `json:"stale_services_count"`
	Stale     []StaleService `json:"stale_services"`
}

// Monitor periodically demotes services whose heartbeats have gone stale.
// It implements component.Component; sweeps also run on demand through the
// registry health endpoint.
type Monitor struct {
	store     *Store
	interval  time.Duration
	threshold time.Duration
	log       *logger.Logger
	metrics   *observability.Metrics

	cancel context.CancelFunc
	done   chan struct{}
}

// NewMonitor creates a liveness monitor over the given store.
func NewMonitor(store *Store, cfg config.MonitorConfig, metrics *observability.Metrics) *Monitor {
	cfg.ApplyDefaults()
	return &Monitor{
		store:     store,
		interval:  cfg.Interval,
		threshold: cfg.StalenessThreshold,
		log:       logger.WithComponent("liveness-monitor"),
		metrics:   metrics,
	}
}

// Name returns the component name.
func (m *Monitor) Name() string { return "liveness-monitor" }

// Start launches the background sweep loop.
func (m *Monitor) Start(ctx context.Context) error {
	loopCtx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.done = make(chan struct{})

	go m.run(loopCtx)

	m.log.Info("monitor started", logger.Fields(
		"interval", m.interval.String(),
		"staleness_threshold", m.threshold.String(),
	))
	return nil
}

// Stop terminates the sweep loop, waiting until it exits or ctx expires.
func (m *Monitor) Stop(ctx context.Context) error {
	if m.cancel == nil {
		return nil
	}
	m.cancel()
	select {
	case <-m.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Health reports the monitor as healthy once started.
func (m *Monitor) Health(ctx context.Context) component.Health {
	if m.done == nil {
		return component.Health{
			Name:    m.Name(),
			Status:  component.StatusDegraded,
			Message: "not started",
		}
	}
	return component.Health{Name: m.Name(), Status: component.StatusHealthy}
}

// Sweep demotes stale records and returns the report. Demotion is idempotent:
// a record already inactive is never demoted again.
func (m *Monitor) Sweep(ctx context.Context) SweepReport {
	demoted := m.store.DemoteStale(m.threshold)
	if demoted == nil {
		demoted = []StaleService{}
	}
	if len(demoted) > 0 {
		m.log.Warn("liveness sweep demoted services", logger.Fields("count", len(demoted)))
	}
	m.metrics.RecordSweepDemotions(ctx, len(demoted))

	return SweepReport{
		CheckedAt: time.Now().UTC(),
		Count:     len(demoted),
		Stale:     demoted,
	}
}

func (m *Monitor) run(ctx context.Context) {
	defer close(m.done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.log.Info("monitor stopped")
			return
		case <-ticker.C:
			m.Sweep(ctx)
		}
	}
}
