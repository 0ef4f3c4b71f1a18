package app

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"go.uber.org/zap"

	clts "spinwatch/clients"
	"spinwatch/clients/telemetry"
	"spinwatch/config"
	"spinwatch/internal/view"
)

// ensure Runner implements ConfigObserver
var _ config.ConfigObserver = (*Runner)(nil)

// Build info - populated from embedded VCS info at init time
var (
	BuildCommit = "dev"
	BuildTime   = "unknown"
)

func init() {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				if setting.Value != "" {
					BuildCommit = setting.Value
				}
			case "vcs.time":
				BuildTime = setting.Value
			}
		}
	}
}

type Runner struct {
	clients    *clts.Clients
	liveConfig *config.LiveConfig
	catalog    *config.Catalog
	metrics    *Metrics
	hub        *Hub
	tracker    *TransitionTracker
	server     *http.Server
	startTime  time.Time

	// Signals the poll loop to pick up new intervals
	reconfigure chan struct{}

	mu       sync.RWMutex
	builder  *view.Builder
	snapshot *view.Dashboard
	charts   chartData
	counters pollCounters
}

// chartData is the slow-moving part of a poll, refreshed every
// ChartsInterval and reused by the polls in between.
type chartData struct {
	distances map[string]telemetry.PatternDistances
	analytics *telemetry.WindowAnalytics
	gaps      *telemetry.Gaps
	fetchedAt time.Time
}

type pollCounters struct {
	polls        int
	chartPolls   int
	failedFetch  int
	alertsSent   int
	alertsMuted  int
	lastPollAt   time.Time
	lastDuration time.Duration
	lastErrors   map[string]string
}

func NewRunner(clients *clts.Clients, liveConfig *config.LiveConfig, catalog *config.Catalog) *Runner {
	if catalog == nil {
		catalog = config.DefaultCatalog()
	}
	cfg := liveConfig.Get()
	metrics := NewMetrics()
	return &Runner{
		clients:     clients,
		liveConfig:  liveConfig,
		catalog:     catalog,
		metrics:     metrics,
		hub:         NewHub(clients.Logger.Named("hub"), metrics),
		tracker:     NewTransitionTracker(clients.Logger.Named("transitions")),
		builder:     view.NewBuilder(catalog, cfg.Windows.LeadWarning),
		reconfigure: make(chan struct{}, 1),
		startTime:   time.Now(),
	}
}

// OnConfigUpdate is called when the config changes.
// Implements config.ConfigObserver interface.
func (r *Runner) OnConfigUpdate(cfg *config.Config) {
	r.clients.Logger.Info("config update received",
		zap.Int("leadWarning", cfg.Windows.LeadWarning),
		zap.Duration("pollInterval", cfg.Telemetry.PollInterval),
		zap.Duration("chartsInterval", cfg.Telemetry.ChartsInterval),
	)

	r.mu.Lock()
	if r.builder.LeadWarning() != cfg.Windows.LeadWarning {
		r.builder = view.NewBuilder(r.catalog, cfg.Windows.LeadWarning)
	}
	r.mu.Unlock()

	select {
	case r.reconfigure <- struct{}{}:
	default:
	}
}

func (r *Runner) Run(ctx context.Context) error {
	r.startTime = time.Now()
	logger := r.clients.Logger
	cfg := r.liveConfig.Get()

	// Register as config observer for hot-reload
	r.liveConfig.AddObserver(r)

	logger.Info("starting telemetry poller",
		zap.String("apiURL", cfg.Telemetry.APIURL),
		zap.Duration("pollInterval", cfg.Telemetry.PollInterval),
		zap.Duration("chartsInterval", cfg.Telemetry.ChartsInterval),
		zap.Int("patterns", len(r.catalog.Patterns)),
	)

	// The first poll is a full one so charts render straight away
	r.Poll(ctx, true)

	if cfg.Server.Enabled {
		if err := r.startServer(cfg.Server.Port); err != nil {
			return fmt.Errorf("start server: %w", err)
		}
		logger.Info("dashboard server started", zap.Int("port", cfg.Server.Port))
	}

	r.runPollLoop(ctx)

	logger.Info("runner shutting down")

	r.hub.Close()
	if r.server != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = r.server.Shutdown(shutdownCtx)
		shutdownCancel()
	}
	if r.clients.Notifier != nil {
		if err := r.clients.Notifier.Close(); err != nil {
			logger.Warn("failed to close notifiers", zap.Error(err))
		}
	}
	return nil
}

// runPollLoop polls until ctx is cancelled, resetting both tickers when
// the intervals change.
func (r *Runner) runPollLoop(ctx context.Context) {
	cfg := r.liveConfig.Get()
	pollInterval, chartsInterval := cfg.Telemetry.PollInterval, cfg.Telemetry.ChartsInterval

	pollTicker := time.NewTicker(pollInterval)
	defer pollTicker.Stop()
	chartsTicker := time.NewTicker(chartsInterval)
	defer chartsTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-pollTicker.C:
			r.Poll(ctx, false)
		case <-chartsTicker.C:
			r.Poll(ctx, true)
		case <-r.reconfigure:
			cfg := r.liveConfig.Get()
			if cfg.Telemetry.PollInterval != pollInterval {
				pollInterval = cfg.Telemetry.PollInterval
				pollTicker.Reset(pollInterval)
			}
			if cfg.Telemetry.ChartsInterval != chartsInterval {
				chartsInterval = cfg.Telemetry.ChartsInterval
				chartsTicker.Reset(chartsInterval)
			}
		}
	}
}

// Poll fetches telemetry, rebuilds the snapshot, broadcasts it and sends
// any window alerts. A full poll also refreshes distances, analytics and
// gaps.
func (r *Runner) Poll(ctx context.Context, full bool) *view.Dashboard {
	cfg := r.liveConfig.Get()

	q := telemetry.DashboardQuery{RecentLimit: cfg.Telemetry.RecentSpinsLimit}
	if full {
		q.Distances = r.catalogIDs()
		q.DistancesLimit = cfg.Telemetry.DistancesLimit
		q.Analytics = true
		q.GapsLimit = cfg.Telemetry.GapsLimit
	}

	fetchCtx, cancel := context.WithTimeout(ctx, cfg.Telemetry.RequestTimeout)
	d := r.clients.Telemetry.FetchDashboard(fetchCtx, q)
	cancel()
	r.metrics.RecordPoll(d)

	r.mu.Lock()
	if full {
		r.charts = chartData{distances: d.Distances, analytics: d.Analytics, gaps: d.Gaps, fetchedAt: d.FetchedAt}
		r.counters.chartPolls++
	} else {
		d.Distances = r.charts.distances
		d.Analytics = r.charts.analytics
		d.Gaps = r.charts.gaps
	}
	builder := r.builder
	r.mu.Unlock()

	snap := builder.Build(d, time.Now())

	r.mu.Lock()
	r.snapshot = snap
	r.counters.polls++
	r.counters.failedFetch += len(d.Errors)
	r.counters.lastPollAt = snap.GeneratedAt
	r.counters.lastDuration = d.Elapsed
	r.counters.lastErrors = snap.Errors
	r.mu.Unlock()

	r.hub.Broadcast(snap)
	r.metrics.RecordCards(snap.Cards)
	r.notify(cfg, snap, d.Recent.Spins)

	if len(d.Errors) > 0 {
		r.clients.Logger.Debug("poll completed with errors",
			zap.Bool("full", full),
			zap.Int("errors", len(d.Errors)),
			zap.Duration("elapsed", d.Elapsed),
		)
	}
	return snap
}

func (r *Runner) notify(cfg *config.Config, snap *view.Dashboard, spins []telemetry.Spin) {
	alerts := r.tracker.Observe(r.catalog, snap.Cards, spins)
	sent, muted := 0, 0
	for _, a := range alerts {
		if !AllowAlert(a.Kind, cfg.Notifications) {
			muted++
			continue
		}
		if r.clients.Notifier != nil {
			r.clients.Notifier.SendWindowAlert(a)
		}
		r.metrics.RecordAlert(a.Kind)
		sent++
	}
	if sent == 0 && muted == 0 {
		return
	}
	r.mu.Lock()
	r.counters.alertsSent += sent
	r.counters.alertsMuted += muted
	r.mu.Unlock()
}

// Snapshot returns the latest dashboard, or nil before the first poll.
func (r *Runner) Snapshot() *view.Dashboard {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot
}

// Builder returns the view builder currently in use.
func (r *Runner) Builder() *view.Builder {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.builder
}

// Grid fetches one pattern's distance history live.
func (r *Runner) Grid(ctx context.Context, patternID string) (view.DistanceGrid, error) {
	cfg := r.liveConfig.Get()
	fetchCtx, cancel := context.WithTimeout(ctx, cfg.Telemetry.RequestTimeout)
	defer cancel()

	d, err := r.clients.Telemetry.GetPatternDistances(fetchCtx, patternID, cfg.Telemetry.GridLimit)
	if err != nil {
		return view.DistanceGrid{}, fmt.Errorf("get distances for %s: %w", patternID, err)
	}
	if d.PatternID == "" {
		d.PatternID = patternID
	}
	return r.Builder().Grid(*d, d.PatternName), nil
}

func (r *Runner) catalogIDs() []string {
	ids := make([]string, 0, len(r.catalog.Patterns))
	for _, p := range r.catalog.Patterns {
		ids = append(ids, p.ID)
	}
	return ids
}
