package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	clts "spinwatch/clients"
	"spinwatch/clients/notifier"
	"spinwatch/clients/telemetry"
	"spinwatch/config"
)

// mockNotifier records every alert it is handed.
type mockNotifier struct {
	mu     sync.Mutex
	alerts []notifier.WindowAlert
	closed bool
}

func (m *mockNotifier) SendWindowAlert(alert notifier.WindowAlert) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts = append(m.alerts, alert)
}

func (m *mockNotifier) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockNotifier) Kinds() []notifier.AlertKind {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]notifier.AlertKind, len(m.alerts))
	for i, a := range m.alerts {
		out[i] = a.Kind
	}
	return out
}

func (m *mockNotifier) Alerts() []notifier.WindowAlert {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]notifier.WindowAlert(nil), m.alerts...)
}

func (m *mockNotifier) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// fakeTelemetry serves the subset of the telemetry API the poller reads.
type fakeTelemetry struct {
	mu        sync.Mutex
	running   bool
	patterns  []telemetry.Pattern
	spins     []telemetry.Spin
	distances map[string][]int
	hits      map[string]int
}

func newFakeTelemetry() *fakeTelemetry {
	return &fakeTelemetry{
		running: true,
		patterns: []telemetry.Pattern{
			{ID: "pachinko", Name: "Pachinko", CurrentDistance: 40, SpinsSince: 40, Thresholds: []int{50, 110}},
			{ID: "crazytime", Name: "Crazy Time", CurrentDistance: 100, SpinsSince: 100, Thresholds: []int{190, 250}},
		},
		spins: []telemetry.Spin{
			{ID: 11, Result: "2", Timestamp: "2024-05-01T10:00:30"},
			{ID: 10, Result: "1", Timestamp: "2024-05-01T10:00:00"},
		},
		distances: map[string][]int{
			"pachinko":  {12, 75, 130},
			"crazytime": {220},
		},
		hits: map[string]int{},
	}
}

func (f *fakeTelemetry) setDistance(id string, d int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.patterns {
		if f.patterns[i].ID == id {
			f.patterns[i].CurrentDistance = d
			f.patterns[i].SpinsSince = d
		}
	}
}

func (f *fakeTelemetry) pushSpin(result string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	next := telemetry.Spin{ID: f.spins[0].ID + 1, Result: result, Timestamp: "2024-05-01T10:01:00"}
	f.spins = append([]telemetry.Spin{next}, f.spins...)
}

func (f *fakeTelemetry) Hits(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[path]
}

func (f *fakeTelemetry) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hits[r.URL.Path]++

	var body any
	switch path := r.URL.Path; {
	case path == "/api/status":
		status := "ok"
		if !f.running {
			status = "stopped"
		}
		body = map[string]any{
			"status":            status,
			"service_running":   f.running,
			"last_spin_id":      f.spins[0].ID,
			"total_spins_today": len(f.spins),
		}
	case path == "/api/patterns":
		body = map[string]any{"patterns": f.patterns}
	case path == "/api/alerts":
		body = map[string]any{
			"alerts":       []map[string]any{{"pattern_id": "pachinko", "pattern_name": "Pachinko", "threshold": 50, "current_wait": 40, "status": "approaching"}},
			"active_count": 1,
		}
	case path == "/api/spins/recent":
		body = map[string]any{"spins": f.spins, "count": len(f.spins)}
	case path == "/api/spins/stats":
		body = map[string]any{"today_stats": map[string]any{"total_spins": len(f.spins), "results_distribution": map[string]int{"1": 1, "2": 1}}}
	case path == "/api/analytics/window":
		body = map[string]any{"windows": []map[string]any{{"pattern_id": "pachinko", "hit_rate": 0.3, "roi": 0.9}}}
	case path == "/api/gaps":
		body = map[string]any{"gaps": []any{}, "count": 0}
	case strings.HasPrefix(path, "/api/patterns/") && strings.HasSuffix(path, "/distances"):
		id := strings.TrimSuffix(strings.TrimPrefix(path, "/api/patterns/"), "/distances")
		d, ok := f.distances[id]
		if !ok {
			http.Error(w, `{"error":"unknown pattern"}`, http.StatusNotFound)
			return
		}
		body = map[string]any{"pattern_id": id, "pattern_name": id, "distances": d}
	default:
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

// newTestRunner wires a runner against a fake telemetry API.
func newTestRunner(t *testing.T, api http.Handler, mutate func(*config.Config)) (*Runner, *mockNotifier) {
	t.Helper()

	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	cfg := config.Defaults()
	cfg.Telemetry.APIURL = srv.URL
	cfg.Telemetry.RequestTimeout = 2 * time.Second
	cfg.Server.Enabled = false
	if mutate != nil {
		mutate(cfg)
	}

	mock := &mockNotifier{}
	clients := &clts.Clients{
		Logger:    zap.NewNop(),
		Notifier:  mock,
		Telemetry: telemetry.NewClient(zap.NewNop(), cfg),
	}
	return NewRunner(clients, config.NewLiveConfig(cfg), config.DefaultCatalog()), mock
}
