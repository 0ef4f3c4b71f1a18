package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"spinwatch/internal/view"
	"spinwatch/internal/window"
)

// Router builds the dashboard HTTP surface.
func (r *Runner) Router() http.Handler {
	router := chi.NewRouter()

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           60 * 15,
	}))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	router.Handle("/metrics", promhttp.Handler())

	// JSON stats endpoint
	router.Get("/stats", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, r.GetStats())
	})

	router.Route("/api", func(api chi.Router) {
		api.Get("/dashboard", r.handleDashboard)
		api.Get("/patterns/{id}/grid", r.handleGrid)
		api.Get("/classify", r.handleClassify)
	})

	NewSettingsHandler(r.clients.Logger.Named("settings"), r.liveConfig).RegisterRoutes(router)

	// Live feed: the current snapshot, then every new one
	router.Get("/ws", func(w http.ResponseWriter, req *http.Request) {
		var initial any
		if snap := r.Snapshot(); snap != nil {
			initial = snap
		}
		r.hub.ServeWS(w, req, initial)
	})

	// HTML dashboard
	router.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(dashboardHTML))
	})

	return router
}

// startServer binds the port synchronously so a taken port fails Run.
func (r *Runner) startServer(port int) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return err
	}

	r.server = &http.Server{Handler: r.Router()}

	go func() {
		if err := r.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.clients.Logger.Error("dashboard server error", zap.Error(err))
		}
	}()
	return nil
}

func (r *Runner) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	snap := r.Snapshot()
	if snap == nil {
		writeError(w, http.StatusServiceUnavailable, "no telemetry received yet")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (r *Runner) handleGrid(w http.ResponseWriter, req *http.Request) {
	id := chi.URLParam(req, "id")
	grid, err := r.Grid(req.Context(), id)
	if err != nil {
		r.clients.Logger.Warn("grid fetch failed", zap.String("pattern", id), zap.Error(err))
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, grid)
}

type classifyResponse struct {
	Distance int             `json:"distance"`
	Windows  []window.Window `json:"windows"`
	Lead     int             `json:"lead_warning"`
	Status   window.Status   `json:"status"`
	Badge    view.Badge      `json:"badge"`
}

// handleClassify serves /api/classify?distance=N&windows=a-b,c-d[&lead=L].
func (r *Runner) handleClassify(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()

	distance, err := strconv.Atoi(q.Get("distance"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "distance must be an integer")
		return
	}

	windows, err := ParseWindows(q.Get("windows"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	lead := r.Builder().LeadWarning()
	if raw := q.Get("lead"); raw != "" {
		lead, err = strconv.Atoi(raw)
		if err != nil || lead < 0 {
			writeError(w, http.StatusBadRequest, "lead must be a non-negative integer")
			return
		}
	}

	status := window.NewClassifier(lead).Classify(distance, windows)
	badge, _, _ := view.BadgeFor(status)
	writeJSON(w, http.StatusOK, classifyResponse{
		Distance: distance,
		Windows:  windows,
		Lead:     lead,
		Status:   status,
		Badge:    badge,
	})
}

// ParseWindows reads "a-b,c-d". An empty string is an empty list.
func ParseWindows(s string) ([]window.Window, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return []window.Window{}, nil
	}

	parts := strings.Split(s, ",")
	out := make([]window.Window, 0, len(parts))
	for _, part := range parts {
		lo, hi, ok := strings.Cut(strings.TrimSpace(part), "-")
		if !ok {
			return nil, fmt.Errorf("window %q: want start-end", part)
		}
		start, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, fmt.Errorf("window %q: bad start: %w", part, err)
		}
		end, err := strconv.Atoi(strings.TrimSpace(hi))
		if err != nil {
			return nil, fmt.Errorf("window %q: bad end: %w", part, err)
		}
		if start > end {
			return nil, fmt.Errorf("window %q: start after end", part)
		}
		out = append(out, window.Window{Start: start, End: end})
	}
	return out, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
