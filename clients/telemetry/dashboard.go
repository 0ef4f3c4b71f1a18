package telemetry

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Endpoint names used as keys in Dashboard.Errors.
const (
	EndpointStatus    = "status"
	EndpointPatterns  = "patterns"
	EndpointAlerts    = "alerts"
	EndpointRecent    = "spins_recent"
	EndpointStats     = "spins_stats"
	EndpointAnalytics = "analytics_window"
	EndpointGaps      = "gaps"
	EndpointDistances = "distances"
)

// maxConcurrentFetches bounds the fan-out of a single FetchDashboard call.
const maxConcurrentFetches = 6

// DashboardQuery selects what FetchDashboard retrieves.
type DashboardQuery struct {
	RecentLimit int

	// Distances lists the pattern ids whose history is fetched.
	Distances      []string
	DistancesLimit int

	Analytics bool
	GapsLimit int // 0 skips gaps
}

// Dashboard is one complete read of the telemetry API. Every field holds
// usable data: endpoints that failed carry their defaults and are listed
// in Errors.
type Dashboard struct {
	Status    Status                      `json:"status"`
	Patterns  Patterns                    `json:"patterns"`
	Alerts    Alerts                      `json:"alerts"`
	Recent    RecentSpins                 `json:"recent"`
	Stats     SpinStats                   `json:"stats"`
	Distances map[string]PatternDistances `json:"distances"`
	Analytics *WindowAnalytics            `json:"analytics,omitempty"`
	Gaps      *Gaps                       `json:"gaps,omitempty"`

	FetchedAt time.Time     `json:"fetched_at"`
	Elapsed   time.Duration `json:"elapsed"`

	// Attempted lists every endpoint queried, distances as "distances:<id>".
	Attempted []string         `json:"attempted"`
	Errors    map[string]error `json:"-"`
}

// Failed reports whether the named endpoint fell back to its default.
func (d *Dashboard) Failed(endpoint string) bool {
	_, ok := d.Errors[endpoint]
	return ok
}

// ErrorMessages flattens Errors for JSON output.
func (d *Dashboard) ErrorMessages() map[string]string {
	if len(d.Errors) == 0 {
		return nil
	}
	out := make(map[string]string, len(d.Errors))
	for k, err := range d.Errors {
		out[k] = err.Error()
	}
	return out
}

// DistanceKey is the Errors/Attempted key for a pattern's distance history.
func DistanceKey(patternID string) string {
	return EndpointDistances + ":" + patternID
}

// DefaultStatus is reported when /api/status cannot be read.
func DefaultStatus() Status {
	return Status{Status: "error", ServiceRunning: false, LastSpinID: 0}
}

// DefaultSpinStats is reported when /api/spins/stats cannot be read.
func DefaultSpinStats() SpinStats {
	return SpinStats{TodayStats: DailyStats{ResultsDistribution: map[string]int{}}}
}

// DefaultDistances is reported when a pattern's history cannot be read.
func DefaultDistances(patternID string) PatternDistances {
	return PatternDistances{
		PatternID:  patternID,
		Distances:  []int{},
		Statistics: DistanceStats{PatternID: patternID},
	}
}

// NewDashboard returns a dashboard holding only defaults.
func NewDashboard() *Dashboard {
	return &Dashboard{
		Status:    DefaultStatus(),
		Patterns:  Patterns{Patterns: []Pattern{}},
		Alerts:    Alerts{Alerts: []Alert{}},
		Recent:    RecentSpins{Spins: []Spin{}},
		Stats:     DefaultSpinStats(),
		Distances: map[string]PatternDistances{},
		Errors:    map[string]error{},
	}
}

// FetchDashboard queries the requested endpoints concurrently. It never
// returns partial structs: a failed endpoint is replaced by its default.
func (c *Client) FetchDashboard(ctx context.Context, q DashboardQuery) *Dashboard {
	start := time.Now()
	d := NewDashboard()

	var mu sync.Mutex
	fail := func(name string, err error) {
		mu.Lock()
		d.Errors[name] = err
		mu.Unlock()
		c.logger.Warn("telemetry fetch failed", zap.String("endpoint", name), zap.Error(err))
	}

	var g errgroup.Group
	g.SetLimit(maxConcurrentFetches)

	d.Attempted = append(d.Attempted, EndpointStatus, EndpointPatterns, EndpointAlerts, EndpointRecent, EndpointStats)

	g.Go(func() error {
		if s, err := c.GetStatus(ctx); err != nil {
			fail(EndpointStatus, err)
		} else {
			d.Status = *s
		}
		return nil
	})
	g.Go(func() error {
		if p, err := c.GetPatterns(ctx); err != nil {
			fail(EndpointPatterns, err)
		} else {
			if p.Patterns == nil {
				p.Patterns = []Pattern{}
			}
			d.Patterns = *p
		}
		return nil
	})
	g.Go(func() error {
		if a, err := c.GetAlerts(ctx); err != nil {
			fail(EndpointAlerts, err)
		} else {
			if a.Alerts == nil {
				a.Alerts = []Alert{}
			}
			d.Alerts = *a
		}
		return nil
	})
	g.Go(func() error {
		if r, err := c.GetRecentSpins(ctx, q.RecentLimit); err != nil {
			fail(EndpointRecent, err)
		} else {
			if r.Spins == nil {
				r.Spins = []Spin{}
			}
			d.Recent = *r
		}
		return nil
	})
	g.Go(func() error {
		if s, err := c.GetSpinStats(ctx); err != nil {
			fail(EndpointStats, err)
		} else {
			if s.TodayStats.ResultsDistribution == nil {
				s.TodayStats.ResultsDistribution = map[string]int{}
			}
			d.Stats = *s
		}
		return nil
	})

	if q.Analytics {
		d.Attempted = append(d.Attempted, EndpointAnalytics)
		g.Go(func() error {
			if a, err := c.GetWindowAnalytics(ctx); err != nil {
				fail(EndpointAnalytics, err)
				d.Analytics = &WindowAnalytics{Windows: []WindowAnalysis{}}
			} else {
				d.Analytics = a
			}
			return nil
		})
	}

	if q.GapsLimit > 0 {
		d.Attempted = append(d.Attempted, EndpointGaps)
		g.Go(func() error {
			if gaps, err := c.GetGaps(ctx, q.GapsLimit); err != nil {
				fail(EndpointGaps, err)
				d.Gaps = &Gaps{Gaps: []Gap{}}
			} else {
				d.Gaps = gaps
			}
			return nil
		})
	}

	for _, id := range q.Distances {
		key := DistanceKey(id)
		d.Attempted = append(d.Attempted, key)
		g.Go(func() error {
			res, err := c.GetPatternDistances(ctx, id, q.DistancesLimit)
			if err != nil {
				fail(key, err)
				def := DefaultDistances(id)
				res = &def
			}
			if res.Distances == nil {
				res.Distances = []int{}
			}
			mu.Lock()
			d.Distances[id] = *res
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()

	sort.Strings(d.Attempted)
	d.FetchedAt = time.Now()
	d.Elapsed = d.FetchedAt.Sub(start)
	return d
}
