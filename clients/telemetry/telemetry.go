package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"spinwatch/config"
)

// Accepted limit ranges of the telemetry API.
const (
	MaxRecentSpins = 100
	MaxDistances   = 200
	MaxGaps        = 100
)

// Client reads the spin telemetry REST API.
type Client struct {
	logger     *zap.Logger
	httpClient *http.Client
	baseURL    string
}

func NewClient(logger *zap.Logger, cfg *config.Config) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Telemetry.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		logger: logger,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(cfg.Telemetry.APIURL, "/"),
	}
}

// ---- API types ----

type Status struct {
	Status          string  `json:"status"`
	ServiceRunning  bool    `json:"service_running"`
	LastSpinID      int     `json:"last_spin_id"`
	LastResult      *string `json:"last_result"`
	LastSpinTime    *string `json:"last_spin_time"`
	TotalSpinsToday int     `json:"total_spins_today"`
	UptimeSeconds   float64 `json:"uptime_seconds,omitempty"`
	Timestamp       string  `json:"timestamp"`
}

type Spin struct {
	ID                int     `json:"id"`
	Result            string  `json:"resultado"`
	Timestamp         string  `json:"timestamp"`
	TopSlotResult     *string `json:"top_slot_result"`
	TopSlotMultiplier *int    `json:"top_slot_multiplier"`
	TopSlotMatched    *bool   `json:"is_top_slot_matched"`
	BonusMultiplier   *int    `json:"bonus_multiplier"`
}

type RecentSpins struct {
	Spins []Spin `json:"spins"`
	Count int    `json:"count"`
}

type DailyStats struct {
	Date                string         `json:"date"`
	TotalSpins          int            `json:"total_spins"`
	ResultsDistribution map[string]int `json:"results_distribution"`
}

type SpinStats struct {
	TodayStats    DailyStats `json:"today_stats"`
	CurrentSpinID int        `json:"current_spin_id"`
	LastSpinTime  *string    `json:"last_spin_time"`
}

type ThresholdStatus struct {
	Status        string  `json:"status"`
	LastAlertTime *string `json:"last_alert_time"`
	Progress      int     `json:"progress"`
}

type Pattern struct {
	ID               string                     `json:"pattern_id"`
	Name             string                     `json:"pattern_name"`
	Type             string                     `json:"type"`
	Value            json.RawMessage            `json:"value"`
	LastSpinID       *int                       `json:"last_spin_id"`
	LastResult       *string                    `json:"last_result"`
	SpinsSince       int                        `json:"spins_since"`
	CurrentDistance  int                        `json:"current_distance"`
	Thresholds       []int                      `json:"thresholds"`
	ThresholdsStatus map[string]ThresholdStatus `json:"thresholds_status"`
	BettingWindows   [][2]int                   `json:"betting_windows,omitempty"`
}

// GetValues returns the pattern value as a list. Simple patterns report a
// single string, sequences a list of strings.
func (p *Pattern) GetValues() []string {
	if len(p.Value) == 0 {
		return nil
	}

	var single string
	if err := json.Unmarshal(p.Value, &single); err == nil {
		return []string{single}
	}

	var seq []string
	if err := json.Unmarshal(p.Value, &seq); err == nil {
		return seq
	}

	return nil
}

type Patterns struct {
	Patterns    []Pattern `json:"patterns"`
	LastUpdated string    `json:"last_updated"`
}

type DistanceStats struct {
	PatternID      string   `json:"pattern_id"`
	PatternName    string   `json:"pattern_name"`
	Count          int      `json:"count"`
	MeanDistance   *float64 `json:"mean_distance"`
	MedianDistance *float64 `json:"median_distance"`
	MinDistance    *int     `json:"min_distance"`
	MaxDistance    *int     `json:"max_distance"`
}

type PatternDistances struct {
	PatternID   string        `json:"pattern_id"`
	PatternName string        `json:"pattern_name"`
	Distances   []int         `json:"distances"`
	Statistics  DistanceStats `json:"statistics"`
}

type Alert struct {
	PatternID     string  `json:"pattern_id"`
	PatternName   string  `json:"pattern_name"`
	Threshold     int     `json:"threshold"`
	CurrentWait   int     `json:"current_wait"`
	Status        string  `json:"status"`
	LastAlertTime *string `json:"last_alert_time"`
}

type Alerts struct {
	Alerts      []Alert `json:"alerts"`
	ActiveCount int     `json:"active_count"`
}

type WindowAnalysis struct {
	PatternID          string  `json:"pattern_id"`
	PatternName        string  `json:"pattern_name"`
	Threshold          int     `json:"threshold"`
	WindowStartOffset  int     `json:"window_start_offset"`
	WindowEndOffset    int     `json:"window_end_offset"`
	TotalOpportunities int     `json:"total_opportunities"`
	HitsInWindow       int     `json:"hits_in_window"`
	Misses             int     `json:"misses"`
	HitRate            float64 `json:"hit_rate"`
	ROI                float64 `json:"roi"`
}

type WindowAnalytics struct {
	Windows     []WindowAnalysis `json:"windows"`
	LastUpdated string           `json:"last_updated"`
}

type Gap struct {
	Timestamp       string  `json:"timestamp"`
	DurationSeconds float64 `json:"duration_seconds"`
	GapType         string  `json:"gap_type"`
	Details         string  `json:"details"`
}

type Gaps struct {
	Gaps  []Gap `json:"gaps"`
	Count int   `json:"count"`
}

// ---- Endpoints ----

// GetStatus fetches overall service status.
func (c *Client) GetStatus(ctx context.Context) (*Status, error) {
	var out Status
	if err := c.doGet(ctx, c.endpoint("/api/status", nil), &out); err != nil {
		return nil, fmt.Errorf("get status: %w", err)
	}
	return &out, nil
}

// GetPatterns fetches every tracked pattern with its current distance.
func (c *Client) GetPatterns(ctx context.Context) (*Patterns, error) {
	var out Patterns
	if err := c.doGet(ctx, c.endpoint("/api/patterns", nil), &out); err != nil {
		return nil, fmt.Errorf("get patterns: %w", err)
	}
	return &out, nil
}

// GetAlerts fetches alert state per pattern and threshold.
func (c *Client) GetAlerts(ctx context.Context) (*Alerts, error) {
	var out Alerts
	if err := c.doGet(ctx, c.endpoint("/api/alerts", nil), &out); err != nil {
		return nil, fmt.Errorf("get alerts: %w", err)
	}
	return &out, nil
}

// GetRecentSpins fetches the newest spins first.
func (c *Client) GetRecentSpins(ctx context.Context, limit int) (*RecentSpins, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(clamp(limit, 1, MaxRecentSpins)))

	var out RecentSpins
	if err := c.doGet(ctx, c.endpoint("/api/spins/recent", q), &out); err != nil {
		return nil, fmt.Errorf("get recent spins: %w", err)
	}
	return &out, nil
}

// GetSpinStats fetches today's result distribution.
func (c *Client) GetSpinStats(ctx context.Context) (*SpinStats, error) {
	var out SpinStats
	if err := c.doGet(ctx, c.endpoint("/api/spins/stats", nil), &out); err != nil {
		return nil, fmt.Errorf("get spin stats: %w", err)
	}
	return &out, nil
}

// GetPatternDistances fetches the distance history of one pattern, oldest first.
func (c *Client) GetPatternDistances(ctx context.Context, patternID string, limit int) (*PatternDistances, error) {
	patternID = strings.TrimSpace(patternID)
	if patternID == "" {
		return nil, fmt.Errorf("pattern id is empty")
	}

	q := url.Values{}
	q.Set("limit", strconv.Itoa(clamp(limit, 1, MaxDistances)))

	var out PatternDistances
	path := "/api/patterns/" + url.PathEscape(patternID) + "/distances"
	if err := c.doGet(ctx, c.endpoint(path, q), &out); err != nil {
		return nil, fmt.Errorf("get distances for %s: %w", patternID, err)
	}
	return &out, nil
}

// GetWindowAnalytics fetches historical hit rates per betting window.
func (c *Client) GetWindowAnalytics(ctx context.Context) (*WindowAnalytics, error) {
	var out WindowAnalytics
	if err := c.doGet(ctx, c.endpoint("/api/analytics/window", nil), &out); err != nil {
		return nil, fmt.Errorf("get window analytics: %w", err)
	}
	return &out, nil
}

// GetGaps fetches recorded service outages, newest first.
func (c *Client) GetGaps(ctx context.Context, limit int) (*Gaps, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(clamp(limit, 1, MaxGaps)))

	var out Gaps
	if err := c.doGet(ctx, c.endpoint("/api/gaps", q), &out); err != nil {
		return nil, fmt.Errorf("get gaps: %w", err)
	}
	return &out, nil
}

func (c *Client) endpoint(path string, q url.Values) string {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

// doGet performs a GET request and decodes the JSON response.
func (c *Client) doGet(ctx context.Context, url string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("status=%d body=%s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}

	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
