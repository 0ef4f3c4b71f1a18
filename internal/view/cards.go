package view

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"spinwatch/clients/telemetry"
	"spinwatch/config"
	"spinwatch/internal/window"
)

// Progress ring geometry: 2 * pi * r for r = 52.
const RingCircumference = 326.7

const (
	ringColorIdle    = "#00ff88"
	ringColorReached = "#00f2ff"
)

// WindowSource records where a card's betting windows came from.
type WindowSource string

const (
	SourceAPI     WindowSource = "api"
	SourceCatalog WindowSource = "catalog"
	SourceNone    WindowSource = "none"
)

type Badge struct {
	Class string `json:"class"`
	Label string `json:"label"`
}

type ThresholdView struct {
	Threshold     int     `json:"threshold"`
	Status        string  `json:"status"`
	Progress      int     `json:"progress"`
	LastAlertTime *string `json:"last_alert_time,omitempty"`
}

// PatternCard is one pattern's betting window panel.
type PatternCard struct {
	PatternID    string          `json:"pattern_id"`
	Name         string          `json:"name"`
	Distance     int             `json:"distance"`
	Windows      []window.Window `json:"windows"`
	WindowSource WindowSource    `json:"window_source"`
	Status       window.Status   `json:"status"`
	Badge        Badge           `json:"badge"`
	BarClass     string          `json:"bar_class"`
	CardClass    string          `json:"card_class"`
	WindowLabel  string          `json:"window_label"`
	Thresholds   []ThresholdView `json:"thresholds"`
	VIP          bool            `json:"vip"`

	HitRate     *float64 `json:"hit_rate,omitempty"`
	ROI         *float64 `json:"roi,omitempty"`
	AvgDistance *float64 `json:"avg_distance,omitempty"`
}

// BadgeFor turns a classifier status into the card badge.
func BadgeFor(st window.Status) (badge Badge, barClass, cardClass string) {
	switch st.Phase {
	case window.Waiting:
		return Badge{Class: "cold", Label: fmt.Sprintf("%d TO GO", st.SpinsRemaining)}, "", ""
	case window.Warming:
		return Badge{Class: "warm", Label: "GET READY"}, "warm", ""
	case window.InWindow:
		return Badge{Class: "hot", Label: "IN ZONE"}, "hot-glow", "hot-glow-card"
	default:
		return Badge{Class: "miss", Label: "PASSED"}, "miss", ""
	}
}

// PatternWindows prefers windows reported by the API over the catalog.
func PatternWindows(p telemetry.Pattern, cat *config.Catalog) ([]window.Window, WindowSource) {
	if len(p.BettingWindows) > 0 {
		return window.FromPairs(p.BettingWindows), SourceAPI
	}
	if cp, ok := cat.Get(p.ID); ok && len(cp.Windows) > 0 {
		return cp.BettingWindows(), SourceCatalog
	}
	return nil, SourceNone
}

func buildThresholds(p telemetry.Pattern) []ThresholdView {
	out := make([]ThresholdView, 0, len(p.ThresholdsStatus))
	seen := make(map[int]bool, len(p.ThresholdsStatus))
	for k, ts := range p.ThresholdsStatus {
		n, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		seen[n] = true
		out = append(out, ThresholdView{Threshold: n, Status: ts.Status, Progress: ts.Progress, LastAlertTime: ts.LastAlertTime})
	}
	for _, n := range p.Thresholds {
		if seen[n] {
			continue
		}
		progress := 0
		if n > 0 {
			progress = int(math.Min(100, float64(p.SpinsSince)/float64(n)*100))
		}
		out = append(out, ThresholdView{Threshold: n, Status: "idle", Progress: progress})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Threshold < out[j].Threshold })
	return out
}

// RingView is the headline progress ring.
type RingView struct {
	Mode       config.RingMode `json:"mode"`
	PatternID  string          `json:"pattern_id"` // Target that drives the ring
	Distance   int             `json:"distance"`
	Threshold  int             `json:"threshold"`
	Progress   float64         `json:"progress"` // 0..1
	DashOffset float64         `json:"dash_offset"`
	Reached    bool            `json:"reached"`
	Color      string          `json:"color"`
}

// BuildRing evaluates the ring targets against the current patterns.
// Single mode uses the first target; max mode the target with the
// highest ratio.
func BuildRing(ring config.ProgressRing, patterns []telemetry.Pattern) RingView {
	rv := RingView{Mode: ring.Mode}

	targets := ring.Targets
	if ring.Mode != config.RingMax && len(targets) > 1 {
		targets = targets[:1]
	}

	best := -1.0
	for _, t := range targets {
		p, ok := findPattern(patterns, t.Pattern)
		if !ok || t.Threshold <= 0 {
			continue
		}
		ratio := math.Min(float64(p.SpinsSince)/float64(t.Threshold), 1)
		if ratio > best {
			best = ratio
			rv.PatternID = t.Pattern
			rv.Distance = p.SpinsSince
			rv.Threshold = t.Threshold
			rv.Progress = ratio
			rv.Reached = p.SpinsSince >= t.Threshold
		}
	}

	if rv.Progress < 0 {
		rv.Progress = 0
	}
	rv.DashOffset = RingCircumference * (1 - rv.Progress)
	rv.Color = ringColorIdle
	if rv.Reached {
		rv.Color = ringColorReached
	}
	return rv
}

type Counter struct {
	PatternID  string `json:"pattern_id"`
	Name       string `json:"name"`
	SpinsSince int    `json:"spins_since"`
}

// BuildCounters lists spins-since for every vip catalog pattern the API reports.
func BuildCounters(cat *config.Catalog, patterns []telemetry.Pattern) []Counter {
	out := []Counter{}
	for _, cp := range cat.Patterns {
		if !cp.IsVIP() {
			continue
		}
		if p, ok := findPattern(patterns, cp.ID); ok {
			out = append(out, Counter{PatternID: cp.ID, Name: cp.Name, SpinsSince: p.SpinsSince})
		}
	}
	return out
}

type AlertItem struct {
	PatternID     string  `json:"pattern_id"`
	Name          string  `json:"name"`
	Threshold     int     `json:"threshold"`
	CurrentWait   int     `json:"current_wait"`
	Status        string  `json:"status"`
	StatusLabel   string  `json:"status_label"`
	Active        bool    `json:"active"`
	LastAlertTime *string `json:"last_alert_time,omitempty"`
}

type AlertsPanel struct {
	Items       []AlertItem `json:"items"`
	ActiveCount int         `json:"active_count"`
	Empty       bool        `json:"empty"`
}

// IsActiveAlert reports whether an API alert status counts as active.
func IsActiveAlert(status string) bool {
	return status == "approaching" || status == "ready"
}

func BuildAlerts(a telemetry.Alerts) AlertsPanel {
	panel := AlertsPanel{Items: make([]AlertItem, 0, len(a.Alerts)), ActiveCount: a.ActiveCount, Empty: len(a.Alerts) == 0}
	for _, al := range a.Alerts {
		panel.Items = append(panel.Items, AlertItem{
			PatternID:     al.PatternID,
			Name:          al.PatternName,
			Threshold:     al.Threshold,
			CurrentWait:   al.CurrentWait,
			Status:        al.Status,
			StatusLabel:   strings.ToUpper(al.Status),
			Active:        IsActiveAlert(al.Status),
			LastAlertTime: al.LastAlertTime,
		})
	}
	return panel
}

func findPattern(patterns []telemetry.Pattern, id string) (telemetry.Pattern, bool) {
	for _, p := range patterns {
		if p.ID == id {
			return p, true
		}
	}
	return telemetry.Pattern{}, false
}
