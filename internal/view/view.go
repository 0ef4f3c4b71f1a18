// Package view turns raw telemetry into the models the dashboard paints.
// Nothing here talks to the network; the runner hands in a fetched
// snapshot and gets back something it can serialize as-is.
package view

import (
	"fmt"
	"time"

	"spinwatch/clients/telemetry"
	"spinwatch/config"
	"spinwatch/internal/window"
)

const (
	TickerSize   = 40
	HeatmapSize  = 50
	TimelineSize = 15
)

// Header status labels.
const (
	StatusLive       = "LIVE"
	StatusOffline    = "OFFLINE"
	StatusConnecting = "CONNECTING"
)

type Header struct {
	StatusText      string    `json:"status_text"`
	StatusClass     string    `json:"status_class"` // online, offline or empty
	TotalSpinsToday int       `json:"total_spins_today"`
	LastSpinID      int       `json:"last_spin_id"`
	LastUpdate      time.Time `json:"last_update"`
}

func BuildHeader(s telemetry.Status, now time.Time) Header {
	h := Header{TotalSpinsToday: s.TotalSpinsToday, LastSpinID: s.LastSpinID, LastUpdate: now}
	switch {
	case s.Status == "error":
		h.StatusText, h.StatusClass = StatusOffline, "offline"
	case s.ServiceRunning:
		h.StatusText, h.StatusClass = StatusLive, "online"
	default:
		h.StatusText = StatusConnecting
	}
	return h
}

type CurrentResult struct {
	Result   string `json:"result"`
	SpinID   int    `json:"spin_id"`
	Time     string `json:"time,omitempty"`
	Class    string `json:"class"`
	HasValue bool   `json:"has_value"`
}

// BuildCurrentResult prefers the newest recent spin and falls back to
// the status endpoint's last result.
func BuildCurrentResult(s telemetry.Status, spins []telemetry.Spin) CurrentResult {
	if len(spins) > 0 {
		sp := spins[0]
		return CurrentResult{Result: sp.Result, SpinID: sp.ID, Time: spinTime(sp.Timestamp), Class: ResultClass(sp.Result), HasValue: true}
	}
	if s.LastResult != nil && *s.LastResult != "" {
		cr := CurrentResult{Result: *s.LastResult, SpinID: s.LastSpinID, Class: ResultClass(*s.LastResult), HasValue: true}
		if s.LastSpinTime != nil {
			cr.Time = spinTime(*s.LastSpinTime)
		}
		return cr
	}
	return CurrentResult{Result: "-", Class: ResultClass("")}
}

type SpinItem struct {
	SpinID  int    `json:"spin_id"`
	Result  string `json:"result"`
	Label   string `json:"label"`
	Class   string `json:"class"`
	Time    string `json:"time,omitempty"`
	Tooltip string `json:"tooltip,omitempty"`

	BonusMultiplier   *int `json:"bonus_multiplier,omitempty"`
	TopSlotMultiplier *int `json:"top_slot_multiplier,omitempty"`
}

func BuildTicker(spins []telemetry.Spin) []SpinItem {
	spins = head(spins, TickerSize)
	out := make([]SpinItem, 0, len(spins))
	for _, sp := range spins {
		out = append(out, SpinItem{
			SpinID:            sp.ID,
			Result:            sp.Result,
			Label:             TickerLabel(sp.Result),
			Class:             TickerClass(sp.Result),
			Time:              spinTime(sp.Timestamp),
			BonusMultiplier:   sp.BonusMultiplier,
			TopSlotMultiplier: sp.TopSlotMultiplier,
		})
	}
	return out
}

// BuildHeatmap renders the newest spins oldest first.
func BuildHeatmap(spins []telemetry.Spin) []SpinItem {
	spins = head(spins, HeatmapSize)
	out := make([]SpinItem, 0, len(spins))
	for i := len(spins) - 1; i >= 0; i-- {
		sp := spins[i]
		out = append(out, SpinItem{
			SpinID:  sp.ID,
			Result:  sp.Result,
			Label:   ShortLabel(sp.Result),
			Class:   HeatmapClass(sp.Result),
			Tooltip: fmt.Sprintf("#%d - %s", sp.ID, sp.Result),
		})
	}
	return out
}

func BuildTimeline(spins []telemetry.Spin) []SpinItem {
	spins = head(spins, TimelineSize)
	out := make([]SpinItem, 0, len(spins))
	for _, sp := range spins {
		out = append(out, SpinItem{
			SpinID:            sp.ID,
			Result:            sp.Result,
			Label:             sp.Result,
			Class:             ResultClass(sp.Result),
			Time:              spinTime(sp.Timestamp),
			BonusMultiplier:   sp.BonusMultiplier,
			TopSlotMultiplier: sp.TopSlotMultiplier,
		})
	}
	return out
}

// Dashboard is the complete view model pushed to browsers.
type Dashboard struct {
	Header        Header                     `json:"header"`
	CurrentResult CurrentResult              `json:"current_result"`
	Counters      []Counter                  `json:"counters"`
	Ring          RingView                   `json:"ring"`
	Cards         []PatternCard              `json:"cards"`
	Ticker        []SpinItem                 `json:"ticker"`
	Heatmap       []SpinItem                 `json:"heatmap"`
	Timeline      []SpinItem                 `json:"timeline"`
	Distribution  Distribution               `json:"distribution"`
	Histogram     DistanceHistogram          `json:"histogram"`
	Grids         []DistanceGrid             `json:"grids,omitempty"`
	Alerts        AlertsPanel                `json:"alerts"`
	Analytics     []telemetry.WindowAnalysis `json:"analytics,omitempty"`
	Gaps          []telemetry.Gap            `json:"gaps,omitempty"`
	Errors        map[string]string          `json:"errors,omitempty"`
	GeneratedAt   time.Time                  `json:"generated_at"`
}

// Card returns the card of one pattern.
func (d *Dashboard) Card(patternID string) (PatternCard, bool) {
	for _, c := range d.Cards {
		if c.PatternID == patternID {
			return c, true
		}
	}
	return PatternCard{}, false
}

// Builder holds what stays fixed between polls. It is immutable once
// built; the runner makes a new one when the catalog or lead warning
// changes.
type Builder struct {
	catalog     *config.Catalog
	leadWarning int
}

func NewBuilder(cat *config.Catalog, leadWarning int) *Builder {
	if cat == nil {
		cat = config.DefaultCatalog()
	}
	if leadWarning < 0 {
		leadWarning = window.DefaultLeadWarning
	}
	return &Builder{catalog: cat, leadWarning: leadWarning}
}

func (b *Builder) Catalog() *config.Catalog { return b.catalog }

func (b *Builder) LeadWarning() int { return b.leadWarning }

// Build assembles the view model. Every section is derived from d alone,
// so a snapshot full of defaults still renders.
func (b *Builder) Build(d *telemetry.Dashboard, now time.Time) *Dashboard {
	if d == nil {
		d = telemetry.NewDashboard()
	}
	patterns := d.Patterns.Patterns
	spins := d.Recent.Spins

	out := &Dashboard{
		Header:        BuildHeader(d.Status, now),
		CurrentResult: BuildCurrentResult(d.Status, spins),
		Counters:      BuildCounters(b.catalog, patterns),
		Ring:          BuildRing(b.catalog.ProgressRing, patterns),
		Cards:         make([]PatternCard, 0, len(patterns)),
		Ticker:        BuildTicker(spins),
		Heatmap:       BuildHeatmap(spins),
		Timeline:      BuildTimeline(spins),
		Distribution:  BuildDistribution(d.Stats.TodayStats.ResultsDistribution),
		Alerts:        BuildAlerts(d.Alerts),
		GeneratedAt:   now,
	}

	for _, p := range patterns {
		out.Cards = append(out.Cards, b.Card(p, d))
	}

	names := b.names(patterns)
	series := make([]telemetry.PatternDistances, 0, len(d.Distances))
	for _, cp := range b.catalog.Patterns {
		if pd, ok := d.Distances[cp.ID]; ok {
			series = append(series, pd)
		}
	}
	out.Histogram = BuildHistogram(series, names)
	for _, pd := range series {
		out.Grids = append(out.Grids, b.Grid(pd, names[pd.PatternID]))
	}

	if d.Analytics != nil {
		out.Analytics = d.Analytics.Windows
	}
	if d.Gaps != nil {
		out.Gaps = d.Gaps.Gaps
	}
	if len(d.Errors) > 0 {
		out.Errors = d.ErrorMessages()
	}
	return out
}

// Card classifies one pattern and decorates the result.
func (b *Builder) Card(p telemetry.Pattern, d *telemetry.Dashboard) PatternCard {
	windows, source := PatternWindows(p, b.catalog)
	status := b.Classify(p.ID, p.CurrentDistance, windows)
	badge, bar, cardClass := BadgeFor(status)

	card := PatternCard{
		PatternID:    p.ID,
		Name:         p.Name,
		Distance:     p.CurrentDistance,
		Windows:      windows,
		WindowSource: source,
		Status:       status,
		Badge:        badge,
		BarClass:     bar,
		CardClass:    cardClass,
		WindowLabel:  fmt.Sprintf("WINDOW [%d - %d]", status.ActiveWindow.Start, status.ActiveWindow.End),
		Thresholds:   buildThresholds(p),
	}
	if cp, ok := b.catalog.Get(p.ID); ok {
		card.VIP = cp.IsVIP()
		if card.Name == "" {
			card.Name = cp.Name
		}
	}

	if d != nil {
		if d.Analytics != nil {
			for _, wa := range d.Analytics.Windows {
				if wa.PatternID == p.ID {
					hr, roi := wa.HitRate, wa.ROI
					card.HitRate, card.ROI = &hr, &roi
					break
				}
			}
		}
		if pd, ok := d.Distances[p.ID]; ok {
			card.AvgDistance = pd.Statistics.MeanDistance
		}
	}
	return card
}

// Classify runs the classifier with the pattern's own lead warning.
func (b *Builder) Classify(patternID string, distance int, windows []window.Window) window.Status {
	lead := b.leadWarning
	if cp, ok := b.catalog.Get(patternID); ok {
		lead = cp.Lead(lead)
	}
	return window.NewClassifier(lead).Classify(distance, windows)
}

func (b *Builder) Grid(pd telemetry.PatternDistances, name string) DistanceGrid {
	if name == "" {
		name = pd.PatternName
	}
	if name == "" {
		if cp, ok := b.catalog.Get(pd.PatternID); ok {
			name = cp.Name
		}
	}
	return BuildGrid(pd, name, b.catalog.BandsFor(pd.PatternID))
}

func (b *Builder) names(patterns []telemetry.Pattern) map[string]string {
	names := make(map[string]string, len(b.catalog.Patterns))
	for _, cp := range b.catalog.Patterns {
		names[cp.ID] = cp.Name
	}
	for _, p := range patterns {
		if p.Name != "" {
			names[p.ID] = p.Name
		}
	}
	return names
}

func head(spins []telemetry.Spin, n int) []telemetry.Spin {
	if len(spins) > n {
		return spins[:n]
	}
	return spins
}
