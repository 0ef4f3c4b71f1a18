package view

import (
	"fmt"
	"math"
	"sort"

	"spinwatch/clients/telemetry"
	"spinwatch/config"
)

// Distribution chart layout.
var (
	distributionCategories = []string{"1", "2", "5", "10", ResultPachinko, ResultCashHunt, ResultCoinFlip, ResultCrazyTime}
	distributionColors     = map[string]string{
		"1":             "#4299e1",
		"2":             "#ecc94b",
		"5":             "#ed64a6",
		"10":            "#9f7aea",
		ResultPachinko:  "#d53f8c",
		ResultCashHunt:  "#38a169",
		ResultCoinFlip:  "#e53e3e",
		ResultCrazyTime: "#f56565",
	}
)

const (
	distributionMinScale = 10
	histogramBins        = 15
	histogramMinRange    = 50
)

// Series colors of the distance histogram, assigned in catalog order.
var histogramPalette = []string{"#b947ff", "#ff00aa", "#00d4ff", "#00ff88", "#ffdd00", "#ff3366"}

type DistributionBar struct {
	Category      string  `json:"category"`
	Label         string  `json:"label"`
	Color         string  `json:"color"`
	Count         int     `json:"count"`
	HeightPercent float64 `json:"height_percent"`
}

type CategoryStat struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
	Color    string `json:"color"`
}

// Distribution is today's result frequency chart.
type Distribution struct {
	Bars          []DistributionBar `json:"bars"`
	Max           int               `json:"max"`
	Total         int               `json:"total"`
	MostFrequent  CategoryStat      `json:"most_frequent"`
	LeastFrequent CategoryStat      `json:"least_frequent"`
}

// BuildDistribution lays out the fixed categories. The scale never drops
// below 10 so a quiet morning does not render full-height bars.
func BuildDistribution(counts map[string]int) Distribution {
	dist := Distribution{Max: distributionMinScale}
	for _, cat := range distributionCategories {
		if counts[cat] > dist.Max {
			dist.Max = counts[cat]
		}
	}

	for _, cat := range distributionCategories {
		n := counts[cat]
		dist.Total += n
		dist.Bars = append(dist.Bars, DistributionBar{
			Category:      cat,
			Label:         ShortLabel(cat),
			Color:         distributionColors[cat],
			Count:         n,
			HeightPercent: float64(n) / float64(dist.Max) * 100,
		})
	}

	ranked := make([]string, len(distributionCategories))
	copy(ranked, distributionCategories)
	sort.SliceStable(ranked, func(i, j int) bool {
		return counts[ranked[i]] > counts[ranked[j]]
	})
	most, least := ranked[0], ranked[len(ranked)-1]
	dist.MostFrequent = CategoryStat{Category: most, Count: counts[most], Color: distributionColors[most]}
	dist.LeastFrequent = CategoryStat{Category: least, Count: counts[least], Color: distributionColors[least]}

	return dist
}

type HistogramSeries struct {
	PatternID    string   `json:"pattern_id"`
	Name         string   `json:"name"`
	Color        string   `json:"color"`
	Bins         []int    `json:"bins"`
	Samples      int      `json:"samples"`
	MeanDistance *float64 `json:"mean_distance,omitempty"`
}

// DistanceHistogram buckets the distance history of several patterns on a
// shared axis.
type DistanceHistogram struct {
	BinSize      int               `json:"bin_size"`
	BinCount     int               `json:"bin_count"`
	MaxCount     int               `json:"max_count"`
	TotalSamples int               `json:"total_samples"`
	Series       []HistogramSeries `json:"series"`
	Empty        bool              `json:"empty"`
}

// BuildHistogram bins every series with binSize = ceil(max(all, 50) / 15).
// Distances past the last bin land in it.
func BuildHistogram(series []telemetry.PatternDistances, names map[string]string) DistanceHistogram {
	maxDist := histogramMinRange
	total := 0
	for _, s := range series {
		total += len(s.Distances)
		for _, d := range s.Distances {
			if d > maxDist {
				maxDist = d
			}
		}
	}

	h := DistanceHistogram{
		BinSize:      int(math.Ceil(float64(maxDist) / histogramBins)),
		BinCount:     histogramBins,
		MaxCount:     1,
		TotalSamples: total,
		Empty:        total == 0,
		Series:       make([]HistogramSeries, 0, len(series)),
	}

	for i, s := range series {
		bins := make([]int, histogramBins)
		for _, d := range s.Distances {
			b := d / h.BinSize
			if b < 0 {
				b = 0
			}
			if b > histogramBins-1 {
				b = histogramBins - 1
			}
			bins[b]++
			if bins[b] > h.MaxCount {
				h.MaxCount = bins[b]
			}
		}

		name := names[s.PatternID]
		if name == "" {
			name = s.PatternID
		}
		h.Series = append(h.Series, HistogramSeries{
			PatternID:    s.PatternID,
			Name:         name,
			Color:        histogramPalette[i%len(histogramPalette)],
			Bins:         bins,
			Samples:      len(s.Distances),
			MeanDistance: s.Statistics.MeanDistance,
		})
	}

	return h
}

type GridCell struct {
	Distance int    `json:"distance"`
	Class    string `json:"class"`
	Tooltip  string `json:"tooltip"`
}

// DistanceGrid is one pattern's distance history, newest first.
type DistanceGrid struct {
	PatternID string     `json:"pattern_id"`
	Name      string     `json:"name"`
	Cells     []GridCell `json:"cells"`
	Empty     bool       `json:"empty"`
}

// BuildGrid reverses the history and bands every cell.
func BuildGrid(d telemetry.PatternDistances, name string, bands []config.Band) DistanceGrid {
	g := DistanceGrid{
		PatternID: d.PatternID,
		Name:      name,
		Cells:     make([]GridCell, 0, len(d.Distances)),
		Empty:     len(d.Distances) == 0,
	}
	for i := len(d.Distances) - 1; i >= 0; i-- {
		dist := d.Distances[i]
		g.Cells = append(g.Cells, GridCell{
			Distance: dist,
			Class:    "dist-" + BandFor(dist, bands),
			Tooltip:  fmt.Sprintf("%d spins", dist),
		})
	}
	return g
}

// BandFor returns the class of the first band whose Max covers distance.
// Bands without Max match anything; no match at all reads as cold.
func BandFor(distance int, bands []config.Band) string {
	for _, b := range bands {
		if b.Max == nil || distance <= *b.Max {
			return b.Class
		}
	}
	return "cold"
}
