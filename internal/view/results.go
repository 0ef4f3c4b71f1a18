package view

import "strings"

// Wheel segments as reported by the telemetry API.
const (
	ResultCoinFlip  = "CoinFlip"
	ResultCashHunt  = "CashHunt"
	ResultPachinko  = "Pachinko"
	ResultCrazyTime = "CrazyTime"
)

var numberResults = map[string]bool{"1": true, "2": true, "5": true, "10": true}

// ResultClass is the generic CSS class of a result: "result-" followed by
// the lower-cased name with its first space removed.
func ResultClass(result string) string {
	return "result-" + strings.Replace(strings.ToLower(result), " ", "", 1)
}

// TickerClass maps number results to bill classes and bonuses to badges.
func TickerClass(result string) string {
	if numberResults[result] {
		return "bill-" + result
	}
	switch result {
	case ResultCoinFlip:
		return "badge-cf"
	case ResultCashHunt:
		return "badge-ch"
	case ResultPachinko:
		return "badge-pk"
	case ResultCrazyTime:
		return "badge-ct"
	}
	return ResultClass(result)
}

// TickerLabel shortens bonus names for the scrolling ticker.
func TickerLabel(result string) string {
	switch result {
	case ResultCoinFlip:
		return "COIN"
	case ResultCashHunt:
		return "CASH"
	case ResultPachinko:
		return "PACHINKO"
	case ResultCrazyTime:
		return "CRAZY"
	}
	return result
}

// ShortLabel is the two-letter bonus code used by the heatmap and charts.
func ShortLabel(result string) string {
	switch result {
	case ResultCoinFlip:
		return "CF"
	case ResultCashHunt:
		return "CH"
	case ResultPachinko:
		return "PK"
	case ResultCrazyTime:
		return "CT"
	}
	return result
}

// HeatmapClass colors bonuses by kind and numbers by value.
func HeatmapClass(result string) string {
	switch result {
	case ResultCoinFlip:
		return "bonus-cf"
	case ResultCashHunt:
		return "bonus-ch"
	case ResultPachinko:
		return "bonus-pk"
	case ResultCrazyTime:
		return "bonus-ct"
	}
	return "number-" + result
}

// spinTime returns the clock part of an ISO timestamp.
func spinTime(ts string) string {
	if i := strings.IndexByte(ts, 'T'); i >= 0 && i+1 < len(ts) {
		t := ts[i+1:]
		if len(t) > 8 {
			t = t[:8]
		}
		return t
	}
	return ts
}
