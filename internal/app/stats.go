package app

import (
	"runtime"
	"time"
)

// ServiceStats holds comprehensive service statistics.
type ServiceStats struct {
	// Build info
	Build struct {
		Commit    string `json:"commit"`
		Time      string `json:"time,omitempty"`
		GoVersion string `json:"go_version"`
	} `json:"build"`

	// Service info
	StartTime string `json:"start_time"`
	Uptime    string `json:"uptime"`
	UptimeSec int64  `json:"uptime_seconds"`

	// Poll stats
	Polls struct {
		Total          int               `json:"total"`
		Full           int               `json:"full"`
		FailedFetches  int               `json:"failed_fetches"`
		LastPollAt     string            `json:"last_poll_at,omitempty"`
		LastPollAgo    string            `json:"last_poll_ago,omitempty"`
		LastDurationMs int64             `json:"last_duration_ms"`
		ChartsAt       string            `json:"charts_at,omitempty"`
		LastErrors     map[string]string `json:"last_errors,omitempty"`
	} `json:"polls"`

	// Alert stats
	Alerts struct {
		Sent             int `json:"sent"`
		Muted            int `json:"muted"`
		TrackedPatterns  int `json:"tracked_patterns"`
		CatalogPatterns  int `json:"catalog_patterns"`
		WebSocketClients int `json:"websocket_clients"`
	} `json:"alerts"`

	// Notification status
	Notifications struct {
		DiscordEnabled   bool   `json:"discord_enabled"`
		DiscordChannelID string `json:"discord_channel_id,omitempty"`
		TelegramEnabled  bool   `json:"telegram_enabled"`
		TelegramChatID   string `json:"telegram_chat_id,omitempty"`
	} `json:"notifications"`

	// Runtime stats
	Runtime struct {
		Goroutines int    `json:"goroutines"`
		HeapAlloc  uint64 `json:"heap_alloc"`  // bytes currently allocated on heap
		HeapSys    uint64 `json:"heap_sys"`    // bytes obtained from system for heap
		HeapInuse  uint64 `json:"heap_inuse"`  // bytes in in-use spans
		StackInuse uint64 `json:"stack_inuse"` // bytes in stack spans
		NumGC      uint32 `json:"num_gc"`      // number of completed GC cycles
		LastGC     string `json:"last_gc"`     // time of last GC
		GoVersion  string `json:"go_version"`
		NumCPU     int    `json:"num_cpu"`
		GOOS       string `json:"goos"`
		GOARCH     string `json:"goarch"`
	} `json:"runtime"`
}

// GetStats returns comprehensive service statistics.
func (r *Runner) GetStats() ServiceStats {
	var stats ServiceStats

	// Build info
	stats.Build.Commit = BuildCommit
	stats.Build.Time = BuildTime
	stats.Build.GoVersion = runtime.Version()

	// Service info
	stats.StartTime = r.startTime.UTC().Format(time.RFC3339)
	uptime := time.Since(r.startTime)
	stats.Uptime = uptime.Round(time.Second).String()
	stats.UptimeSec = int64(uptime.Seconds())

	r.mu.RLock()
	c := r.counters
	chartsAt := r.charts.fetchedAt
	r.mu.RUnlock()

	stats.Polls.Total = c.polls
	stats.Polls.Full = c.chartPolls
	stats.Polls.FailedFetches = c.failedFetch
	stats.Polls.LastDurationMs = c.lastDuration.Milliseconds()
	stats.Polls.LastErrors = c.lastErrors
	if !c.lastPollAt.IsZero() {
		stats.Polls.LastPollAt = c.lastPollAt.UTC().Format(time.RFC3339)
		stats.Polls.LastPollAgo = time.Since(c.lastPollAt).Round(time.Second).String()
	}
	if !chartsAt.IsZero() {
		stats.Polls.ChartsAt = chartsAt.UTC().Format(time.RFC3339)
	}

	stats.Alerts.Sent = c.alertsSent
	stats.Alerts.Muted = c.alertsMuted
	stats.Alerts.TrackedPatterns = r.tracker.Tracked()
	stats.Alerts.CatalogPatterns = len(r.catalog.Patterns)
	stats.Alerts.WebSocketClients = r.hub.Count()

	// Notification status
	cfg := r.liveConfig.Get()
	stats.Notifications.DiscordEnabled = r.clients.Discord != nil && r.clients.Discord.Enabled()
	if stats.Notifications.DiscordEnabled {
		if cfg.IsProd {
			stats.Notifications.DiscordChannelID = cfg.Discord.ProdChannelID
		} else {
			stats.Notifications.DiscordChannelID = cfg.Discord.BetaChannelID
		}
	}
	stats.Notifications.TelegramEnabled = r.clients.Telegram != nil && r.clients.Telegram.Enabled()
	if stats.Notifications.TelegramEnabled {
		if cfg.IsProd {
			stats.Notifications.TelegramChatID = cfg.Telegram.ProdChatID
		} else {
			stats.Notifications.TelegramChatID = cfg.Telegram.BetaChatID
		}
	}

	// Runtime stats
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	stats.Runtime.Goroutines = runtime.NumGoroutine()
	stats.Runtime.HeapAlloc = memStats.HeapAlloc
	stats.Runtime.HeapSys = memStats.HeapSys
	stats.Runtime.HeapInuse = memStats.HeapInuse
	stats.Runtime.StackInuse = memStats.StackInuse
	stats.Runtime.NumGC = memStats.NumGC
	if memStats.LastGC > 0 {
		stats.Runtime.LastGC = time.Unix(0, int64(memStats.LastGC)).UTC().Format(time.RFC3339)
	}
	stats.Runtime.GoVersion = runtime.Version()
	stats.Runtime.NumCPU = runtime.NumCPU()
	stats.Runtime.GOOS = runtime.GOOS
	stats.Runtime.GOARCH = runtime.GOARCH

	return stats
}
