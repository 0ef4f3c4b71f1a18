package config

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Environment
	IsProd bool `json:"is_prod"`

	// Logging
	LogDev bool `json:"-"` // Excluded - env var only

	// Discord
	Discord DiscordConfig `json:"discord"`

	// Telegram
	Telegram TelegramConfig `json:"telegram"`

	// Telemetry API polling
	Telemetry TelemetryConfig `json:"telemetry"`

	// Betting window classification
	Windows WindowsConfig `json:"windows"`

	// Phase transition notifications
	Notifications NotificationsConfig `json:"notifications"`

	// Pattern catalog source
	Catalog CatalogConfig `json:"catalog"`

	// Dashboard server
	Server ServerConfig `json:"server"`
}

// DiscordConfig holds Discord-related configuration.
type DiscordConfig struct {
	BotToken      string `json:"-"` // Excluded - env var only
	ProdChannelID string `json:"prod_channel_id"`
	BetaChannelID string `json:"beta_channel_id"`
}

// TelegramConfig holds Telegram-related configuration.
type TelegramConfig struct {
	BotToken   string `json:"-"` // Excluded - env var only
	ProdChatID string `json:"prod_chat_id"`
	BetaChatID string `json:"beta_chat_id"`
}

// TelemetryConfig holds the telemetry API location and polling cadence.
type TelemetryConfig struct {
	APIURL         string        `json:"api_url"`
	PollInterval   time.Duration `json:"poll_interval"`   // Status, patterns, alerts and spins
	ChartsInterval time.Duration `json:"charts_interval"` // Distance grids and histograms
	RequestTimeout time.Duration `json:"request_timeout"`

	RecentSpinsLimit int `json:"recent_spins_limit"` // API accepts 1..100
	DistancesLimit   int `json:"distances_limit"`    // API accepts 1..200
	GridLimit        int `json:"grid_limit"`
	GapsLimit        int `json:"gaps_limit"` // API accepts 1..100
}

// WindowsConfig holds classifier tunables.
type WindowsConfig struct {
	LeadWarning int `json:"lead_warning"` // Spins before a window opens that count as warming
}

// NotificationsConfig toggles which phase transitions are pushed to notifiers.
type NotificationsConfig struct {
	Enabled  bool `json:"enabled"`
	Warming  bool `json:"warming"`
	InWindow bool `json:"in_window"`
	Hits     bool `json:"hits"`
}

// CatalogConfig points at an optional YAML pattern catalog.
type CatalogConfig struct {
	PatternsFile string `json:"patterns_file"` // Empty = built-in catalog
}

// ServerConfig holds dashboard server configuration.
type ServerConfig struct {
	Enabled bool `json:"enabled"`
	Port    int  `json:"port"`
}

// Clone creates a deep copy of the config.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// ToJSON serializes the config to JSON.
func (c *Config) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// ConfigFromJSON deserializes JSON into a config, merging with base.
func ConfigFromJSON(data []byte, base *Config) (*Config, error) {
	if base == nil {
		base = Defaults()
	}
	cfg := base.Clone()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Defaults returns a config with hardcoded default values.
func Defaults() *Config {
	return &Config{
		IsProd:   false,
		Discord:  DiscordConfig{},
		Telegram: TelegramConfig{},
		Telemetry: TelemetryConfig{
			APIURL:           "http://localhost:5000",
			PollInterval:     3 * time.Second,
			ChartsInterval:   30 * time.Second,
			RequestTimeout:   10 * time.Second,
			RecentSpinsLimit: 50,
			DistancesLimit:   100,
			GridLimit:        80,
			GapsLimit:        20,
		},
		Windows: WindowsConfig{
			LeadWarning: 10,
		},
		Notifications: NotificationsConfig{
			Enabled:  true,
			Warming:  true,
			InWindow: true,
			Hits:     true,
		},
		Server: ServerConfig{
			Enabled: true,
			Port:    8080,
		},
	}
}

// Load loads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		IsProd: envBool("STAGE", "PROD"),
		LogDev: envBoolDefault("LOG_DEV", false),

		Discord: DiscordConfig{
			BotToken:      envString("DISCORD_BOT_TOKEN", ""),
			ProdChannelID: envString("DISCORD_PROD_CHANNEL_ID", ""),
			BetaChannelID: envString("DISCORD_BETA_CHANNEL_ID", ""),
		},

		Telegram: TelegramConfig{
			BotToken:   envString("TELEGRAM_BOT_KEY", ""),
			ProdChatID: envString("TELEGRAM_PROD_CHAT_ID", ""),
			BetaChatID: envString("TELEGRAM_BETA_CHAT_ID", ""),
		},

		Telemetry: TelemetryConfig{
			APIURL:           strings.TrimRight(envString("TELEMETRY_API_URL", "http://localhost:5000"), "/"),
			PollInterval:     envDuration("POLL_INTERVAL", 3*time.Second),
			ChartsInterval:   envDuration("CHARTS_INTERVAL", 30*time.Second),
			RequestTimeout:   envDuration("REQUEST_TIMEOUT", 10*time.Second),
			RecentSpinsLimit: envInt("RECENT_SPINS_LIMIT", 50),
			DistancesLimit:   envInt("DISTANCES_LIMIT", 100),
			GridLimit:        envInt("GRID_LIMIT", 80),
			GapsLimit:        envInt("GAPS_LIMIT", 20),
		},

		Windows: WindowsConfig{
			LeadWarning: envInt("WINDOW_LEAD_WARNING", 10),
		},

		Notifications: NotificationsConfig{
			Enabled:  envBoolDefault("NOTIFY_ENABLED", true),
			Warming:  envBoolDefault("NOTIFY_WARMING", true),
			InWindow: envBoolDefault("NOTIFY_IN_WINDOW", true),
			Hits:     envBoolDefault("NOTIFY_HITS", true),
		},

		Catalog: CatalogConfig{
			PatternsFile: envString("PATTERNS_FILE", ""),
		},

		Server: ServerConfig{
			Enabled: envBoolDefault("SERVER_ENABLED", true),
			Port:    envInt("SERVER_PORT", 8080),
		},
	}
}

// Helper functions for parsing environment variables

func envString(key, defaultVal string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		// Bare numbers are read as seconds
		if secs, err := strconv.Atoi(v); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultVal
}

func envBool(key, trueValue string) bool {
	return strings.EqualFold(strings.TrimSpace(os.Getenv(key)), trueValue)
}

func envBoolDefault(key string, defaultVal bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultVal
	}
	return strings.EqualFold(v, "true") || strings.EqualFold(v, "1") || strings.EqualFold(v, "yes")
}
