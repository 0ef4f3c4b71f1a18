package app

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"spinwatch/config"
)

// SettingsHandler exposes the live config over HTTP.
type SettingsHandler struct {
	logger     *zap.Logger
	liveConfig *config.LiveConfig
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(logger *zap.Logger, liveConfig *config.LiveConfig) *SettingsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsHandler{
		logger:     logger,
		liveConfig: liveConfig,
	}
}

// RegisterRoutes registers the settings routes on the given router.
func (h *SettingsHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/settings", func(rr chi.Router) {
		rr.Get("/", h.getSettings)
		rr.Put("/", h.updateSettings)
		rr.Post("/", h.updateSettings)
		rr.Post("/reset", h.resetSettings)
		rr.Get("/info", h.settingsInfo)
	})
}

// getSettings returns the current settings as JSON.
func (h *SettingsHandler) getSettings(w http.ResponseWriter, _ *http.Request) {
	cfg := h.liveConfig.Get()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(cfg); err != nil {
		h.logger.Error("failed to encode settings", zap.Error(err))
		http.Error(w, "Failed to encode settings", http.StatusInternalServerError)
		return
	}
}

// updateSettings decodes the body on top of the current config, so partial
// documents only touch the fields they name.
func (h *SettingsHandler) updateSettings(w http.ResponseWriter, r *http.Request) {
	newConfig := h.liveConfig.Get()

	if err := json.NewDecoder(r.Body).Decode(newConfig); err != nil {
		h.logger.Warn("failed to decode settings", zap.Error(err))
		http.Error(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	h.apply(w, newConfig, "settings updated via API")
}

// resetSettings restores defaults but keeps what can only come from the
// environment or needs a restart to change.
func (h *SettingsHandler) resetSettings(w http.ResponseWriter, _ *http.Request) {
	current := h.liveConfig.Get()

	defaults := config.Defaults()
	defaults.IsProd = current.IsProd
	defaults.LogDev = current.LogDev
	defaults.Discord = current.Discord
	defaults.Telegram = current.Telegram
	defaults.Telemetry.APIURL = current.Telemetry.APIURL
	defaults.Catalog = current.Catalog
	defaults.Server = current.Server

	h.apply(w, defaults, "settings reset to defaults via API")
}

func (h *SettingsHandler) apply(w http.ResponseWriter, cfg *config.Config, msg string) {
	if err := h.liveConfig.Update(cfg); err != nil {
		var verr *config.ConfigValidationError
		if errors.As(err, &verr) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": false,
				"errors":  verr.Errors,
			})
			return
		}
		h.logger.Error("failed to update settings", zap.Error(err))
		http.Error(w, "Failed to update settings: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.logger.Info(msg, zap.Int("version", h.liveConfig.Version()))

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success":    true,
		"version":    h.liveConfig.Version(),
		"applied_at": time.Now(),
	})
}

// settingsInfo returns metadata about settings state.
func (h *SettingsHandler) settingsInfo(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"version":      h.liveConfig.Version(),
		"last_updated": h.liveConfig.LastUpdated(),
	})
}
