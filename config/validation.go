package config

import (
	"fmt"
	"net/url"
	"time"
)

// ValidationError represents a validation error for a specific field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult holds the result of config validation.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// Validate checks the config for invalid values.
func (c *Config) Validate() ValidationResult {
	var errors []ValidationError

	errors = append(errors, validateTelemetry(&c.Telemetry)...)
	errors = append(errors, validateWindows(&c.Windows)...)
	errors = append(errors, validateServer(&c.Server)...)

	return ValidationResult{
		Valid:  len(errors) == 0,
		Errors: errors,
	}
}

func validateTelemetry(tc *TelemetryConfig) []ValidationError {
	var errors []ValidationError

	if u, err := url.Parse(tc.APIURL); err != nil || u.Scheme == "" || u.Host == "" {
		errors = append(errors, ValidationError{
			Field:   "telemetry.api_url",
			Message: "must be an absolute http(s) URL",
		})
	}

	if tc.PollInterval < 1*time.Second {
		errors = append(errors, ValidationError{
			Field:   "telemetry.poll_interval",
			Message: "must be at least 1 second",
		})
	}

	if tc.ChartsInterval < tc.PollInterval {
		errors = append(errors, ValidationError{
			Field:   "telemetry.charts_interval",
			Message: "must not be shorter than poll_interval",
		})
	}

	if tc.RequestTimeout < 100*time.Millisecond {
		errors = append(errors, ValidationError{
			Field:   "telemetry.request_timeout",
			Message: "must be at least 100 milliseconds",
		})
	}

	errors = append(errors, validateRange("telemetry.recent_spins_limit", tc.RecentSpinsLimit, 1, 100)...)
	errors = append(errors, validateRange("telemetry.distances_limit", tc.DistancesLimit, 1, 200)...)
	errors = append(errors, validateRange("telemetry.grid_limit", tc.GridLimit, 1, 200)...)
	errors = append(errors, validateRange("telemetry.gaps_limit", tc.GapsLimit, 1, 100)...)

	return errors
}

func validateWindows(wc *WindowsConfig) []ValidationError {
	var errors []ValidationError

	if wc.LeadWarning < 0 {
		errors = append(errors, ValidationError{
			Field:   "windows.lead_warning",
			Message: "must be non-negative",
		})
	}

	return errors
}

func validateServer(sc *ServerConfig) []ValidationError {
	return validateRange("server.port", sc.Port, 1, 65535)
}

func validateRange(field string, v, min, max int) []ValidationError {
	if v < min || v > max {
		return []ValidationError{{
			Field:   field,
			Message: fmt.Sprintf("must be between %d and %d, got %d", min, max, v),
		}}
	}
	return nil
}
