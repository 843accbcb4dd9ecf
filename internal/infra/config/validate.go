package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

// ValidationError accumulates config validation errors.
type ValidationError struct {
	Errors []string
}

func (v *ValidationError) Error() string {
	return "config validation failed:\n  - " + strings.Join(v.Errors, "\n  - ")
}

// HasErrors reports whether any validation errors have been recorded.
func (v *ValidationError) HasErrors() bool {
	return len(v.Errors) > 0
}

// Add records a formatted validation error.
func (v *ValidationError) Add(format string, args ...interface{}) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

// Validate checks cfg for structural correctness. It returns a *ValidationError
// when one or more problems are found, allowing callers to inspect all issues.
func Validate(cfg *Config) error {
	ve := &ValidationError{}
	validateService(cfg, ve)
	validateSession(cfg, ve)
	validateExport(cfg, ve)
	validateTUI(cfg, ve)
	validateLogger(cfg, ve)
	validateTracer(cfg, ve)
	if ve.HasErrors() {
		return ve
	}
	return nil
}

func validateService(cfg *Config, ve *ValidationError) {
	s := cfg.Service
	if s.BaseURL == "" {
		ve.Add("service.base_url is required")
	} else if u, err := url.Parse(s.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		ve.Add("service.base_url %q must be an http(s) URL", s.BaseURL)
	}
	if s.ConnTimeout < 0 {
		ve.Add("service.conn_timeout must not be negative")
	}
	if s.RespTimeout < 0 {
		ve.Add("service.resp_timeout must not be negative")
	}
	if s.RequestsPerMinute < 0 {
		ve.Add("service.requests_per_minute must not be negative, got %d", s.RequestsPerMinute)
	}
	if s.RequestsPerMinute > 0 && s.Burst <= 0 {
		ve.Add("service.burst must be positive when requests_per_minute is set")
	}
	if cb := s.CircuitBreaker; cb.Enabled {
		if cb.Timeout < 0 || cb.Interval < 0 {
			ve.Add("service.circuit_breaker durations must not be negative")
		}
	}
}

func validateSession(cfg *Config, ve *ValidationError) {
	if cfg.Session.ClipLength <= 0 {
		ve.Add("session.clip_length must be positive, got %d", cfg.Session.ClipLength)
	}
	if cfg.Session.WordLimit <= 0 {
		ve.Add("session.word_limit must be positive, got %d", cfg.Session.WordLimit)
	}
}

func validateExport(cfg *Config, ve *ValidationError) {
	if cfg.Export.FontSize <= 0 {
		ve.Add("export.font_size must be positive")
	}
	if f := cfg.Export.FontFile; f != "" {
		if _, err := os.Stat(f); err != nil {
			ve.Add("export.font_file: %v", err)
		}
		return
	}
	switch strings.ToLower(cfg.Export.FontFamily) {
	case "helvetica", "arial", "times", "courier":
	default:
		ve.Add("export.font_family %q is not a core PDF font", cfg.Export.FontFamily)
	}
}

func validateTUI(cfg *Config, ve *ValidationError) {
	switch cfg.TUI.StreamSpeed {
	case "normal", "fast", "instant":
	default:
		ve.Add("tui.stream_speed %q must be one of normal, fast, instant", cfg.TUI.StreamSpeed)
	}
}

func validateLogger(cfg *Config, ve *ValidationError) {
	switch strings.ToLower(cfg.Logger.Level) {
	case "debug", "info", "warn", "error":
	default:
		ve.Add("logger.level %q must be one of debug, info, warn, error", cfg.Logger.Level)
	}
	switch cfg.Logger.Format {
	case "text", "json":
	default:
		ve.Add("logger.format %q must be text or json", cfg.Logger.Format)
	}
}

func validateTracer(cfg *Config, ve *ValidationError) {
	switch cfg.Tracer.Exporter {
	case "", "noop", "stdout":
	default:
		ve.Add("tracer.exporter %q is not supported", cfg.Tracer.Exporter)
	}
}
