package integration

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"inferdesk/internal/adapter/inference"
	"inferdesk/internal/domain"
	"inferdesk/internal/infra/config"
)

// Config holds integration test configuration from environment
type Config struct {
	BaseURL     string
	APIKey      string
	SamplePDF   string
	TestTimeout time.Duration
	SkipSlow    bool
}

// LoadConfig loads integration test configuration from environment
func LoadConfig() *Config {
	return &Config{
		BaseURL:     os.Getenv("INFERDESK_IT_BASE_URL"),
		APIKey:      os.Getenv("INFERDESK_IT_API_KEY"),
		SamplePDF:   os.Getenv("INFERDESK_IT_PDF"),
		TestTimeout: 3 * time.Minute,
		SkipSlow:    os.Getenv("SKIP_SLOW_TESTS") == "1",
	}
}

// SkipIfNoService skips the test if no inference service is configured
func SkipIfNoService(t *testing.T, cfg *Config) {
	t.Helper()
	if cfg.BaseURL == "" {
		t.Skip("Skipping integration test: INFERDESK_IT_BASE_URL not set")
	}
}

// SkipIfShort skips integration tests in short mode
func SkipIfShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}

// NewTestContext creates a context with timeout for integration tests
func NewTestContext(t *testing.T, timeout time.Duration) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}

// NewService builds the production service stack against cfg.BaseURL.
func NewService(t *testing.T, cfg *Config) domain.InferenceService {
	t.Helper()
	sc := config.Defaults().Service
	sc.BaseURL = cfg.BaseURL
	sc.APIKey = cfg.APIKey
	svc, closeFn := inference.New(sc, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(closeFn)
	return svc
}
