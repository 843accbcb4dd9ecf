package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"inferdesk/internal/adapter/inference"
	"inferdesk/internal/domain"
	"inferdesk/internal/infra/config"
	"inferdesk/internal/infra/logger"
	"inferdesk/internal/infra/tracer"
	"inferdesk/internal/usecase"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	baseURL    string
	logLevel   string
}

// runOptions holds the per-command flags for headless runs.
type runOptions struct {
	once bool
	full bool
	text string
}

// app is the wired runtime for one command invocation.
type app struct {
	cfg *config.Config
	log *slog.Logger
	svc domain.InferenceService
	ctx context.Context
}

func (a *app) sessionConfig() usecase.SessionConfig {
	return usecase.SessionConfig{
		Timeout:    a.cfg.Service.RequestTimeout,
		ClipLength: a.cfg.Session.ClipLength,
		Logger:     a.log,
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "inferdesk",
		Short: "Terminal client for the academic inference service",
		Long: `inferdesk talks to an academic inference service from the terminal.

Each command opens its own interactive view. Single-shot commands also run
headless with --once, printing the result and exiting non-zero on failure.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultPath, "config file path")
	root.PersistentFlags().StringVar(&opts.baseURL, "base-url", "", "inference service URL (overrides config)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newGenerateCmd(opts),
		newCodeCmd(opts),
		newHumanizeCmd(opts),
		newSummarizeCmd(opts),
		newReviewCmd(opts),
		newSearchCmd(opts),
	)
	return root
}

// loadConfig reads the config file and applies flag overrides.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, domain.WrapOp("config", fmt.Errorf("%w: %v", domain.ErrConfigLoad, err))
	}
	if o.baseURL == "" && o.logLevel == "" {
		return cfg, nil
	}
	if o.baseURL != "" {
		cfg.Service.BaseURL = o.baseURL
	}
	if o.logLevel != "" {
		cfg.Logger.Level = o.logLevel
	}
	if err := config.Validate(cfg); err != nil {
		return nil, domain.WrapOp("config", fmt.Errorf("%w: %v", domain.ErrConfigLoad, err))
	}
	return cfg, nil
}

// bootstrap wires config, logging, tracing and the inference service.
// Interactive runs keep logs off the terminal.
func (o *rootOptions) bootstrap(ctx context.Context, interactive bool) (*app, func(), error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}

	lc := cfg.Logger
	if interactive {
		lc = logger.ForTUI(lc)
	}
	log, closeLog, err := logger.New(lc)
	if err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}

	shutdownTracer, err := tracer.Setup(ctx, cfg.Tracer)
	if err != nil {
		closeLog()
		return nil, nil, fmt.Errorf("tracer: %w", err)
	}

	svc, closeSvc := inference.New(cfg.Service, log)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	cleanup := func() {
		stop()
		closeSvc()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
			log.Warn("tracer shutdown", "error", err)
		}
		closeLog()
	}

	log.Debug("bootstrapped", "base_url", cfg.Service.BaseURL, "interactive", interactive)
	return &app{cfg: cfg, log: log, svc: svc, ctx: ctx}, cleanup, nil
}

// readText resolves --text, where "-" reads standard input.
func readText(cmd *cobra.Command, text string) (string, error) {
	if text != "-" {
		return text, nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}
