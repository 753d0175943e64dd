package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/use-agent/aeoaudit/api"
	"github.com/use-agent/aeoaudit/audit"
	"github.com/use-agent/aeoaudit/cache"
	"github.com/use-agent/aeoaudit/config"
	"github.com/use-agent/aeoaudit/fetcher"
	"github.com/use-agent/aeoaudit/llm"
	"github.com/use-agent/aeoaudit/metrics"
	"github.com/use-agent/aeoaudit/webhook"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	// A missing .env is fine; the environment alone is enough.
	_ = godotenv.Load()
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("aeoaudit starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"model", cfg.Oracle.Model,
	)

	// ── 3. Metrics ──────────────────────────────────────────────────
	m := metrics.New(cfg.Server.MetricsNamespace)

	// ── 4. Scoring oracle ───────────────────────────────────────────
	deps := audit.Deps{
		Fetcher: fetcher.New(fetcher.Options{
			Timeout:   cfg.Fetch.Timeout,
			UserAgent: cfg.Fetch.UserAgent,
		}),
		Metrics: m,
	}
	if cfg.Oracle.APIKey != "" {
		client := llm.NewClient(nil, llm.Params{
			APIKey:      cfg.Oracle.APIKey,
			Model:       cfg.Oracle.Model,
			BaseURL:     cfg.Oracle.BaseURL,
			Temperature: cfg.Oracle.Temperature,
			MaxTokens:   cfg.Oracle.MaxTokens,
		}, cfg.Oracle.RatePerMinute)
		client.OnUsage = func(u llm.Usage) {
			m.RecordTokens(cfg.Oracle.Model, u.PromptTokens, u.CompletionTokens)
		}
		deps.Oracle = client
	} else {
		slog.Warn("no oracle API key configured, /audit is disabled")
	}

	bestPractices := ""
	if cfg.Oracle.BestPracticesFile != "" {
		b, err := os.ReadFile(cfg.Oracle.BestPracticesFile)
		if err != nil {
			slog.Error("failed to read best practices file", "path", cfg.Oracle.BestPracticesFile, "error", err)
			os.Exit(1)
		}
		bestPractices = string(b)
	}

	// ── 5. Cache + webhook ──────────────────────────────────────────
	cc := cache.New(cfg.Cache.MaxEntries, cfg.Cache.TTL)
	defer cc.Close()
	deps.Cache = cc

	sender := webhook.NewSender(cfg.Webhook.Secret, cfg.Webhook.Timeout)
	sender.OnResult = m.RecordWebhook
	deps.Webhook = sender

	svc := audit.New(deps, audit.Options{
		Model:                 cfg.Oracle.Model,
		OracleTimeout:         cfg.Oracle.Timeout,
		BestPractices:         bestPractices,
		MaxWords:              cfg.Extract.MaxWords,
		SchemaCap:             cfg.Extract.SchemaCap,
		SkipLanguageDetection: cfg.Extract.SkipLanguageDetection,
		DefaultMaxAge:         cfg.Cache.DefaultMaxAge,
	})

	// ── 6. Setup router ─────────────────────────────────────────────
	router := api.NewRouter(svc, cfg, m, time.Now())

	// ── 7. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 8. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Audits wait on the oracle, so allow in-flight requests the oracle
	// timeout to finish.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Oracle.Timeout+5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	slog.Info("aeoaudit stopped")
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
