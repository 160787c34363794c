// Package main provides the coverage API service entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/medisure/go-coverage/internal/api/handlers"
	"github.com/medisure/go-coverage/internal/api/middleware"
	"github.com/medisure/go-coverage/internal/domain/medication"
	"github.com/medisure/go-coverage/internal/infrastructure/memory"
	"github.com/medisure/go-coverage/internal/infrastructure/postgres"
	"github.com/medisure/go-coverage/internal/observability/metrics"
	"github.com/medisure/go-coverage/internal/observability/tracing"
	"github.com/medisure/go-coverage/internal/relay"
)

// Config holds application configuration.
type Config struct {
	Port             string
	DatabaseURL      string
	ChatUpstreamURL  string
	ChatAPIKey       string
	ChatModel        string
	ChatTimeout      time.Duration
	DefaultBasePrice float64
	StrictLookup     bool
	OTLPEndpoint     string
}

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg := loadConfig()

	ctx := context.Background()

	// Tracing is optional; skipped when no collector endpoint is set.
	if cfg.OTLPEndpoint != "" {
		tracingCfg := tracing.DefaultConfig("coverage-api")
		tracingCfg.OTLPEndpoint = cfg.OTLPEndpoint
		provider, err := tracing.Init(ctx, tracingCfg)
		if err != nil {
			logger.Warn("tracing init failed", zap.Error(err))
		} else {
			defer provider.Shutdown(context.Background())
		}
	}

	// Pick the store: postgres when configured, in-memory otherwise.
	var store medication.Store
	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		var err error
		pool, err = pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			logger.Fatal("database ping failed", zap.Error(err))
		}

		pgStore := postgres.NewStore(pool, logger)
		if err := pgStore.Migrate(ctx); err != nil {
			logger.Fatal("migration failed", zap.Error(err))
		}
		store = pgStore
		logger.Info("connected to database")
	} else {
		store = memory.NewStore()
		logger.Warn("DATABASE_URL not set, using in-memory store")
	}

	m := metrics.New()

	medSvc := medication.NewService(store, medication.ServiceConfig{
		DefaultBasePrice: cfg.DefaultBasePrice,
		StrictLookup:     cfg.StrictLookup,
	}, logger)
	medHandler := handlers.NewMedicationHandler(medSvc, m, logger)

	provider, err := relay.NewClient(relay.ClientConfig{
		BaseURL: cfg.ChatUpstreamURL,
		APIKey:  cfg.ChatAPIKey,
		Model:   cfg.ChatModel,
	})
	if err != nil {
		logger.Fatal("chat provider setup failed", zap.Error(err))
	}
	chatRelay, err := relay.New(provider, relay.Config{Timeout: cfg.ChatTimeout}, logger)
	if err != nil {
		logger.Fatal("chat relay setup failed", zap.Error(err))
	}
	chatHandler := handlers.NewChatHandler(chatRelay, m, logger)

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS)
	r.Use(middleware.Recover(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Tracing("coverage-api"))

	r.Get("/health", healthHandler)
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if pool != nil {
			if err := pool.Ping(r.Context()); err != nil {
				http.Error(w, "not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ready"))
	})
	r.Handle("/metrics", metrics.Handler())

	r.Mount("/medications", medHandler.Routes())
	r.Mount("/chat", chatHandler.Routes())

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", zap.Error(err))
		}
	}()

	logger.Info("starting coverage API", zap.String("port", cfg.Port))
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}

	logger.Info("server stopped")
}

func loadConfig() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	chatModel := os.Getenv("CHAT_MODEL")
	if chatModel == "" {
		chatModel = "gpt-4o-mini"
	}

	chatTimeout := 8 * time.Second
	if v := os.Getenv("CHAT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			chatTimeout = d
		}
	}

	defaultBasePrice := 100.00
	if v := os.Getenv("DEFAULT_BASE_PRICE"); v != "" {
		if price, err := strconv.ParseFloat(v, 64); err == nil && price > 0 {
			defaultBasePrice = price
		}
	}

	return Config{
		Port:             port,
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		ChatUpstreamURL:  os.Getenv("CHAT_UPSTREAM_URL"),
		ChatAPIKey:       os.Getenv("CHAT_API_KEY"),
		ChatModel:        chatModel,
		ChatTimeout:      chatTimeout,
		DefaultBasePrice: defaultBasePrice,
		StrictLookup:     os.Getenv("STRICT_LOOKUP") == "true",
		OTLPEndpoint:     os.Getenv("OTLP_ENDPOINT"),
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"healthy","service":"coverage-api","version":"1.0.0"}`)
}
