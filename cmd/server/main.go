// Advisor sandbox server: usage-gated AI workflow missions with XP and
// badge progression.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/lucidra/sandbox-server/internal/api"
	"github.com/lucidra/sandbox-server/internal/catalog"
	"github.com/lucidra/sandbox-server/internal/config"
	"github.com/lucidra/sandbox-server/internal/events"
	"github.com/lucidra/sandbox-server/internal/identity"
	"github.com/lucidra/sandbox-server/internal/middleware"
	"github.com/lucidra/sandbox-server/internal/mission"
	"github.com/lucidra/sandbox-server/internal/progression"
	"github.com/lucidra/sandbox-server/internal/sandbox"
	"github.com/lucidra/sandbox-server/internal/store"
	"github.com/lucidra/sandbox-server/internal/tokens"
	"github.com/lucidra/sandbox-server/internal/usage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	// Initialize persistence.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	// Initialize the core: ledger, mission store, progression engine.
	ledger := usage.NewLedger(repo)
	if err := ledger.Load(context.Background()); err != nil {
		slog.Error("Failed to load sessions", "error", err)
		os.Exit(1)
	}

	engine := progression.NewEngine(repo, catalog.Badges())
	if err := engine.Load(context.Background()); err != nil {
		slog.Error("Failed to load user progress", "error", err)
		os.Exit(1)
	}

	missions := mission.NewStore(repo, engine)
	if err := missions.Load(context.Background()); err != nil {
		slog.Error("Failed to load missions", "error", err)
		os.Exit(1)
	}
	slog.Info("Core state loaded")

	estimator := tokens.NewEstimator()
	if !estimator.IsPrecise() {
		slog.Warn("Tokenizer data unavailable, using heuristic token estimates")
	}

	hub := events.NewHub()
	facade := sandbox.New(ledger, missions, engine, estimator, hub)

	// Initialize handlers.
	sandboxHandler := api.NewSandboxHandler(facade)
	sessionHandler := api.NewSessionHandler(ledger)
	healthHandler := api.NewHealthHandler(repo)
	wsHandler := events.NewWebSocketHandler(hub, cfg.FrontendURL, cfg.IsDevelopment())

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	allowedOrigins := []string{"*"}
	if !cfg.IsDevelopment() {
		allowedOrigins = []string{cfg.FrontendURL}
	}
	r.Use(middleware.CORS(allowedOrigins))
	r.Use(identity.Middleware(ledger))

	healthHandler.RegisterRoutes(r)
	sessionHandler.RegisterRoutes(r)
	sandboxHandler.RegisterRoutes(r)

	// WebSocket endpoint for live progression events.
	r.Get("/ws/progress", wsHandler.ServeHTTP)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // progression streams stay open indefinitely
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start the idle-session reaper.
	usage.StartReaper(ctx, ledger, cfg.ReapInterval, cfg.SessionMaxIdle)

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
