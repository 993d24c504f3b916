package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mlotysz/hivebridge/internal/api/handlers"
	"github.com/mlotysz/hivebridge/internal/api/middleware"
	"github.com/mlotysz/hivebridge/internal/condenser"
	"github.com/mlotysz/hivebridge/internal/db"
	"github.com/mlotysz/hivebridge/internal/follows"
	"github.com/mlotysz/hivebridge/internal/logger"
	"github.com/mlotysz/hivebridge/internal/normalize"
)

func main() {
	godotenv.Load()

	// Parse command-line flags
	var (
		port     = flag.String("port", envOr("PORT", "8080"), "HTTP server port (or set PORT env)")
		dsn      = flag.String("db", os.Getenv("DATABASE_URL"), "Postgres connection string (or set DATABASE_URL env)")
		logLevel = flag.String("log-level", envOr("LOG_LEVEL", "info"), "log level (or set LOG_LEVEL env)")
	)
	flag.Parse()

	// Initialize logger
	log := logger.NewWithLevel(*logLevel)

	if *dsn == "" {
		log.Fatal().Msg("No database configured - set -db or DATABASE_URL")
	}

	ctx := context.Background()

	pool, err := db.Connect(ctx, *dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	// Wire the loader over its collaborators
	store := db.NewStore(pool)
	enricher := follows.NewEnricher(pool)
	loader := condenser.NewLoader(store, enricher, normalize.RepToRaw, normalize.ParseSBD, log)

	// Initialize handlers
	accountsHandler := handlers.NewAccountsHandler(loader, log)
	postsHandler := handlers.NewPostsHandler(loader, log)
	healthHandler := handlers.NewHealthHandler(pool, log)

	// Create router
	mux := http.NewServeMux()

	mux.HandleFunc("/api/accounts", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			accountsHandler.GetAccounts(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/posts", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			postsHandler.GetPosts(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/posts/reblogs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			postsHandler.GetPostsReblogs(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			healthHandler.Health(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.RequestID(
			middleware.Logger(log)(
				middleware.CORS(mux),
			),
		),
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", *port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// envOr returns the environment value for key, or fallback when unset.
func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
