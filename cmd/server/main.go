// Package main is the entry point for the Jan Sunwai grievance backend
// server. It provides a REST API for complaint submission with automatic
// validation and risk scoring, complaint retrieval, status workflow,
// activity logging, and analytics.
//
// Validation pipeline:
//   - GPS coordinates are cross-checked against the complaint address
//     via reverse geocoding (Nominatim, Redis-cached)
//   - Nearby recent complaints and duplicate attachments are detected
//   - Each complaint is scored low/medium/high and flagged for manual
//     review when warranted
//
// Validation never rejects a submission; its findings are stored with
// the complaint for triage.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jansunwai/grievance-server/internal/config"
	"github.com/jansunwai/grievance-server/internal/database"
	"github.com/jansunwai/grievance-server/internal/geocode"
	"github.com/jansunwai/grievance-server/internal/handlers"
	"github.com/jansunwai/grievance-server/internal/middleware"
	"github.com/jansunwai/grievance-server/internal/services"
)

func main() {
	// Initialize structured logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	sugar := logger.Sugar()

	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		sugar.Fatalf("Failed to load config: %v", err)
	}

	sugar.Infow("Starting Jan Sunwai Grievance Server",
		"port", cfg.Port,
		"env", cfg.Environment,
	)

	// Initialize database connection pool
	db, err := database.NewPool(cfg.DatabaseURL)
	if err != nil {
		sugar.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Redis cache for geocode responses
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		sugar.Fatalf("Invalid REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	// Reverse-geocoding oracle: Nominatim behind the Redis cache
	nominatim := geocode.NewClient(sugar,
		geocode.WithBaseURL(cfg.NominatimBaseURL),
		geocode.WithUserAgent(cfg.GeocodeUserAgent),
		geocode.WithRateLimit(cfg.GeocodeRPS),
	)
	oracle := geocode.NewCachedOracle(nominatim, rdb, cfg.GeocodeCacheTTL, sugar)

	// Initialize services
	complaintSvc := services.NewComplaintService(db, oracle, cfg.ValidationConfig(), sugar)
	activitySvc := services.NewActivityLogService(db, sugar)
	backfillWorker := services.NewBackfillWorker(complaintSvc, cfg.BackfillBatchSize, sugar)

	// Start background worker (re-validates complaints missing an assessment)
	go backfillWorker.Start(context.Background(), cfg.BackfillInterval)

	// Initialize handlers
	complaintHandler := handlers.NewComplaintHandler(complaintSvc, activitySvc, sugar)
	activityHandler := handlers.NewActivityHandler(activitySvc, sugar)
	healthHandler := handlers.NewHealthHandler(db, sugar)

	// Build router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.StructuredLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.SecurityHeaders())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Rate limiting
	r.Use(middleware.RateLimit(cfg.RateLimitRPM))

	// API Routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", healthHandler.Check)
		r.Get("/health/ready", healthHandler.Ready)

		// Complaint endpoints
		r.Route("/complaints", func(r chi.Router) {
			r.Post("/", complaintHandler.Submit)
			r.Get("/", complaintHandler.List)
			r.Get("/count", complaintHandler.Count)
			r.Get("/{id}", complaintHandler.Get)

			// Status changes require an authority token
			r.With(middleware.RequireAuth(cfg.JWTSecret)).
				Patch("/{id}/status", complaintHandler.UpdateStatus)
		})

		// Activity log endpoints
		r.Route("/activity", func(r chi.Router) {
			r.Post("/", activityHandler.Log)
			r.Get("/complaint/{id}", activityHandler.ByComplaint)
			r.With(middleware.RequireAuth(cfg.JWTSecret)).
				Get("/recent", activityHandler.Recent)
		})

		// Analytics endpoints (admin)
		r.Route("/analytics", func(r chi.Router) {
			r.Use(middleware.RequireAuth(cfg.JWTSecret))
			r.Get("/trends", complaintHandler.Trends)
			r.Get("/categories", complaintHandler.Categories)
			r.Get("/districts", complaintHandler.Districts)
			r.Get("/risk-levels", complaintHandler.RiskLevels)
		})
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sugar.Infof("Server listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	sugar.Info("Shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		sugar.Fatalf("Forced shutdown: %v", err)
	}

	sugar.Info("Server stopped")
}
