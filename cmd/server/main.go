package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/timevault/api/internal/config"
	"github.com/timevault/api/internal/docstore"
	"github.com/timevault/api/internal/handlers"
	"github.com/timevault/api/internal/logger"
	"github.com/timevault/api/internal/middleware"
	"github.com/timevault/api/internal/services/auth"
	"github.com/timevault/api/internal/services/expense"
	"github.com/timevault/api/internal/services/tracking"
	"github.com/timevault/api/internal/store"
	"github.com/timevault/api/internal/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "1.0.0"

func main() {
	// Parse command-line flags
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Override debug mode if flag is set
	debugMode := cfg.ServerDebugMode || *debugFlag

	// Initialize logger
	zapLogger, err := logger.New(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		if syncErr := zapLogger.Sync(); syncErr != nil {
			// Ignore sync errors on exit
			_ = syncErr
		}
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.String("auth_issuer", cfg.AuthIssuer),
		zap.Bool("rate_limiting_enabled", cfg.RedisURL != ""),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	// Initialize OpenTelemetry if enabled
	var tracerProvider interface{ Shutdown(context.Context) error }
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(context.Background(), "timevault-api", version, cfg.OTELEndpoint)
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				tracerProvider = tp
				zapLogger.Info("otel_tracer_initialized",
					zap.String("endpoint", cfg.OTELEndpoint),
				)
				defer func() {
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer shutdownCancel()
					if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	// Connect to the document store
	db, err := docstore.Open(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()

	zapLogger.Info("connected_to_database")

	// Connect to Redis when rate limiting is configured
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			zapLogger.Fatal("failed_to_parse_redis_url", zap.Error(err))
		}
		redisClient = redis.NewClient(opts)

		pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = redisClient.Ping(pingCtx).Err()
		pingCancel()
		if err != nil {
			zapLogger.Fatal("failed_to_connect_to_redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
			}
		}()
		zapLogger.Info("connected_to_redis")
	} else {
		zapLogger.Info("redis_not_configured_rate_limiting_disabled")
	}

	// Initialize repositories
	activityRepo := store.NewActivityRepository(db)
	entryRepo := store.NewTimeEntryRepository(db)
	categoryRepo := store.NewExpenseCategoryRepository(db)
	expenseRepo := store.NewExpenseRepository(db)

	// Initialize services
	trackingService := tracking.NewService(activityRepo, entryRepo, zapLogger)
	expenseService := expense.NewService(categoryRepo, expenseRepo, zapLogger)

	// Initialize token verification
	jwksManager := auth.NewJWKSManager(cfg.AuthJWKSURL)
	verifier := auth.NewVerifier(jwksManager, cfg.AuthIssuer, cfg.AuthAudience)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler()
	activityHandler := handlers.NewActivityHandler(trackingService)
	timeEntryHandler := handlers.NewTimeEntryHandler(trackingService)
	categoryHandler := handlers.NewExpenseCategoryHandler(expenseService)
	expenseHandler := handlers.NewExpenseHandler(expenseService)
	healthChecker := handlers.NewHealthChecker(db, redisClient)

	// Setup router. StrictSlash redirects /activities/ to /activities so
	// clients using either form reach the same handler.
	r := mux.NewRouter().StrictSlash(true)

	// Apply middleware (order matters - executed in registration order,
	// so middleware registered FIRST wraps everything after it)
	zapLogger.Info("setting_up_middleware")

	// 0. OpenTelemetry tracing (if enabled)
	if cfg.OTELEnabled && tracerProvider != nil {
		r.Use(otelmux.Middleware("timevault-api"))
		zapLogger.Info("otel_middleware_enabled")
	}
	// 1. Security headers (should be set on all responses)
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	// 2. CORS from FRONTEND_URL
	r.Use(middleware.CORSFromEnv(cfg.FrontendURL))
	// 3. Request size limits
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	// 4. Content-Type validation for POST/PATCH/PUT requests
	r.Use(middleware.ContentType)
	// 5. Request timeout (30 seconds default)
	r.Use(middleware.Timeout(30 * time.Second))
	// 6. Error handler (catches panics)
	r.Use(middleware.ErrorHandler(zapLogger))
	// 7. Audit logging (for security events)
	r.Use(middleware.Audit(zapLogger))
	// 8. Logging (innermost, executes last before handler)
	r.Use(middleware.Logging(zapLogger))

	// Rate limit middleware (applied to API routes, skipped without Redis)
	rateLimitMW := func(next http.Handler) http.Handler { return next }
	if redisClient != nil {
		rateLimitMW, err = middleware.RateLimit(redisClient, cfg.RateLimitRate)
		if err != nil {
			zapLogger.Fatal("failed_to_create_rate_limiter", zap.Error(err))
		}
	}

	// Public routes (no auth, no rate limiting)
	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods("GET")
	r.HandleFunc("/version", versionInfo).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// OpenAPI spec (public)
	openAPIPath := filepath.Join("api", "openapi", "openapi.yaml")
	openAPIHandler := handlers.NewOpenAPIHandler(openAPIPath)
	openAPIHandler.RegisterRoutes(r)

	// Protected routes
	authMW := middleware.Auth(verifier, zapLogger)

	authRouter := r.PathPrefix("/auth").Subrouter()
	authRouter.Use(authMW)
	authRouter.Use(rateLimitMW)
	authHandler.RegisterRoutes(authRouter)

	activitiesRouter := r.PathPrefix("/activities").Subrouter()
	activitiesRouter.Use(authMW)
	activitiesRouter.Use(rateLimitMW)
	activityHandler.RegisterRoutes(activitiesRouter)

	timeEntriesRouter := r.PathPrefix("/time_entries").Subrouter()
	timeEntriesRouter.Use(authMW)
	timeEntriesRouter.Use(rateLimitMW)
	timeEntryHandler.RegisterRoutes(timeEntriesRouter)

	categoriesRouter := r.PathPrefix("/expense_categories").Subrouter()
	categoriesRouter.Use(authMW)
	categoriesRouter.Use(rateLimitMW)
	categoryHandler.RegisterRoutes(categoriesRouter)

	expensesRouter := r.PathPrefix("/expenses").Subrouter()
	expensesRouter.Use(authMW)
	expensesRouter.Use(rateLimitMW)
	expenseHandler.RegisterRoutes(expensesRouter)

	// Catch-all OPTIONS handler for preflight requests. The CORS
	// middleware sets headers before this is reached.
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Setup server
	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        r,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB max header size
	}

	// Start server in a goroutine
	go func() {
		zapLogger.Info("server_starting",
			zap.String("port", cfg.ServerPort),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}

func versionInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprintf(w, `{"version":"%s","timestamp":"%s"}`, version, time.Now().UTC().Format(time.RFC3339)); err != nil {
		// Plain endpoint, nothing useful to do with a write error
		_ = err
	}
}
