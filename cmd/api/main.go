package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/formgate/formgate-api/config"
	"github.com/formgate/formgate-api/internal/form"
	"github.com/formgate/formgate-api/internal/handlers"
	"github.com/formgate/formgate-api/internal/mailer"
	"github.com/formgate/formgate-api/internal/middleware"
	"github.com/formgate/formgate-api/internal/pdf"
	"github.com/formgate/formgate-api/internal/ratelimit"
	"github.com/formgate/formgate-api/internal/services"
	"github.com/formgate/formgate-api/pkg/logger"
	"github.com/formgate/formgate-api/pkg/metrics"
	"github.com/formgate/formgate-api/pkg/profiling"
	"github.com/formgate/formgate-api/pkg/tracing"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting formgate API",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.Server.AppEnv),
	)

	// Initialize distributed tracing
	tracerShutdown, err := tracing.InitTracer(
		cfg.Observability.ServiceName,
		cfg.Observability.ServiceNamespace,
		cfg.Observability.ServiceVersion,
		cfg.Observability.ServiceInstanceID,
		cfg.Server.AppEnv,
		cfg.Observability.ExporterEndpoint,
	)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(ctx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	// Initialize continuous profiling
	profilerStop, err := profiling.InitProfiler(
		cfg.Profiling,
		cfg.Observability.ServiceName,
		cfg.Observability.ServiceNamespace,
		cfg.Observability.ServiceVersion,
		cfg.Observability.ServiceInstanceID,
		cfg.Server.AppEnv,
	)
	if err != nil {
		logger.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	defer profilerStop()

	// Start infrastructure metrics collection
	metrics.RecordInfrastructureMetrics()

	// Submission gate: fixed-window counter per client
	store := ratelimit.NewCacheStore()
	gate := ratelimit.NewLimiter(store, cfg.RateLimit.MaxRequests, cfg.RateLimitWindow())
	gate.StartSweeper(time.Duration(cfg.RateLimit.SweepIntervalMinutes) * time.Minute)
	defer gate.Stop()

	// Domain core
	sanitizer := form.NewSanitizer(cfg.Sanitizer.MaxFieldLength, cfg.Sanitizer.StripSemicolon)
	validator := form.NewValidator()

	// Collaborators: PDF renderer and mail sender. Without an SMTP host the
	// service logs submissions instead of mailing them (local testing).
	renderer := pdf.NewRenderer()
	var sender services.MailSender
	if cfg.MailDeliveryEnabled() {
		sender = mailer.NewSMTPMailer(cfg.SMTP, cfg.Delivery.SubjectPrefix)
	} else {
		logger.Warn("SMTP_HOST not configured, submissions will be logged instead of mailed")
		sender = mailer.NewLogMailer()
	}

	submissionService := services.NewSubmissionService(gate, sanitizer, validator, renderer, sender, cfg.DeliveryTimeout())

	submissionHandler := handlers.NewSubmissionHandler(submissionService)
	healthHandler := handlers.NewHealthHandler(cfg.MailDeliveryEnabled())

	// Set up Gin router
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName))
	router.Use(middleware.ObservabilityMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// CORS: only configured origins, plus localhost in development
	allowedOrigins := cfg.Server.AllowedOrigins
	if cfg.IsDevelopment() {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000", "http://127.0.0.1:3000", "http://localhost:8000")
	}

	if len(allowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins: allowedOrigins,
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Accept", "traceparent", "tracestate"},
			MaxAge:       12 * time.Hour,
		}))
	} else {
		logger.Warn("CORS disabled: ALLOWED_CORS_ORIGINS not configured")
	}

	// Coarse per-IP limiters in front of the routes; the contact endpoint has
	// its own fixed-window gate on top
	generalRateLimiter := middleware.NewIPRateLimiter(100, 200)
	contactRateLimiter := middleware.NewIPRateLimiter(5, 10)
	defer generalRateLimiter.Stop()
	defer contactRateLimiter.Stop()

	api := router.Group("/api")
	api.GET("/healthcheck", generalRateLimiter.Middleware(), healthHandler.Healthcheck)
	api.GET("/metrics", generalRateLimiter.Middleware(), gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	v1 := router.Group("/api/v1")
	v1.POST("/contact", contactRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(100*1024), submissionHandler.SubmitContactForm)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
