package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/hrconnect/hr-directory/config"
	"github.com/hrconnect/hr-directory/internal/catalog"
	"github.com/hrconnect/hr-directory/internal/handlers"
	"github.com/hrconnect/hr-directory/internal/middleware"
	"github.com/hrconnect/hr-directory/internal/session"
	"github.com/hrconnect/hr-directory/pkg/contactapi"
	"github.com/hrconnect/hr-directory/pkg/httpclient"
	"github.com/hrconnect/hr-directory/pkg/jwt"
	"github.com/hrconnect/hr-directory/pkg/logger"
	"github.com/hrconnect/hr-directory/pkg/metrics"
	"github.com/hrconnect/hr-directory/pkg/profiling"
	"github.com/hrconnect/hr-directory/pkg/tracing"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// registerDirectoryRoutes registers the page and its event endpoints
func registerDirectoryRoutes(
	router *gin.Engine,
	sessionMiddleware gin.HandlerFunc,
	generalRateLimiter, writeRateLimiter *middleware.RateLimiter,
	directoryHandler *handlers.DirectoryHandler,
	formHandler *handlers.FormHandler,
) {
	router.GET("/", generalRateLimiter.Middleware(), sessionMiddleware, directoryHandler.Page)

	dir := router.Group("/directory")
	dir.Use(generalRateLimiter.Middleware(), sessionMiddleware)

	dir.GET("/view", directoryHandler.View)
	dir.GET("/events", directoryHandler.Events)
	dir.POST("/query", directoryHandler.SetQuery)
	dir.POST("/role", directoryHandler.SetRole)
	dir.POST("/location", directoryHandler.SetLocation)
	dir.POST("/page", directoryHandler.SetPage)
	dir.POST("/clear", directoryHandler.Clear)

	dir.GET("/form", formHandler.Get)
	dir.POST("/form/open", formHandler.Open)
	dir.POST("/form/close", formHandler.Close)
	dir.POST("/form/field", formHandler.SetField)
	dir.POST("/contacts", writeRateLimiter.Middleware(), formHandler.Submit)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting HR Directory",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.Server.AppEnv),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(shutdownCtx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	stopProfiler, err := profiling.InitProfiler(cfg.Profiling, cfg.Observability, cfg.Server.AppEnv)
	if err != nil {
		logger.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	defer stopProfiler()

	metrics.RecordInfrastructureMetrics(ctx)

	contactClient, err := contactapi.NewClient(cfg.ContactAPI.BaseURL, httpclient.NewClient(cfg.ContactAPITimeout()))
	if err != nil {
		logger.Fatal("Failed to initialize contact API client", zap.Error(err))
	}

	cat := catalog.Default()
	store := session.NewStore(session.StoreConfig{
		TTL:             cfg.SessionTTL(),
		CleanupInterval: time.Duration(cfg.Session.CleanupInterval) * time.Second,
		Options: session.Options{
			Backend:        contactClient,
			Catalog:        cat,
			SearchDebounce: cfg.SearchDebounce(),
			FetchTimeout:   cfg.FetchTimeout(),
		},
	})
	defer store.Close()

	tokenManager := jwt.NewTokenManager(cfg.Session.Secret, cfg.Session.Issuer, cfg.SessionTTL())
	sessionMiddleware := middleware.SessionMiddleware(store, tokenManager, middleware.CookieConfig{
		Domain: cfg.Session.CookieDomain,
		Secure: cfg.Session.CookieSecure,
	})

	directoryHandler := handlers.NewDirectoryHandler(cat, cfg.InitialLoadWait())
	formHandler := handlers.NewFormHandler()
	healthHandler := handlers.NewHealthHandler(contactClient.Available, store.Count)

	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName))
	router.Use(middleware.ObservabilityMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.BodySizeLimitMiddleware(middleware.DefaultMaxBodySize))

	allowedOrigins := cfg.Server.AllowedOrigins
	if cfg.IsDevelopment() {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000", "http://127.0.0.1:3000")
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "traceparent", "tracestate"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true, // session cookie
		MaxAge:           12 * time.Hour,
	}))

	generalRateLimiter := middleware.NewRateLimiter(ctx, 50, 100) // typing fires one request per keystroke
	writeRateLimiter := middleware.NewRateLimiter(ctx, 1, 5)

	api := router.Group("/api")
	api.GET("/healthcheck", healthHandler.Healthcheck)
	api.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	registerDirectoryRoutes(router, sessionMiddleware, generalRateLimiter, writeRateLimiter, directoryHandler, formHandler)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		// no WriteTimeout: /directory/events streams for the life of the page
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
	srv.RegisterOnShutdown(store.Close)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Server started", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		return
	}
	logger.Info("Server exited")
}
