package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"bioreport/internal/config"
	apperrors "bioreport/internal/errors"
	"bioreport/internal/infrastructure"
	customMiddleware "bioreport/internal/middleware"
	"bioreport/internal/report"
	"bioreport/internal/services"
	handlers "bioreport/internal/transport/http"
	"bioreport/pkg/contracts"
)

const AppName = "BioReport Copilot"

// VERSION and BuildTime come from the contracts package so the API and the
// binary report the same numbers.
var (
	VERSION   = contracts.Version
	BuildTime = contracts.BuildTime
)

// Application represents the main application container
type Application struct {
	Config          *config.Config
	Router          *chi.Mux
	Server          *http.Server
	ResearchService *services.ResearchService
	HealthService   *services.HealthService
	ReportExporter  *report.Exporter
	Metrics         *infrastructure.Metrics
	Logger          *slog.Logger
	OTelProviders   *infrastructure.OTelProviders
}

// NewApplication creates a new application instance with dependency injection
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", VERSION))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       infrastructure.NewMetrics(),
	}

	app.initializeServices()
	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices wires the service layer.
func (a *Application) initializeServices() {
	a.ResearchService = services.NewResearchService(a.Config.Analysis, a.Logger, a.Metrics)
	a.HealthService = services.NewHealthService(VERSION, BuildTime, a.Config.GetReportsDir(), a.Logger)
	a.ReportExporter = report.NewExporter(a.Config.GetReportsDir(), a.Logger)
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Middleware ordering: RequestID → RealIP → Logger → Recoverer → the rest
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.Logger))
	r.Use(customMiddleware.SecurityHeaders)
	r.Use(customMiddleware.Metrics(a.Metrics))
	r.Use(customMiddleware.Compress(5))

	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(a.getCORSConfig()))
	}

	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		).Handler)
	}

	a.setupAPIRoutes(r)

	// Exported report artifacts.
	r.Route("/static", func(r chi.Router) {
		r.Handle("/*", http.StripPrefix("/static", http.FileServer(http.Dir(a.Config.Paths.StaticDir))))
	})

	// Prometheus metrics endpoint stays outside the API timeout group.
	r.Handle("/metrics", a.Metrics.Handler())

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	errorHandler := apperrors.NewErrorHandler(a.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		// Health and version endpoints with the standard timeout.
		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.Timeout(a.Config.Server.ReadTimeout, a.Logger))

			healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
			r.Mount("/health", healthHandler.Routes())
			r.Get("/version", healthHandler.Version)

			personalHandler := handlers.NewPersonalHandler(a.Logger, errorHandler)
			r.Mount("/personal", personalHandler.Routes())

			reportHandler := handlers.NewReportHandler(a.ReportExporter, a.Logger, errorHandler)
			r.Mount("/report", reportHandler.Routes())
		})

		// Research analysis can run for a while; give it the write timeout.
		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.Timeout(a.Config.Server.WriteTimeout, a.Logger))

			researchHandler := handlers.NewResearchHandler(
				a.ResearchService, a.Logger, errorHandler, a.Config.Server.MaxUploadBytes)
			r.Mount("/research", researchHandler.Routes())
		})
	})
}

func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
		Logger:         a.Logger,
	}
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Start launches the HTTP server without blocking.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", AppName),
		slog.String("version", VERSION),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))

	return nil
}

// Run starts the application and blocks until an interrupt signal arrives,
// then shuts down gracefully.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
	}

	return a.Shutdown()
}

// Shutdown stops the server and flushes telemetry.
func (a *Application) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	a.Logger.InfoContext(ctx, "Shutting down application")

	if err := a.Server.Shutdown(ctx); err != nil {
		a.Logger.ErrorContext(ctx, "Server shutdown error", slog.String("error", err.Error()))
		return err
	}

	if err := a.OTelProviders.Shutdown(ctx); err != nil {
		a.Logger.WarnContext(ctx, "OpenTelemetry shutdown error", slog.String("error", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Application stopped",
		slog.String("uptime_check", time.Now().Format(time.RFC3339)))
	return nil
}
