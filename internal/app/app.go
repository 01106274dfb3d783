package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/alan-aru/MOD006901-PrescribeGUI/internal/config"
	"github.com/alan-aru/MOD006901-PrescribeGUI/internal/dataprocessing"
	apierrors "github.com/alan-aru/MOD006901-PrescribeGUI/internal/errors"
	"github.com/alan-aru/MOD006901-PrescribeGUI/internal/exporter"
	"github.com/alan-aru/MOD006901-PrescribeGUI/internal/files"
	"github.com/alan-aru/MOD006901-PrescribeGUI/internal/infrastructure"
	customMiddleware "github.com/alan-aru/MOD006901-PrescribeGUI/internal/middleware"
	"github.com/alan-aru/MOD006901-PrescribeGUI/internal/services"
	"github.com/alan-aru/MOD006901-PrescribeGUI/internal/session"
	httpHandlers "github.com/alan-aru/MOD006901-PrescribeGUI/internal/transport/http"
	"github.com/alan-aru/MOD006901-PrescribeGUI/internal/validation"
	ws "github.com/alan-aru/MOD006901-PrescribeGUI/internal/websocket"
	"github.com/alan-aru/MOD006901-PrescribeGUI/pkg/contracts"
)

// compressionLevel is the gzip level used for API responses.
const compressionLevel = 5

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
	ErrorHandler  *apierrors.ErrorHandler
	Services      *ServiceContainer

	stopOnce sync.Once
	stopErr  error
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Session   *session.Session
	Explorer  *services.ExplorerService
	Health    *services.HealthService
	WebSocket *ws.Hub
	Exporter  *exporter.Exporter
}

// NewApplication loads the configuration, initializes the global logger and
// builds the application from them.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, logger)
}

// New creates an application from an already loaded configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	providers, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateBusinessMetrics(providers.MeterOrNoop())
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	a := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: providers,
		Metrics:       metrics,
		ErrorHandler:  httpHandlers.RegisterProblems(apierrors.NewErrorHandler(logger, cfg.Logging.Development)),
	}

	if err := a.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	a.setupRouter()
	a.createServer()

	logger.Info("Application initialized",
		slog.String("version", contracts.GetVersionString()),
		slog.String("addr", cfg.Server.Addr()),
		slog.String("data_dir", cfg.DataDir()))

	return a, nil
}

// initializeServices wires the dataset session, the explorer and the
// WebSocket hub together.
func (a *Application) initializeServices() error {
	cfg := a.Config.Explorer
	tracer := a.OTelProviders.TracerOrNoop()

	hubMetrics, err := ws.NewOTelMetrics(a.OTelProviders.MeterOrNoop())
	if err != nil {
		return fmt.Errorf("failed to create websocket metrics: %w", err)
	}
	hub := ws.NewHub(a.Logger, hubMetrics)

	loader := services.NewTracedLoader(
		dataprocessing.NewLoader(a.Logger, dataprocessing.LoaderOptions{Sheet: cfg.Sheet}),
		a.Metrics,
		tracer,
	)
	sess := session.New(loader, session.Config{
		MaxConcurrentLoads: cfg.MaxConcurrentLoads,
		MaxTasks:           cfg.MaxTasks,
		Identifiers:        cfg.IdentifierColumns,
	}, a.Logger)
	services.NewDatasetNotifier(hub, a.Logger).Attach(sess)

	discovery := files.NewDiscovery(a.Config.DataDir(), cfg.AllowedExtensions...)
	fileValidator := validation.NewFileValidator(a.Logger,
		validation.WithExtensions(cfg.AllowedExtensions...),
		validation.WithMaxSizeMB(cfg.MaxFileMB),
	)

	explorer := services.NewExplorerService(sess, discovery, fileValidator, services.ExplorerConfig{
		FilterColumns:     cfg.FilterColumns,
		SummaryExclusions: cfg.SummaryExclusions,
		PlotLimit:         cfg.PlotLimit,
		FrequencyLimit:    cfg.FrequencyLimit,
	}, a.Metrics, tracer, a.Logger)

	a.Services = &ServiceContainer{
		Session:   sess,
		Explorer:  explorer,
		Health:    services.NewHealthService(contracts.Version, sess, hub, a.Logger),
		WebSocket: hub,
		Exporter:  exporter.New(a.Logger),
	}
	return nil
}

// setupRouter configures the HTTP router
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	// The WebSocket endpoint skips the response wrapping middleware below,
	// which would break the hijack.
	r.With(customMiddleware.WebSocketTraceMiddleware(a.Logger)).
		Handle("/ws", ws.NewHandler(a.Services.WebSocket, a.websocketConfig(), a.Logger))

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders.TracerOrNoop(), a.Metrics, a.Logger).Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.ErrorHandler))
		r.Use(customMiddleware.SecurityHeaders)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(a.getCORSConfig()))
		}
		if rl := a.Config.Security.RateLimit; rl.Enabled {
			r.Use(customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, a.Logger).Handler)
		}
		r.Use(customMiddleware.Compress(compressionLevel))

		if a.OTelProviders.PrometheusHTTP != nil {
			r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
		}

		r.Route("/api", a.setupAPIRoutes)
	})

	a.Router = r
}

// setupAPIRoutes configures API routes
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Use(customMiddleware.MaxBodyBytes(a.Config.Server.MaxBodyBytes))
	r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))
	r.Use(customMiddleware.ContentTypeValidator(a.ErrorHandler, "application/json"))

	httpHandlers.NewHealthHandler(a.Services.Health, a.Logger).RegisterRoutes(r)

	explorer := httpHandlers.NewExplorerHandler(
		a.Services.Explorer,
		a.Services.Exporter,
		customMiddleware.NewValidator(a.Config.Explorer.AllowedExtensions...),
		a.ErrorHandler,
		a.Logger,
	)
	explorer.RegisterRoutes(r)
}

// getCORSConfig returns CORS configuration
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		MaxAge:         300,
		Logger:         a.Logger,
	}
}

func (a *Application) websocketConfig() ws.HandlerConfig {
	c := a.Config.WebSocket
	return ws.HandlerConfig{
		AllowedOrigins:  a.Config.Security.AllowedOrigins,
		ReadBufferSize:  c.ReadBufferSize,
		WriteBufferSize: c.WriteBufferSize,
		Client: ws.ClientConfig{
			SendBuffer: c.SendBuffer,
			PingPeriod: c.PingPeriod,
			PongWait:   c.PongWait,
		},
	}
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Server.Addr(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Serve runs the application on ln until ctx is cancelled or the server
// fails, then shuts every component down.
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("version", contracts.GetVersionString()),
		slog.String("address", ln.Addr().String()),
		slog.String("level", a.Config.Logging.Level))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Services.WebSocket.Run(gctx)
		return nil
	})

	g.Go(func() error {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return a.Stop(context.Background())
	})

	a.loadDefaultDataset(gctx)

	return g.Wait()
}

// loadDefaultDataset starts the configured startup load, if any. A failure
// is logged and the server keeps running without a dataset.
func (a *Application) loadDefaultDataset(ctx context.Context) {
	path := a.Config.Explorer.DefaultDataset
	if path == "" {
		return
	}

	task, err := a.Services.Explorer.LoadDataset(ctx, path)
	if err != nil {
		a.Logger.WarnContext(ctx, "Default dataset rejected",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return
	}
	a.Logger.InfoContext(ctx, "Loading default dataset",
		slog.String("task_id", task.ID),
		slog.String("source", task.Source))
}

// Stop gracefully stops the application. Only the first call has any effect.
func (a *Application) Stop(ctx context.Context) error {
	a.stopOnce.Do(func() {
		a.stopErr = a.stop(ctx)
	})
	return a.stopErr
}

func (a *Application) stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	timeout := a.Config.Server.ShutdownTimeout
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}

	a.Services.WebSocket.Stop()

	if err := a.Services.Session.Stop(timeout); err != nil {
		a.Logger.ErrorContext(ctx, "Dataset loads did not finish", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
		a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return errors.Join(errs...)
}

// Run listens on the configured address and serves until SIGINT or SIGTERM.
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}

	return a.Serve(ctx, ln)
}
