package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"

	"github.com/DipamJha/foodPro/internal/domain/scan"
	"github.com/DipamJha/foodPro/internal/handler"
	"github.com/DipamJha/foodPro/internal/openfoodfacts"
	"github.com/DipamJha/foodPro/internal/storage/memory"
	"github.com/DipamJha/foodPro/pkg/health"
	"github.com/DipamJha/foodPro/pkg/httpmiddleware"
)

const serviceName = "foodscan-api"

// Service is the assembled HTTP service.
type Service struct {
	Handler  http.Handler
	Health   *health.Health
	Sessions *memory.Sessions
}

// Build creates all dependencies and the middleware chain. Background work
// (health polling, session sweeping, rate limit eviction) stops with ctx.
func Build(ctx context.Context, lg *zap.Logger, m httpmiddleware.TelemetryProvider, cfg *Config) (*Service, error) {
	products, err := openfoodfacts.NewClient(openfoodfacts.Options{
		BaseURL:        cfg.Upstream.BaseURL,
		UserAgent:      cfg.Upstream.UserAgent,
		Timeout:        cfg.Upstream.Timeout,
		TracerProvider: m.TracerProvider(),
		MeterProvider:  m.MeterProvider(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "create product client")
	}

	sessions := memory.NewSessions(
		memory.Config{TTL: cfg.Sessions.TTL, Max: cfg.Sessions.Max},
		scan.Options{Fetcher: products, AnalyzeRoute: cfg.AnalyzeRoute},
	)
	sessions.StartSweeper(ctx, sweepInterval(cfg.Sessions.TTL), func(removed int) {
		lg.Debug("Expired sessions swept", zap.Int("removed", removed), zap.Int("live", sessions.Len()))
	})

	healthSvc := health.New()
	healthSvc.AddReadinessCheck("sessions", time.Second, health.CapacityCheck(sessions.Len, sessions.Max()))
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.AddLivenessCheck("gc", time.Second, health.GCMaxPauseCheck(time.Second))
	healthSvc.Start(ctx, 10*time.Second)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("GET /readyz", healthSvc.ReadyEndpoint)
	handler.NewHandler(sessions, products).Register(mux)

	return &Service{
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Instrument(serviceName, m),
			httpmiddleware.InjectLogger(lg),
			httpmiddleware.RequestID(),
			httpmiddleware.LogRequests(),
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", httpmiddleware.RequestIDHeader},
				ExposeHeaders:    []string{httpmiddleware.RequestIDHeader},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
		),
		Health:   healthSvc,
		Sessions: sessions,
	}, nil
}

// sweepInterval checks for expired sessions several times per TTL, but not
// more often than every second.
func sweepInterval(ttl time.Duration) time.Duration {
	return max(ttl/4, time.Second)
}

// Run builds the service, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("upstream", cfg.Upstream.BaseURL),
		zap.Duration("timeout", cfg.Upstream.Timeout),
	)

	svc, err := Build(ctx, lg, m, cfg)
	if err != nil {
		return err
	}
	svc.Health.SetReady(true)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		// Scans wait for the upstream lookup.
		WriteTimeout:   cfg.Upstream.Timeout + 5*time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
		Addr:           cfg.Addr,
		Handler:        svc.Handler,
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		svc.Health.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server",
			zap.Duration("timeout", cfg.Graceful.ShutdownTimeout),
			zap.Int("sessions", svc.Sessions.Len()),
		)
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		svc.Health.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
