// Package app wires the storefront server.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/anomie-storefront/internal/catalog"
	"github.com/xenking/anomie-storefront/internal/handler"
	"github.com/xenking/anomie-storefront/internal/session"
	"github.com/xenking/anomie-storefront/pkg/health"
	"github.com/xenking/anomie-storefront/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the storefront.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("backend_url", cfg.BackendURL),
		zap.Duration("catalog_timeout", cfg.Catalog.Timeout),
	)

	loader, err := catalog.NewLoader(catalog.LoaderConfig{
		BaseURL:        cfg.BackendURL,
		Timeout:        cfg.Catalog.Timeout,
		TracerProvider: m.TracerProvider(),
		MeterProvider:  m.MeterProvider(),
	})
	if err != nil {
		return errors.Wrap(err, "create catalog loader")
	}

	sessions, err := session.NewStore(ctx, session.StoreConfig{
		Fetcher:       loader,
		TTL:           cfg.Session.TTL,
		MaxActive:     cfg.Session.MaxActive,
		MeterProvider: m.MeterProvider(),
	})
	if err != nil {
		return errors.Wrap(err, "create session store")
	}
	defer sessions.Close()
	sessions.StartCleanup(cfg.Session.CleanupInterval)

	healthSvc := health.New()
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	if cfg.Session.MaxActive > 0 {
		// At the cap new visitors are refused, so stop routing them here.
		healthSvc.AddReadinessCheck("sessions", time.Second, health.CountCheck("session", sessions.Len, cfg.Session.MaxActive-1))
	}
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	mux := http.NewServeMux()
	healthSvc.Register(mux)
	handler.NewHandler(handler.HandlerConfig{SecureCookie: cfg.Session.SecureCookie}, sessions).Register(mux)

	routeFinder := httpmiddleware.MakeRouteFinder(mux)
	server := NewServer(cfg.Addr, httpmiddleware.Wrap(mux,
		httpmiddleware.RequestID(),
		httpmiddleware.InjectLogger(zctx.From(ctx)),
		httpmiddleware.Recovery(),
		httpmiddleware.Instrument("storefront", routeFinder, m),
		httpmiddleware.LogRequests(routeFinder),
		httpmiddleware.Labeler(routeFinder),
		httpmiddleware.CORS(httpmiddleware.CORSConfig{
			AllowOrigins:     cfg.CORS.Origins,
			AllowHeaders:     []string{"Content-Type", "X-Request-ID"},
			ExposeHeaders:    []string{"X-Request-ID"},
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           86400,
		}),
		httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
			Max:     cfg.RateLimit.Max,
			Window:  cfg.RateLimit.Window,
			KeyFunc: httpmiddleware.SessionKey(handler.SessionCookie, sessions.Has, httpmiddleware.ClientIP(cfg.RateLimit.TrustProxy)),
		}),
	))

	return Serve(ctx, lg, server, healthSvc, cfg.Graceful)
}
