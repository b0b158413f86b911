package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dukerupert/cadastro/internal"
	"github.com/dukerupert/cadastro/internal/address"
	"github.com/dukerupert/cadastro/internal/cookie"
	"github.com/dukerupert/cadastro/internal/domain"
	"github.com/dukerupert/cadastro/internal/events"
	"github.com/dukerupert/cadastro/internal/handler"
	"github.com/dukerupert/cadastro/internal/handler/api"
	"github.com/dukerupert/cadastro/internal/handler/cadastro"
	"github.com/dukerupert/cadastro/internal/middleware"
	"github.com/dukerupert/cadastro/internal/postgres"
	"github.com/dukerupert/cadastro/internal/registration"
	"github.com/dukerupert/cadastro/internal/router"
	"github.com/dukerupert/cadastro/internal/routes"
	"github.com/dukerupert/cadastro/internal/session"
	"github.com/dukerupert/cadastro/internal/telemetry"
	"github.com/dukerupert/cadastro/web"
)

const metricsNamespace = "cadastro"

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize Sentry
	flushSentry, err := telemetry.InitSentry(telemetry.SentryConfig(cfg.Sentry), logger)
	if err != nil {
		return fmt.Errorf("sentry initialization failed: %w", err)
	}
	defer flushSentry()

	// Initialize database/sql connection for migrations
	logger.Info("Connecting to database...")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	// Verify database connection
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	logger.Info("Database connection established")

	// Run migrations
	logger.Info("Running database migrations...")
	if err := internal.RunMigrations(sqlDB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Initialize pgx connection pool for application
	pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	// ==========================================================================
	// Metrics
	// ==========================================================================

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := middleware.NewMetrics(metricsNamespace, registry)
	businessMetrics := telemetry.NewBusinessMetrics(metricsNamespace, registry)

	// ==========================================================================
	// Registration dependencies
	// ==========================================================================

	// User store, announcing each registration on NATS when configured
	userStore := postgres.NewUserStore(pool)

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.NATS.URL != "" {
		logger.Info("Connecting to NATS...", "url", cfg.NATS.URL)
		natsPublisher, err := events.Connect(cfg.NATS.URL, cfg.NATS.Subject, logger)
		if err != nil {
			return fmt.Errorf("nats connection failed: %w", err)
		}
		publisher = natsPublisher
		logger.Info("NATS connection established", "subject", cfg.NATS.Subject)
	}
	defer publisher.Close()

	registrations := events.NewPublishingStore(userStore, publisher, logger,
		events.WithPublishHook(func(err error) {
			if _, nop := publisher.(events.NopPublisher); !nop {
				businessMetrics.RecordEventPublished(err)
			}
		}),
	)

	// CEP lookup
	var lookup address.Lookup = address.NewViaCEPClient(cfg.ViaCEP.URL,
		address.WithHTTPClient(&http.Client{
			Timeout:   cfg.ViaCEP.Timeout,
			Transport: &telemetry.HTTPTransport{},
		}),
		address.WithRetries(cfg.ViaCEP.Retries, 200*time.Millisecond),
		address.WithLogger(logger),
	)
	if cfg.ViaCEP.CacheTTL > 0 {
		lookup = address.NewCachedLookup(lookup, cfg.ViaCEP.CacheTTL)
	}

	// Sessions, one registration form each
	sessions := session.NewManager(cfg.SessionTTL, func(sess registration.Session) *registration.Form {
		return registration.New(lookup, registrations, sess,
			registration.WithConfirmationDelay(cfg.ConfirmationDelay))
	})
	telemetry.RegisterSessionGauge(metricsNamespace, registry, sessions.Count)
	sessions.OnEnded(func(e *session.Entry) {
		businessMetrics.SessionsEnded.Inc()
		logger.Debug("session ended", "session_id", e.Session.ID, "age", time.Since(e.Session.CreatedAt))
	})

	// Load templates with renderer
	logger.Info("Loading templates...")
	renderer, err := handler.NewRenderer(web.Templates(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize renderer: %w", err)
	}
	logger.Info("Templates loaded successfully")

	// ==========================================================================
	// Initialize middleware
	// ==========================================================================

	cookieConfig := cookie.NewConfig(cfg.Cookie.Domain, cfg.Cookie.Secure)

	// Configure security headers
	securityConfig := middleware.DefaultSecurityHeadersConfig()
	if cfg.Env == "dev" {
		securityConfig.HSTSMaxAge = 0 // Disable HSTS in development
	}

	// Client addresses; forwarding headers count only from trusted proxies
	clientIPs, err := middleware.NewClientIPResolver(cfg.TrustedProxies)
	if err != nil {
		return fmt.Errorf("failed to parse TRUSTED_PROXIES: %w", err)
	}

	// Configure rate limiting
	defaultRateLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	strictRateLimiter := middleware.NewRateLimiter(middleware.StrictRateLimiterConfig())

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	r := router.New(
		router.Recovery(logger),
		telemetry.SentryMiddleware(),
		middleware.RequestID,
		middleware.WithClientIP(clientIPs),
		metrics.Middleware,
		middleware.SecurityHeaders(securityConfig),
		middleware.MaxBodySize(middleware.DefaultMaxBodySize),
		middleware.Timeout(middleware.DefaultTimeout),
		defaultRateLimiter.Middleware,
		middleware.Session(middleware.SessionConfig{
			Store:        sessions,
			CookieConfig: cookieConfig,
			SkipPaths:    middleware.DefaultSessionSkipPaths,
		}),
		middleware.WithRequestLogger(logger),
		router.Logger(logger),
		telemetry.SentryContextMiddleware(domain.SessionIDFromContext),
		middleware.CSRF(middleware.DefaultCSRFConfig(cookieConfig)),
	)

	// Static files
	r.Static("/static/", web.Static())

	// Metrics endpoint (should be protected in production via firewall)
	r.Get("/metrics", metrics.Handler().ServeHTTP)

	routes.RegisterAPIRoutes(r, routes.APIDeps{
		CEPHandler:    api.NewCEPHandler(lookup, businessMetrics),
		HealthHandler: api.NewHealthHandler(pool),
		RateLimit:     strictRateLimiter.Middleware,
		CORS:          router.CORS(cfg.CORSOrigins),
	})
	routes.RegisterCadastroRoutes(r, routes.CadastroDeps{
		FormHandler:  cadastro.NewFormHandler(cadastro.SessionForm, renderer, businessMetrics, cookieConfig),
		UsersHandler: cadastro.NewUsersHandler(userStore, renderer),
		PagesHandler: cadastro.NewPagesHandler(renderer),
		RateLimit:    strictRateLimiter.Middleware,
	})

	// ==========================================================================
	// Start server
	// ==========================================================================

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "address", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
	}

	logger.Info("Server stopped")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
