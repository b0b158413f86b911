package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
)

// SentryConfig holds configuration for Sentry error tracking
type SentryConfig struct {
	// DSN is the Sentry Data Source Name (required if Enabled is true)
	DSN string

	// Enabled controls whether Sentry is active
	// Set to false to disable during development or when DSN is not configured
	Enabled bool

	// Environment identifies the deployment environment (dev, staging, prod)
	Environment string

	// Release is the application version/release identifier
	Release string

	// SampleRate controls the percentage of errors to capture (0.0 to 1.0)
	// Default: 1.0 (capture all errors)
	SampleRate float64

	// TracesSampleRate controls the percentage of transactions to trace (0.0 to 1.0)
	// Set to 0 to disable performance monitoring
	TracesSampleRate float64

	// Debug enables Sentry SDK debug logging
	Debug bool
}

// SentryClient wraps Sentry functionality with enable/disable support
type SentryClient struct {
	enabled bool
	config  SentryConfig
}

// sentryInstance is the global Sentry client
var sentryInstance *SentryClient

// InitSentry initializes the Sentry client
// Returns a cleanup function that should be called on application shutdown
func InitSentry(cfg SentryConfig, logger *slog.Logger) (func(), error) {
	sentryInstance = &SentryClient{
		enabled: cfg.Enabled,
		config:  cfg,
	}

	if !cfg.Enabled {
		logger.Info("Sentry disabled (SENTRY_ENABLED=false or DSN not configured)")
		return func() {}, nil
	}

	if cfg.DSN == "" {
		logger.Warn("Sentry DSN not configured, disabling error tracking")
		sentryInstance.enabled = false
		return func() {}, nil
	}

	// Set defaults
	sampleRate := cfg.SampleRate
	if sampleRate == 0 {
		sampleRate = 1.0
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		SampleRate:       sampleRate,
		TracesSampleRate: cfg.TracesSampleRate,
		Debug:            cfg.Debug,
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			// Form values carry personal data.
			if event.Request != nil {
				event.Request.Data = ""
			}
			return event
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Sentry: %w", err)
	}

	logger.Info("Sentry initialized",
		"environment", cfg.Environment,
		"release", cfg.Release,
		"sample_rate", sampleRate,
		"traces_sample_rate", cfg.TracesSampleRate,
	)

	// Return cleanup function
	cleanup := func() {
		sentry.Flush(2 * time.Second)
	}

	return cleanup, nil
}

// IsEnabled returns whether Sentry is currently enabled
func IsEnabled() bool {
	if sentryInstance == nil {
		return false
	}
	return sentryInstance.enabled
}

// AddBreadcrumb adds a breadcrumb for debugging
func AddBreadcrumb(category, message string, data map[string]interface{}) {
	if !IsEnabled() {
		return
	}

	sentry.AddBreadcrumb(&sentry.Breadcrumb{
		Category: category,
		Message:  message,
		Data:     data,
		Level:    sentry.LevelInfo,
	})
}

// SentryMiddleware returns an HTTP middleware that captures panics and adds request context
func SentryMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsEnabled() {
				next.ServeHTTP(w, r)
				return
			}

			hub := sentry.GetHubFromContext(r.Context())
			if hub == nil {
				hub = sentry.CurrentHub().Clone()
			}

			hub.Scope().SetRequest(r)
			ctx := sentry.SetHubOnContext(r.Context(), hub)

			defer func() {
				if err := recover(); err != nil {
					hub.RecoverWithContext(ctx, err)
					sentry.Flush(2 * time.Second)
					// Return 500 after capturing the panic
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionExtractor returns the session id carried by a request context
type SessionExtractor func(ctx context.Context) string

// SentryContextMiddleware tags every error captured during the request with
// the request and the session it belongs to.
// This middleware should be applied after the session middleware.
func SentryContextMiddleware(sessionOf SessionExtractor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsEnabled() {
				next.ServeHTTP(w, r)
				return
			}

			hub := sentry.GetHubFromContext(r.Context())
			if hub == nil {
				hub = sentry.CurrentHub().Clone()
			}

			hub.ConfigureScope(func(scope *sentry.Scope) {
				scope.SetContext("request", map[string]interface{}{
					"url":    r.URL.String(),
					"method": r.Method,
					"path":   r.URL.Path,
				})
				if sessionOf != nil {
					if id := sessionOf(r.Context()); id != "" {
						scope.SetTag("session_id", id)
					}
				}
			})

			ctx := sentry.SetHubOnContext(r.Context(), hub)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CaptureErrorFromContext captures an error using the Sentry hub from the request context.
// This automatically includes the request and session tags set by SentryContextMiddleware.
func CaptureErrorFromContext(ctx context.Context, err error, extras map[string]interface{}) {
	if !IsEnabled() || err == nil {
		return
	}

	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		// Fallback to global hub if context doesn't have one
		hub = sentry.CurrentHub()
	}

	hub.WithScope(func(scope *sentry.Scope) {
		for key, value := range extras {
			scope.SetExtra(key, value)
		}
		hub.CaptureException(err)
	})
}

// HTTPTransport wraps an http.RoundTripper to add Sentry tracing
type HTTPTransport struct {
	Transport http.RoundTripper
}

func (t *HTTPTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Transport == nil {
		t.Transport = http.DefaultTransport
	}
	if !IsEnabled() {
		return t.Transport.RoundTrip(req)
	}

	span := sentry.StartSpan(req.Context(), "http.client")
	span.Description = fmt.Sprintf("%s %s", req.Method, req.URL.Host)
	defer span.Finish()

	resp, err := t.Transport.RoundTrip(req)
	if err != nil {
		span.Status = sentry.SpanStatusInternalError
	} else {
		span.SetData("http.status_code", resp.StatusCode)
	}

	return resp, err
}
