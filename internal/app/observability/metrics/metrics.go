package metrics

import (
	"context"
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	HTTPRequestsTotal      metric.Int64Counter
	HTTPRequestDuration    metric.Float64Histogram
	AuthRequestsTotal      metric.Int64Counter
	GuardDecisionsTotal    metric.Int64Counter
	APIRequestsTotal       metric.Int64Counter
	APIRequestDuration     metric.Float64Histogram
	SessionPurgesTotal     metric.Int64Counter
	TemplateRenderDuration metric.Float64Histogram
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the instruments once, from the global MeterProvider.
// Call it after the provider is installed so the Prometheus reader sees them.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("fieldops-web")
		var err error
		m := &AppMetrics{}

		m.HTTPRequestsTotal, err = meter.Int64Counter(
			"http_requests_total",
			metric.WithDescription("Total number of HTTP requests completed"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create http_requests_total: %v", err)
		}

		m.HTTPRequestDuration, err = meter.Float64Histogram(
			"http_request_duration_seconds",
			metric.WithDescription("Duration of HTTP requests in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create http_request_duration_seconds: %v", err)
		}

		m.AuthRequestsTotal, err = meter.Int64Counter(
			"auth_requests_total",
			metric.WithDescription("Login and registration attempts by outcome"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create auth_requests_total: %v", err)
		}

		m.GuardDecisionsTotal, err = meter.Int64Counter(
			"route_guard_decisions_total",
			metric.WithDescription("Route guard decisions by guard and state"),
			metric.WithUnit("{decision}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create route_guard_decisions_total: %v", err)
		}

		m.APIRequestsTotal, err = meter.Int64Counter(
			"api_client_requests_total",
			metric.WithDescription("Requests sent to the field operations API"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create api_client_requests_total: %v", err)
		}

		m.APIRequestDuration, err = meter.Float64Histogram(
			"api_client_request_duration_seconds",
			metric.WithDescription("Round trip time of field operations API calls"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create api_client_request_duration_seconds: %v", err)
		}

		m.SessionPurgesTotal, err = meter.Int64Counter(
			"session_purges_total",
			metric.WithDescription("Persisted sessions discarded because they were corrupt"),
			metric.WithUnit("{session}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create session_purges_total: %v", err)
		}

		m.TemplateRenderDuration, err = meter.Float64Histogram(
			"template_render_duration_seconds",
			metric.WithDescription("Duration of template rendering in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create template_render_duration_seconds: %v", err)
		}

		appMetrics = m
	})
}

// Get returns the instruments, initializing them against whatever provider is
// installed if nobody did so yet (tests run against the no-op provider).
func Get() *AppMetrics {
	InitAppMetrics()
	return appMetrics
}

// RecordAuth counts a login/register attempt.
func RecordAuth(ctx context.Context, operation string, success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	Get().AuthRequestsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

// RecordGuard counts a route guard decision.
func RecordGuard(ctx context.Context, guard, state string) {
	Get().GuardDecisionsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("guard", guard),
		attribute.String("state", state),
	))
}
