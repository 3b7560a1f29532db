// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package instrumentation

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Login results recorded by RecordLoginCompleted
const (
	LoginSuccess  = "success"
	LoginIdPError = "idp_error"
	LoginError    = "error"
)

// Metrics holds the metric instruments.  The Record methods are safe to call
// on a nil *Metrics.
type Metrics struct {
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram

	LoginStarted      metric.Int64Counter
	LoginCompleted    metric.Int64Counter
	Authentications   metric.Int64Counter
	Unauthenticated   metric.Int64Counter
	RateLimitExceeded metric.Int64Counter
	SessionsCreated   metric.Int64Counter
	GreetingsTotal    metric.Int64Counter
}

func newMetrics(httpMeter, authMeter, greetingMeter metric.Meter) (*Metrics, error) {
	const op = "instrumentation.newMetrics"
	m := &Metrics{}
	var err error

	counters := []struct {
		dst   *metric.Int64Counter
		meter metric.Meter
		name  string
		desc  string
		unit  string
	}{
		{&m.HTTPRequestsTotal, httpMeter, "welcome.http.requests.total", "Total number of HTTP requests", "{request}"},
		{&m.RateLimitExceeded, httpMeter, "welcome.http.rate_limit.exceeded", "Requests rejected by the rate limiter", "{request}"},
		{&m.LoginStarted, authMeter, "welcome.auth.login.started", "Login flows started", "{flow}"},
		{&m.LoginCompleted, authMeter, "welcome.auth.login.completed", "Login callbacks processed, by result", "{flow}"},
		{&m.Authentications, authMeter, "welcome.auth.authentications", "Requests authenticated, by method", "{request}"},
		{&m.Unauthenticated, authMeter, "welcome.auth.unauthenticated", "Requests redirected to login", "{request}"},
		{&m.SessionsCreated, authMeter, "welcome.auth.sessions.created", "Sessions created", "{session}"},
		{&m.GreetingsTotal, greetingMeter, "welcome.greetings.total", "Greetings served", "{greeting}"},
	}
	for _, c := range counters {
		*c.dst, err = c.meter.Int64Counter(c.name, metric.WithDescription(c.desc), metric.WithUnit(c.unit))
		if err != nil {
			return nil, fmt.Errorf("%s: unable to create %s counter: %w", op, c.name, err)
		}
	}

	m.HTTPRequestDuration, err = httpMeter.Float64Histogram(
		"welcome.http.request.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to create request duration histogram: %w", op, err)
	}
	return m, nil
}

// RecordHTTPRequest records a completed HTTP request
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method string, status int, durationMs float64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.Int("http.status_code", status),
	)
	m.HTTPRequestsTotal.Add(ctx, 1, attrs)
	m.HTTPRequestDuration.Record(ctx, durationMs, attrs)
}

// RecordRateLimitExceeded records a request rejected by the rate limiter
func (m *Metrics) RecordRateLimitExceeded(ctx context.Context) {
	if m == nil {
		return
	}
	m.RateLimitExceeded.Add(ctx, 1)
}

// RecordLoginStarted records the start of a login flow
func (m *Metrics) RecordLoginStarted(ctx context.Context) {
	if m == nil {
		return
	}
	m.LoginStarted.Add(ctx, 1)
}

// RecordLoginCompleted records a processed login callback.  See LoginSuccess,
// LoginIdPError and LoginError.
func (m *Metrics) RecordLoginCompleted(ctx context.Context, result string) {
	if m == nil {
		return
	}
	m.LoginCompleted.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

// RecordAuthentication records a request authenticated by method (session,
// bearer)
func (m *Metrics) RecordAuthentication(ctx context.Context, method string) {
	if m == nil {
		return
	}
	m.Authentications.Add(ctx, 1, metric.WithAttributes(attribute.String("method", method)))
}

// RecordUnauthenticated records a request sent to login
func (m *Metrics) RecordUnauthenticated(ctx context.Context) {
	if m == nil {
		return
	}
	m.Unauthenticated.Add(ctx, 1)
}

// RecordSessionCreated records a new session
func (m *Metrics) RecordSessionCreated(ctx context.Context) {
	if m == nil {
		return
	}
	m.SessionsCreated.Add(ctx, 1)
}

// RecordGreeting records a greeting served
func (m *Metrics) RecordGreeting(ctx context.Context, guest bool) {
	if m == nil {
		return
	}
	m.GreetingsTotal.Add(ctx, 1, metric.WithAttributes(attribute.Bool("guest", guest)))
}
