// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package instrumentation provides the OpenTelemetry tracer and meter
// providers for the service, along with the metric instruments recorded by
// the authentication gate, the greeting handler and the HTTP layer.
//
// When disabled, no-op providers are used.
package instrumentation
