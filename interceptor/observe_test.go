// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package interceptor

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hashicorp/cap-welcome/instrumentation"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestObserve(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus int
	}{
		{"implicit-ok", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) }, http.StatusOK},
		{"redirect", func(w http.ResponseWriter, r *http.Request) { http.Redirect(w, r, "/login", http.StatusFound) }, http.StatusFound},
		{"error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.WriteHeader(http.StatusOK) // superfluous, ignored
		}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)
			var buf bytes.Buffer
			logger := hclog.New(&hclog.LoggerOptions{Output: &buf, Level: hclog.Info})
			inst, reader := instrumentation.TestInstrumentation(t)

			rec := httptest.NewRecorder()
			Observe(tt.handler, WithLogger(logger), WithInstrumentation(inst)).
				ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(tt.wantStatus, rec.Code)
			assert.Contains(buf.String(), "request")
			assert.Contains(buf.String(), "path=/")
			assert.Equal(int64(1), instrumentation.TestCounterValue(t, reader, "welcome.http.requests.total",
				attribute.Int("http.status_code", tt.wantStatus)))
		})
	}
}
