// Copyright (c) 2026 Bazario. All rights reserved.
// Author: duc.phamminh.dev@gmail.com

package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phamminhduc/bazario/internal/platform/middleware"
)

// fakeAppConfig satisfies the CORS middleware's config contract.
type fakeAppConfig struct {
	development  bool
	extraOrigins []string
}

func (c fakeAppConfig) IsDevelopment() bool           { return c.development }
func (c fakeAppConfig) ExtraAllowedOrigins() []string { return c.extraOrigins }

func corsProbe(t *testing.T, cfg fakeAppConfig, origin string) *httptest.ResponseRecorder {
	t.Helper()

	handler := middleware.CORS(cfg)(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusOK)
	}))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	if origin != "" {
		request.Header.Set("Origin", origin)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

/*
TestCORS_ProductionOriginPolicy verifies production accepts the platform
suffix and the exact origins configured via EXTRA_ORIGINS, and nothing else.
*/
func TestCORS_ProductionOriginPolicy(t *testing.T) {
	cfg := fakeAppConfig{extraOrigins: []string{"https://partner.example.com"}}

	testCases := []struct {
		name    string
		origin  string
		allowed bool
	}{
		{"platform subdomain", "https://app.bazario.app", true},
		{"configured extra origin", "https://partner.example.com", true},
		{"unknown origin", "https://evil.example.com", false},
		{"extra origin is an exact match, not a suffix", "https://sub.partner.example.com", false},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			recorder := corsProbe(t, cfg, testCase.origin)

			header := recorder.Header().Get("Access-Control-Allow-Origin")
			if testCase.allowed {
				assert.Equal(t, testCase.origin, header)
			} else {
				assert.Empty(t, header)
			}
		})
	}
}

/*
TestCORS_DevelopmentAllowsAnyOrigin verifies the open policy in development.
*/
func TestCORS_DevelopmentAllowsAnyOrigin(t *testing.T) {
	cfg := fakeAppConfig{development: true}

	recorder := corsProbe(t, cfg, "http://localhost:3000")
	assert.Equal(t, "http://localhost:3000", recorder.Header().Get("Access-Control-Allow-Origin"))
}

/*
TestCORS_PreflightShortCircuits verifies OPTIONS requests are answered with
204 without reaching the downstream handler.
*/
func TestCORS_PreflightShortCircuits(t *testing.T) {
	cfg := fakeAppConfig{extraOrigins: []string{"https://partner.example.com"}}

	handlerHit := false
	handler := middleware.CORS(cfg)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		handlerHit = true
	}))

	request := httptest.NewRequest(http.MethodOptions, "/", nil)
	request.Header.Set("Origin", "https://partner.example.com")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.False(t, handlerHit)
}
