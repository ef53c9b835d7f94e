package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dom/cyprine-heroes/internal/api/middleware"
	"github.com/dom/cyprine-heroes/internal/service"
	"github.com/dom/cyprine-heroes/internal/testutil"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestCORS(t *testing.T) {
	handler := middleware.CORS([]string{"http://localhost:3000/"})(http.HandlerFunc(okHandler))

	tests := []struct {
		name           string
		method         string
		origin         string
		preflight      bool
		expectedStatus int
		allowed        bool
	}{
		{name: "allowed origin", method: http.MethodGet, origin: "http://localhost:3000", expectedStatus: http.StatusOK, allowed: true},
		{name: "other origin", method: http.MethodGet, origin: "http://evil.test", expectedStatus: http.StatusOK},
		{name: "no origin", method: http.MethodGet, expectedStatus: http.StatusOK},
		{name: "preflight", method: http.MethodOptions, origin: "http://localhost:3000", preflight: true, expectedStatus: http.StatusNoContent, allowed: true},
		{name: "plain options", method: http.MethodOptions, origin: "http://localhost:3000", expectedStatus: http.StatusOK, allowed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/heroes", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPut)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.allowed {
				assert.Equal(t, tt.origin, rec.Header().Get("Access-Control-Allow-Origin"))
				assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
			} else {
				assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}

func TestCORS_Wildcard(t *testing.T) {
	handler := middleware.CORS([]string{"*"})(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://anywhere.test")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "http://anywhere.test", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestAuth(t *testing.T) {
	authService, err := service.NewAuthService(testutil.TestConfig())
	require.NoError(t, err)
	result, err := authService.Login(t.Context(), testutil.AdminPassword)
	require.NoError(t, err)

	var subject string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, _ = middleware.GetSubject(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := middleware.Auth(authService, zap.NewNop().Sugar())(next)

	tests := []struct {
		name           string
		header         string
		expectedStatus int
	}{
		{name: "valid bearer", header: "Bearer " + result.AccessToken, expectedStatus: http.StatusOK},
		{name: "lowercase scheme", header: "bearer " + result.AccessToken, expectedStatus: http.StatusOK},
		{name: "missing header", expectedStatus: http.StatusUnauthorized},
		{name: "no token", header: "Bearer", expectedStatus: http.StatusUnauthorized},
		{name: "extra parts", header: "Bearer a b", expectedStatus: http.StatusUnauthorized},
		{name: "invalid token", header: "Bearer invalid", expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject = ""
			req := httptest.NewRequest(http.MethodPost, "/api/heroes", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, "admin", subject)
			} else {
				assert.Empty(t, subject)
				assert.Contains(t, rec.Body.String(), `"detail"`)
			}
		})
	}
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := zap.New(core).Sugar()

	tests := []struct {
		name  string
		code  int
		level zapcore.Level
	}{
		{name: "success", code: http.StatusOK, level: zapcore.InfoLevel},
		{name: "client error", code: http.StatusNotFound, level: zapcore.WarnLevel},
		{name: "server error", code: http.StatusInternalServerError, level: zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs.TakeAll()
			handler := middleware.RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
			}))

			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/heroes?x=1", nil))

			entries := logs.TakeAll()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.level, entries[0].Level)
			fields := entries[0].ContextMap()
			assert.EqualValues(t, tt.code, fields["status"])
			assert.Equal(t, "/api/heroes", fields["path"])
			assert.Equal(t, "x=1", fields["query"])
		})
	}
}

func TestAuth_LogsRejectionsAtWarn(t *testing.T) {
	authService, err := service.NewAuthService(testutil.TestConfig())
	require.NoError(t, err)
	core, logs := observer.New(zapcore.DebugLevel)
	handler := middleware.Auth(authService, zap.New(core).Sugar())(http.HandlerFunc(okHandler))

	for _, header := range []string{"", "Basic abc", "Bearer invalid"} {
		req := httptest.NewRequest(http.MethodDelete, "/api/heroes/x", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	entries := logs.TakeAll()
	require.Len(t, entries, 3)
	for _, e := range entries {
		assert.Equal(t, zapcore.WarnLevel, e.Level)
		assert.True(t, strings.HasPrefix(e.Message, "[middleware.Auth] "), e.Message)
		assert.NotContains(t, e.Message, "ERROR")
	}
}
