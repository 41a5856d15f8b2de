package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobtrack-ai/jobtrack-api/internal/handler"
	"github.com/jobtrack-ai/jobtrack-api/internal/middleware"
	"github.com/jobtrack-ai/jobtrack-api/internal/service"
)

const testOrigin = "http://localhost:5173"

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	limiter := middleware.NewRateLimiter(100)
	t.Cleanup(limiter.Stop)

	tokens := service.NewTokenManager("test-secret", time.Hour)
	return NewRouter(
		Options{Env: "test", AllowedOrigins: []string{testOrigin}, MaxUploadBytes: 1 << 20},
		Handlers{
			Auth:         handler.NewAuthHandler(nil),
			Applications: handler.NewApplicationHandler(nil),
			Extract:      handler.NewExtractHandler(nil),
			Resumes:      handler.NewResumeHandler(nil, nil, nil, 1<<20),
		},
		middleware.NewAuthMiddleware(tokens),
		limiter,
	)
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "jobtrack-api", body["service"])
	_, err := time.Parse(time.RFC3339, body["timestamp"])
	assert.NoError(t, err)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := newTestRouter(t)

	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/applications"},
		{http.MethodPost, "/api/applications"},
		{http.MethodPut, "/api/applications/1"},
		{http.MethodDelete, "/api/auth/delete-account"},
		{http.MethodPost, "/api/extract"},
		{http.MethodPost, "/api/resumes"},
		{http.MethodGet, "/api/resumes/1/download"},
		{http.MethodPost, "/api/resumes/1/match"},
	}
	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			req := httptest.NewRequest(rt.method, rt.path, nil)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/applications", nil)
	req.Header.Set("Origin", testOrigin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, testOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodOptions, "/api/applications", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
