package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"nutrisnap-backend/config"
	"nutrisnap-backend/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testConfig(t *testing.T) *config.Config {
	t.Setenv("STORAGE_TYPE", "memory")
	cfg, err := config.FromEnv()
	require.NoError(t, err)
	return cfg
}

func TestServerRoutes(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"API key is valid"}]}}]}`)
	}))
	defer upstream.Close()

	cfg := testConfig(t)
	cfg.Gemini.BaseURL = upstream.URL
	cfg.Storage.Secret = "test-secret"

	srv, err := New(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer srv.Close()

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/key", strings.NewReader(`{"apiKey":"AIza-x"}`))
	req.Header.Set("Content-Type", "application/json")
	srv.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":{"configured":true,"source":"profile"}}`, w.Body.String())

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/keys/test", strings.NewReader(`{"apiKey":"AIza-x"}`))
	req.Header.Set("Content-Type", "application/json")
	srv.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var env struct {
		Data service.KeyCheckResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.Data.Success)

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `nutrisnap_upstream_requests_total{model="gemini-2.5-flash",operation="keycheck",status="ok"} 1`)
}

func TestNewGenerator(t *testing.T) {
	cfg := testConfig(t)
	logger := zaptest.NewLogger(t)

	_, ok := NewGenerator(cfg, logger).(*service.RESTGenerator)
	assert.True(t, ok)

	cfg.Gemini.Transport = config.TransportSDK
	_, ok = NewGenerator(cfg, logger).(*service.SDKGenerator)
	assert.True(t, ok)
}

func TestNewFailsOnBadStorage(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Type = "s3"
	cfg.Storage.S3Bucket = ""

	_, err := New(context.Background(), cfg, zaptest.NewLogger(t))
	assert.Error(t, err)
}
