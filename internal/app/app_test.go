package app

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bioreport/internal/config"
	"bioreport/internal/infrastructure"
)

func testApplication(t *testing.T) *Application {
	t.Helper()
	tmp := t.TempDir()

	app := &Application{
		Config: &config.Config{
			Server: config.ServerConfig{
				Port:            8080,
				ReadTimeout:     5 * time.Second,
				WriteTimeout:    30 * time.Second,
				IdleTimeout:     time.Minute,
				ShutdownTimeout: 5 * time.Second,
				MaxUploadBytes:  1 << 20,
			},
			Security: config.SecurityConfig{EnableCORS: false},
			Logging:  config.LoggingConfig{Level: "info"},
			Paths:    config.PathsConfig{StaticDir: tmp, ReportsDir: tmp},
			Analysis: config.AnalysisConfig{
				PValueThreshold: 0.05,
				Log2FCThreshold: 1.0,
				HeatmapTopN:     50,
				PathwayTopN:     20,
				NClusters:       3,
				NClasses:        2,
			},
		},
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics: infrastructure.NewMetrics(),
	}
	app.initializeServices()
	app.setupRouter()
	app.createServer()
	return app
}

func TestRouterHealthEndpoints(t *testing.T) {
	app := testApplication(t)

	for _, path := range []string{"/api/health", "/api/health/ready", "/api/health/live", "/api/version"} {
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestRouterMetricsEndpoint(t *testing.T) {
	app := testApplication(t)

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterPersonalAnalyze(t *testing.T) {
	app := testApplication(t)

	body := bytes.NewBufferString(`{"snps":[{"rsid":"rs762551","genotype":"AA"}]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/personal/analyze", body)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "genetic_card")
}

func TestRouterResearchRejectsEmptyRequest(t *testing.T) {
	app := testApplication(t)

	req := httptest.NewRequest(http.MethodPost, "/api/research/analyze", nil)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouterUnknownRoute(t *testing.T) {
	app := testApplication(t)

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/nonsense", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServerConfiguration(t *testing.T) {
	app := testApplication(t)

	assert.Equal(t, ":8080", app.Server.Addr)
	assert.Equal(t, 5*time.Second, app.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, app.Server.WriteTimeout)
}
