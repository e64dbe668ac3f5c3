package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"
)

// HealthService backs the health, readiness, liveness, and version endpoints.
type HealthService struct {
	version    string
	buildTime  string
	reportsDir string
	startTime  time.Time
	logger     *slog.Logger
}

// HealthStatus is the wire form shared by all health endpoints.
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]any           `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth describes one dependency's readiness.
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func NewHealthService(version, buildTime, reportsDir string, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("health service initialized",
		slog.String("version", version),
		slog.String("build_time", buildTime))

	return &HealthService{
		version:    version,
		buildTime:  buildTime,
		reportsDir: reportsDir,
		startTime:  time.Now(),
		logger:     logger,
	}
}

// HealthCheck reports overall service health.
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck verifies dependencies are usable. The only external
// dependency is the exported-reports directory.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	deps := map[string]ServiceHealth{
		"reports": hs.checkReportsHealth(),
	}

	overall := "ready"
	for _, dep := range deps {
		if dep.Status != "ready" {
			overall = "not_ready"
			break
		}
	}

	return HealthStatus{
		Status:    overall,
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  deps,
	}
}

// LivenessCheck reports that the process is running, with basic runtime facts.
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]any{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version reports build and runtime version details.
func (hs *HealthService) Version() map[string]any {
	info := map[string]any{
		"version":      hs.version,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}
	if hs.buildTime != "" {
		info["build_time"] = hs.buildTime
	}
	return info
}

// checkReportsHealth verifies the exported-reports directory is usable.
// An empty reportsDir disables archival and is treated as healthy.
func (hs *HealthService) checkReportsHealth() ServiceHealth {
	if hs.reportsDir == "" {
		return ServiceHealth{Status: "ready", Message: "Report archival disabled"}
	}
	if err := os.MkdirAll(hs.reportsDir, 0o755); err != nil {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("Cannot write to reports directory: %v", err),
		}
	}
	return ServiceHealth{Status: "ready", Message: "Reports directory is writable"}
}
