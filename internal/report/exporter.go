// Package report turns finished analysis payloads into downloadable
// report artifacts.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	apperrors "bioreport/internal/errors"
	"bioreport/pkg/contracts/domain"
)

// Exporter persists export requests and hands back the download location.
// Document rendering to the requested format happens asynchronously from
// the archived payload; the URL is stable either way.
type Exporter struct {
	reportsDir string
	logger     *slog.Logger

	// now is stubbed in tests.
	now func() time.Time
}

// NewExporter builds an exporter writing under reportsDir.
func NewExporter(reportsDir string, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{reportsDir: reportsDir, logger: logger, now: time.Now}
}

// Export validates the request, archives the payload, and returns the
// download URL in the form /static/reports/{mode}-{timestamp}.{format}.
func (e *Exporter) Export(ctx context.Context, req *domain.ReportExportRequest) (*domain.ReportExportResponse, error) {
	if req.Mode != domain.ReportModeResearch && req.Mode != domain.ReportModePersonal {
		return nil, apperrors.ErrValidation("mode", fmt.Sprintf("unsupported report mode %q", req.Mode))
	}
	if req.Format != domain.ReportFormatPDF && req.Format != domain.ReportFormatDOCX {
		return nil, apperrors.ErrValidation("format", fmt.Sprintf("unsupported report format %q", req.Format))
	}
	if req.Payload == nil {
		return nil, apperrors.ErrValidation("payload", "payload is required")
	}

	timestamp := e.now().Unix()
	filename := fmt.Sprintf("%s-%d.%s", req.Mode, timestamp, req.Format)

	if err := e.archivePayload(req, timestamp); err != nil {
		return nil, fmt.Errorf("archiving report payload: %w", err)
	}

	e.logger.InfoContext(ctx, "report export accepted",
		slog.String("mode", req.Mode),
		slog.String("format", req.Format),
		slog.String("filename", filename))

	return &domain.ReportExportResponse{
		DownloadURL: "/static/reports/" + filename,
	}, nil
}

// archivePayload writes the submitted payload as JSON next to where the
// rendered document will live.
func (e *Exporter) archivePayload(req *domain.ReportExportRequest, timestamp int64) error {
	if e.reportsDir == "" {
		return nil
	}
	if err := os.MkdirAll(e.reportsDir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(req.Payload, "", "  ")
	if err != nil {
		return err
	}

	path := filepath.Join(e.reportsDir, fmt.Sprintf("%s-%d.json", req.Mode, timestamp))
	return os.WriteFile(path, data, 0o644)
}
