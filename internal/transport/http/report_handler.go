package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apperrors "bioreport/internal/errors"
	"bioreport/pkg/contracts/domain"
)

// ReportExporterInterface is the slice of the report exporter the handler
// needs.
type ReportExporterInterface interface {
	Export(ctx context.Context, req *domain.ReportExportRequest) (*domain.ReportExportResponse, error)
}

// ReportHandler handles report export requests.
type ReportHandler struct {
	exporter     ReportExporterInterface
	logger       *slog.Logger
	errorHandler *apperrors.ErrorHandler
}

// NewReportHandler creates a new report handler.
func NewReportHandler(exporter ReportExporterInterface, logger *slog.Logger, errorHandler *apperrors.ErrorHandler) *ReportHandler {
	return &ReportHandler{
		exporter:     exporter,
		logger:       logger.With(slog.String("component", "report_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the report routes.
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Post("/export", h.Export)
	return r
}

// Export handles POST /api/report/export.
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	var req domain.ReportExportRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apperrors.InvalidRequestWithError(err))
		return
	}

	resp, err := h.exporter.Export(r.Context(), &req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, resp)
}
