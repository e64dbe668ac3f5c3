package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apperrors "bioreport/internal/errors"
	"bioreport/internal/services"
	"bioreport/pkg/contracts/domain"
)

// ResearchServiceInterface is the slice of the research service the handler
// needs, kept narrow for testing.
type ResearchServiceInterface interface {
	Analyze(ctx context.Context, upload *services.ResearchUpload) (*domain.ResearchAnalyzeResponse, error)
}

// ResearchHandler handles differential-expression analysis requests.
type ResearchHandler struct {
	service        ResearchServiceInterface
	logger         *slog.Logger
	errorHandler   *apperrors.ErrorHandler
	validate       *validator.Validate
	maxUploadBytes int64
}

// NewResearchHandler creates a new research handler.
func NewResearchHandler(service ResearchServiceInterface, logger *slog.Logger, errorHandler *apperrors.ErrorHandler, maxUploadBytes int64) *ResearchHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 50 << 20
	}
	return &ResearchHandler{
		service:        service,
		logger:         logger.With(slog.String("component", "research_handler")),
		errorHandler:   errorHandler,
		validate:       validator.New(),
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes returns the research routes.
func (h *ResearchHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Post("/analyze", h.Analyze)
	return r
}

// Analyze handles POST /api/research/analyze. The request is multipart form
// data: deg_file is required, enrichment_file is optional, and meta is an
// optional JSON form field.
func (h *ResearchHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	upload, err := h.parseUpload(w, r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	resp, err := h.service.Analyze(r.Context(), upload)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, resp)
}

func (h *ResearchHandler) parseUpload(w http.ResponseWriter, r *http.Request) (*services.ResearchUpload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, apperrors.ErrPayloadTooLarge
		}
		return nil, apperrors.InvalidRequestWithError(err)
	}

	degContent, degName, err := h.readFormFile(r, "deg_file")
	if err != nil {
		return nil, apperrors.ErrValidation("deg_file", "A differential expression file is required")
	}

	upload := &services.ResearchUpload{
		DEGContent:  degContent,
		DEGFilename: degName,
	}

	// Optional enrichment file.
	if content, name, err := h.readFormFile(r, "enrichment_file"); err == nil {
		upload.EnrichmentContent = content
		upload.EnrichmentFilename = name
	}

	if metaJSON := r.FormValue("meta"); metaJSON != "" {
		if err := json.Unmarshal([]byte(metaJSON), &upload.Meta); err != nil {
			return nil, apperrors.ErrValidation("meta", "meta must be a JSON object")
		}
		if err := h.validate.Struct(upload.Meta); err != nil {
			return nil, apperrors.ErrValidation("meta", err.Error())
		}
	}

	return upload, nil
}

func (h *ResearchHandler) readFormFile(r *http.Request, field string) ([]byte, string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, "", err
	}
	return content, header.Filename, nil
}
