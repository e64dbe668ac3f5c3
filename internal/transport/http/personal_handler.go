package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apperrors "bioreport/internal/errors"
	"bioreport/internal/genetics"
	"bioreport/pkg/contracts/domain"
)

// PersonalHandler handles personal genomics analysis requests.
type PersonalHandler struct {
	logger       *slog.Logger
	errorHandler *apperrors.ErrorHandler
	validate     *validator.Validate
}

// NewPersonalHandler creates a new personal genomics handler.
func NewPersonalHandler(logger *slog.Logger, errorHandler *apperrors.ErrorHandler) *PersonalHandler {
	return &PersonalHandler{
		logger:       logger.With(slog.String("component", "personal_handler")),
		errorHandler: errorHandler,
		validate:     validator.New(),
	}
}

// Routes returns the personal genomics routes.
func (h *PersonalHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Post("/analyze", h.Analyze)
	return r
}

// Analyze handles POST /api/personal/analyze.
func (h *PersonalHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req domain.PersonalAnalyzeRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apperrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, apperrors.ErrValidation("snps", err.Error()))
		return
	}

	resp := genetics.Analyze(req)

	h.logger.InfoContext(r.Context(), "personal analysis complete",
		slog.Int("snps", len(req.SNPs)),
		slog.Int("cards", len(resp.Cards)))

	render.JSON(w, r, resp)
}
