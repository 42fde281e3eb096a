package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "bizpulse/internal/errors"
	"bizpulse/internal/middleware"
	"bizpulse/internal/services"
)

// QAHandler serves the natural-language question endpoint.
type QAHandler struct {
	service      *services.QAService
	validator    *middleware.RequestValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewQAHandler creates a new question-answering handler.
func NewQAHandler(service *services.QAService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *QAHandler {
	return &QAHandler{
		service:      service,
		validator:    middleware.NewRequestValidator(logger),
		logger:       logger.With(slog.String("component", "qa_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the question-answering routes.
func (h *QAHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/", h.Ask)

	return r
}

type qaRequest struct {
	Question string `json:"question" validate:"required,min=2,max=2000"`
}

// Ask handles POST /api/qa
func (h *QAHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req qaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	answer, err := h.service.Ask(r.Context(), req.Question)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"success": true,
		"result":  answer,
	})
}
