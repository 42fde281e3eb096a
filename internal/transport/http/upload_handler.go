package http

import (
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "bizpulse/internal/errors"
	"bizpulse/internal/services"
)

// UploadHandler handles dataset upload requests.
type UploadHandler struct {
	service      *services.AnalysisService
	maxBytes     int64
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(service *services.AnalysisService, maxBytes int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *UploadHandler {
	return &UploadHandler{
		service:      service,
		maxBytes:     maxBytes,
		logger:       logger.With(slog.String("component", "upload_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the upload routes.
func (h *UploadHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/transactions", h.UploadTransactions)
	r.Post("/clients", h.UploadClients)
	r.Post("/brands", h.UploadBrands)

	return r
}

// uploadResponse is the success envelope for upload endpoints.
type uploadResponse struct {
	Success bool        `json:"success"`
	File    string      `json:"file"`
	Summary interface{} `json:"summary,omitempty"`
	Brands  *int        `json:"brands,omitempty"`
}

// openUpload extracts the uploaded file from the multipart form,
// enforcing the configured size limit and allowed extensions.
func (h *UploadHandler) openUpload(w http.ResponseWriter, r *http.Request) (multipart.File, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		if strings.Contains(err.Error(), "request body too large") {
			h.errorHandler.HandleError(w, r, apierrors.ErrUploadTooLarge)
		} else {
			h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		}
		return nil, "", false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "a multipart file field named 'file' is required"))
		return nil, "", false
	}

	switch strings.ToLower(filepath.Ext(header.Filename)) {
	// Legacy OLE .xls is not accepted; the Excel reader only handles
	// OOXML workbooks.
	case ".csv", ".xlsx":
	default:
		file.Close()
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "only .csv and .xlsx files are supported"))
		return nil, "", false
	}

	return file, header.Filename, true
}

// UploadTransactions handles POST /api/upload/transactions
func (h *UploadHandler) UploadTransactions(w http.ResponseWriter, r *http.Request) {
	file, name, ok := h.openUpload(w, r)
	if !ok {
		return
	}
	defer file.Close()

	summary, err := h.service.LoadTransactions(file, name)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, uploadResponse{Success: true, File: name, Summary: summary})
}

// UploadClients handles POST /api/upload/clients
func (h *UploadHandler) UploadClients(w http.ResponseWriter, r *http.Request) {
	file, name, ok := h.openUpload(w, r)
	if !ok {
		return
	}
	defer file.Close()

	summary, err := h.service.LoadClients(file, name)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, uploadResponse{Success: true, File: name, Summary: summary})
}

// UploadBrands handles POST /api/upload/brands
func (h *UploadHandler) UploadBrands(w http.ResponseWriter, r *http.Request) {
	file, name, ok := h.openUpload(w, r)
	if !ok {
		return
	}
	defer file.Close()

	count, err := h.service.LoadBrandDictionary(file, name)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, uploadResponse{Success: true, File: name, Brands: &count})
}
