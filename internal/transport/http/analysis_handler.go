package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"bizpulse/internal/config"
	apierrors "bizpulse/internal/errors"
	"bizpulse/internal/middleware"
	"bizpulse/internal/services"
)

var periodUnits = []string{"day", "week", "month", "quarter", "year"}

// AnalysisHandler serves the aggregation, growth and forecast endpoints.
type AnalysisHandler struct {
	service      *services.AnalysisService
	cfg          config.AnalysisConfig
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	query        *middleware.QueryParamValidator
}

// NewAnalysisHandler creates a new analysis handler.
func NewAnalysisHandler(service *services.AnalysisService, cfg config.AnalysisConfig, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *AnalysisHandler {
	return &AnalysisHandler{
		service:      service,
		cfg:          cfg,
		logger:       logger.With(slog.String("component", "analysis_handler")),
		errorHandler: errorHandler,
		query:        middleware.NewQueryParamValidator(logger, errorHandler),
	}
}

// Routes returns the analysis routes.
func (h *AnalysisHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/period", h.GetPeriod)
	r.Get("/clients", h.GetClients)
	r.Get("/products", h.GetProducts)
	r.Get("/brands", h.GetBrands)
	r.Get("/brands/{brand}/products", h.GetBrandProducts)
	r.Get("/brands/trend", h.GetBrandTrend)
	r.Get("/growth", h.GetGrowth)
	r.Get("/growth/rolling", h.GetRollingGrowth)
	r.Get("/forecast", h.GetForecast)

	return r
}

// listResponse wraps list results with their row count.
type listResponse struct {
	Success bool        `json:"success"`
	Count   int         `json:"count"`
	Results interface{} `json:"results"`
}

// GetPeriod handles GET /api/analysis/period?unit=month
func (h *AnalysisHandler) GetPeriod(w http.ResponseWriter, r *http.Request) {
	unit, ok := h.query.ValidateEnum(w, r, "unit", periodUnits, "month")
	if !ok {
		return
	}

	buckets, err := h.service.PeriodAnalysis(unit)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, listResponse{Success: true, Count: len(buckets), Results: buckets})
}

// GetClients handles GET /api/analysis/clients?top_n=20
func (h *AnalysisHandler) GetClients(w http.ResponseWriter, r *http.Request) {
	topN, ok := h.query.ValidateInt(w, r, "top_n", 1, h.cfg.MaxTopN, h.cfg.DefaultTopN)
	if !ok {
		return
	}

	buckets, err := h.service.ClientAnalysis(topN)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, listResponse{Success: true, Count: len(buckets), Results: buckets})
}

// GetProducts handles GET /api/analysis/products?top_n=20
func (h *AnalysisHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	topN, ok := h.query.ValidateInt(w, r, "top_n", 1, h.cfg.MaxTopN, h.cfg.DefaultTopN)
	if !ok {
		return
	}

	buckets, err := h.service.ProductAnalysis(topN)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, listResponse{Success: true, Count: len(buckets), Results: buckets})
}

// GetBrands handles GET /api/analysis/brands?top_n=20
func (h *AnalysisHandler) GetBrands(w http.ResponseWriter, r *http.Request) {
	topN, ok := h.query.ValidateInt(w, r, "top_n", 1, h.cfg.MaxTopN, h.cfg.DefaultTopN)
	if !ok {
		return
	}

	buckets, err := h.service.BrandAnalysis(topN)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, listResponse{Success: true, Count: len(buckets), Results: buckets})
}

// GetBrandProducts handles GET /api/analysis/brands/{brand}/products
func (h *AnalysisHandler) GetBrandProducts(w http.ResponseWriter, r *http.Request) {
	brandName, err := url.PathUnescape(chi.URLParam(r, "brand"))
	if err != nil || strings.TrimSpace(brandName) == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("brand", "brand name is required"))
		return
	}

	topN, ok := h.query.ValidateInt(w, r, "top_n", 1, h.cfg.MaxTopN, h.cfg.DefaultTopN)
	if !ok {
		return
	}

	products, err := h.service.BrandProducts(brandName, topN)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, listResponse{Success: true, Count: len(products), Results: products})
}

// GetBrandTrend handles GET /api/analysis/brands/trend?unit=month&brands=Canon,Sony
func (h *AnalysisHandler) GetBrandTrend(w http.ResponseWriter, r *http.Request) {
	unit, ok := h.query.ValidateEnum(w, r, "unit", periodUnits, "month")
	if !ok {
		return
	}

	var brands []string
	if raw := r.URL.Query().Get("brands"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brands = append(brands, b)
			}
		}
	}

	points, err := h.service.BrandTrendAnalysis(unit, brands)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, listResponse{Success: true, Count: len(points), Results: points})
}

// GetGrowth handles GET /api/analysis/growth?unit=month
func (h *AnalysisHandler) GetGrowth(w http.ResponseWriter, r *http.Request) {
	unit, ok := h.query.ValidateEnum(w, r, "unit", periodUnits, "month")
	if !ok {
		return
	}

	points, err := h.service.GrowthAnalysis(unit)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, listResponse{Success: true, Count: len(points), Results: points})
}

// GetRollingGrowth handles GET /api/analysis/growth/rolling?kind=client&window=6
func (h *AnalysisHandler) GetRollingGrowth(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.query.ValidateEnum(w, r, "kind", []string{"client", "brand"}, "client")
	if !ok {
		return
	}
	window, ok := h.query.ValidateInt(w, r, "window", 1, 36, h.cfg.DefaultWindowMonths)
	if !ok {
		return
	}
	topN, ok := h.query.ValidateInt(w, r, "top_n", 1, h.cfg.MaxTopN, h.cfg.DefaultTopN)
	if !ok {
		return
	}

	entries, err := h.service.RollingGrowthAnalysis(kind, window, topN)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, listResponse{Success: true, Count: len(entries), Results: entries})
}

// GetForecast handles GET /api/analysis/forecast?months=6
func (h *AnalysisHandler) GetForecast(w http.ResponseWriter, r *http.Request) {
	months, ok := h.query.ValidateInt(w, r, "months", 1, 24, h.cfg.ForecastMonths)
	if !ok {
		return
	}

	fc, err := h.service.ForecastAnalysis(months)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"success":  true,
		"forecast": fc,
	})
}
