package services

import (
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"bizpulse/internal/analytics"
	"bizpulse/internal/brand"
	"bizpulse/internal/config"
	"bizpulse/internal/dataset"
	apierrors "bizpulse/internal/errors"
)

// AnalysisService holds the in-memory analysis session: the uploaded
// transaction data, optional client metadata and brand dictionary, and
// the prepared table every analysis reads from. Uploads replace the
// corresponding slot and rebuild the prepared table; reads run against
// a consistent snapshot under the read lock.
type AnalysisService struct {
	mu     sync.RWMutex
	cfg    config.AnalysisConfig
	logger *slog.Logger

	transactions *dataset.Table
	clients      *dataset.Table
	dictionary   *brand.Dictionary
	classifier   *brand.Classifier

	// prepared is transactions after normalization, client join and
	// brand annotation. Rebuilt on every upload.
	prepared *dataset.Table
}

// NewAnalysisService creates an empty analysis session.
func NewAnalysisService(cfg config.AnalysisConfig, logger *slog.Logger) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "analysis_service")),
	}
}

// LoadTransactions parses and stores a new transaction dataset,
// replacing any previous one.
func (s *AnalysisService) LoadTransactions(r io.Reader, filename string) (*dataset.Summary, error) {
	t, err := dataset.Load(r, filename)
	if err != nil {
		return nil, apierrors.ParseError(filename, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = t
	s.rebuild()

	s.logger.Info("transactions loaded",
		slog.String("file", filename),
		slog.Int("rows", len(s.prepared.Rows)),
		slog.Int("columns", len(s.prepared.Columns)))
	sum := dataset.Summarize(s.prepared)
	return &sum, nil
}

// LoadTransactionFiles loads and merges several transaction files from
// disk, for the batch reporting command.
func (s *AnalysisService) LoadTransactionFiles(paths ...string) (*dataset.Summary, error) {
	t, err := dataset.LoadFiles(s.logger, paths...)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = t
	s.rebuild()
	sum := dataset.Summarize(s.prepared)
	return &sum, nil
}

// LoadClients parses and stores client metadata, replacing any
// previous set.
func (s *AnalysisService) LoadClients(r io.Reader, filename string) (*dataset.Summary, error) {
	t, err := dataset.Load(r, filename)
	if err != nil {
		return nil, apierrors.ParseError(filename, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients = t
	s.rebuild()

	s.logger.Info("client metadata loaded",
		slog.String("file", filename),
		slog.Int("rows", len(t.Rows)))
	sum := dataset.Summarize(t)
	return &sum, nil
}

// LoadBrandDictionary parses a brand dictionary file and rebuilds the
// classifier. Returns the number of brands loaded.
func (s *AnalysisService) LoadBrandDictionary(r io.Reader, filename string) (int, error) {
	t, err := dataset.Load(r, filename)
	if err != nil {
		return 0, apierrors.ParseError(filename, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.dictionary = brand.LoadDictionary(t, s.logger)
	s.classifier = brand.NewClassifier(s.dictionary)
	s.rebuild()

	s.logger.Info("brand dictionary loaded",
		slog.String("file", filename),
		slog.Int("brands", s.dictionary.Len()))
	return s.dictionary.Len(), nil
}

// rebuild recomputes the prepared table. Callers must hold the write lock.
func (s *AnalysisService) rebuild() {
	if s.transactions == nil {
		s.prepared = nil
		return
	}

	t := dataset.Normalize(s.transactions, s.logger)
	if s.clients != nil {
		t = dataset.JoinClientInfo(t, s.clients, s.logger)
	}
	if s.classifier != nil {
		t = brand.Annotate(t, s.classifier, s.logger)
	}
	s.prepared = t
}

// snapshot returns the prepared table or a no-data error.
func (s *AnalysisService) snapshot() (*dataset.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.prepared == nil {
		return nil, apierrors.NoDataError("transaction")
	}
	return s.prepared, nil
}

// HasData reports whether a transaction dataset has been uploaded.
func (s *AnalysisService) HasData() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prepared != nil
}

// HasDictionary reports whether a brand dictionary has been uploaded.
func (s *AnalysisService) HasDictionary() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dictionary != nil && s.dictionary.Len() > 0
}

// clampTopN applies the configured default and ceiling.
func (s *AnalysisService) clampTopN(topN int) int {
	if topN <= 0 {
		return s.cfg.DefaultTopN
	}
	if topN > s.cfg.MaxTopN {
		return s.cfg.MaxTopN
	}
	return topN
}

// wrapDomainError maps domain failures onto API errors.
func wrapDomainError(err error) error {
	if err == nil {
		return nil
	}
	var missing *dataset.MissingColumnError
	if stderrors.As(err, &missing) {
		return apierrors.MissingColumnError(missing.Field, missing.Candidates)
	}
	if stderrors.Is(err, analytics.ErrInsufficientData) {
		return apierrors.InsufficientDataError(err.Error())
	}
	return err
}

// Summary returns the dataset overview.
func (s *AnalysisService) Summary() (*dataset.Summary, error) {
	t, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	sum := dataset.Summarize(t)
	return &sum, nil
}

// AnalysisContext renders a bounded text description of the session for
// the question-answering prompt.
func (s *AnalysisService) AnalysisContext() (string, error) {
	t, err := s.snapshot()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(dataset.RenderText(t, s.cfg.SummarySampleRows))

	s.mu.RLock()
	dict := s.dictionary
	s.mu.RUnlock()
	if dict != nil && dict.Len() > 0 {
		stats := brand.ComputeStats(t)
		fmt.Fprintf(&b, "\nBrand coverage: %d brands, %d of %d rows categorized, most frequent %q.\n",
			stats.TotalBrands, stats.CategorizedCount, len(t.Rows), stats.MostFrequent)
	}
	return b.String(), nil
}

// PeriodAnalysis aggregates sales by calendar period.
func (s *AnalysisService) PeriodAnalysis(unit string) ([]analytics.PeriodBucket, error) {
	t, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	u, err := analytics.ParsePeriodUnit(unit)
	if err != nil {
		return nil, apierrors.ErrValidation("unit", err.Error())
	}
	buckets, err := analytics.ByPeriod(t, u)
	return buckets, wrapDomainError(err)
}

// ClientAnalysis ranks clients by total sales.
func (s *AnalysisService) ClientAnalysis(topN int) ([]analytics.EntityBucket, error) {
	t, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	buckets, err := analytics.ByClient(t, s.clampTopN(topN))
	return buckets, wrapDomainError(err)
}

// ProductAnalysis ranks products by total sales.
func (s *AnalysisService) ProductAnalysis(topN int) ([]analytics.ProductBucket, error) {
	t, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	buckets, err := analytics.ByProduct(t, s.clampTopN(topN))
	return buckets, wrapDomainError(err)
}

// BrandAnalysis ranks brands by total sales. Requires a brand
// dictionary to have been uploaded.
func (s *AnalysisService) BrandAnalysis(topN int) ([]analytics.EntityBucket, error) {
	t, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	buckets, err := analytics.ByBrand(t, s.clampTopN(topN))
	return buckets, wrapDomainError(err)
}

// BrandProducts breaks a single brand down by product.
func (s *AnalysisService) BrandProducts(brandName string, topN int) ([]analytics.ProductBucket, error) {
	t, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	products, err := analytics.BrandProductDetail(t, brandName, s.clampTopN(topN))
	return products, wrapDomainError(err)
}

// BrandTrendAnalysis returns per-brand sales over time.
func (s *AnalysisService) BrandTrendAnalysis(unit string, brands []string) ([]analytics.BrandTrendPoint, error) {
	t, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	u, err := analytics.ParsePeriodUnit(unit)
	if err != nil {
		return nil, apierrors.ErrValidation("unit", err.Error())
	}
	points, err := analytics.BrandTrend(t, u, brands)
	return points, wrapDomainError(err)
}

// GrowthAnalysis returns period-over-period growth.
func (s *AnalysisService) GrowthAnalysis(unit string) ([]analytics.GrowthPoint, error) {
	t, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	u, err := analytics.ParsePeriodUnit(unit)
	if err != nil {
		return nil, apierrors.ErrValidation("unit", err.Error())
	}
	points, err := analytics.GrowthByPeriod(t, u)
	return points, wrapDomainError(err)
}

// RollingGrowthAnalysis compares the recent window against the prior
// window per client or brand.
func (s *AnalysisService) RollingGrowthAnalysis(kind string, windowMonths, topN int) ([]analytics.RollingGrowthEntry, error) {
	t, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	k, err := analytics.ParseEntityKind(kind)
	if err != nil {
		return nil, apierrors.ErrValidation("kind", err.Error())
	}
	if windowMonths <= 0 {
		windowMonths = s.cfg.DefaultWindowMonths
	}
	entries, err := analytics.RollingGrowth(t, k, windowMonths, s.clampTopN(topN))
	return entries, wrapDomainError(err)
}

// ForecastAnalysis projects monthly sales forward.
func (s *AnalysisService) ForecastAnalysis(monthsAhead int) (*analytics.Forecast, error) {
	t, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	if monthsAhead <= 0 {
		monthsAhead = s.cfg.ForecastMonths
	}
	fc, err := analytics.PredictSales(t, monthsAhead)
	return fc, wrapDomainError(err)
}

// BrandStatistics reports classification coverage for the session.
func (s *AnalysisService) BrandStatistics() (*brand.Stats, error) {
	t, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	stats := brand.ComputeStats(t)
	return &stats, nil
}
