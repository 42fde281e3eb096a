package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	startTime time.Time
	analysis  *AnalysisService
	qa        *QAService
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Uptime    string                 `json:"uptime"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Session   map[string]interface{} `json:"session,omitempty"`
}

// NewHealthService creates a new health service
func NewHealthService(version string, analysis *AnalysisService, qa *QAService, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		startTime: time.Now(),
		analysis:  analysis,
		qa:        qa,
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// Check returns the current health status
func (hs *HealthService) Check(ctx context.Context) HealthStatus {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   hs.version,
		Uptime:    time.Since(hs.startTime).Round(time.Second).String(),
		Runtime: map[string]interface{}{
			"go_version":     runtime.Version(),
			"goroutines":     runtime.NumGoroutine(),
			"alloc_mb":       m.Alloc / 1024 / 1024,
			"total_alloc_mb": m.TotalAlloc / 1024 / 1024,
		},
		Session: map[string]interface{}{
			"data_loaded":       hs.analysis.HasData(),
			"dictionary_loaded": hs.analysis.HasDictionary(),
			"qa_available":      hs.qa.Available(),
		},
	}
}
