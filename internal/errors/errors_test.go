package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizpulse/internal/infrastructure"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestAPIErrorImplementsError(t *testing.T) {
	err := New(http.StatusBadRequest, "INVALID_REQUEST", "bad input")
	assert.Equal(t, "bad input", err.Error())
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, MissingColumnError("date", []string{"날짜", "일자"}))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "MISSING_COLUMN", resp.Error.ErrorCode)
	assert.Contains(t, resp.Error.Message, "date")
}

func TestDomainConstructors(t *testing.T) {
	tests := []struct {
		err        *APIError
		wantStatus int
		wantCode   string
	}{
		{NoDataError("transaction"), http.StatusNotFound, "NO_DATA"},
		{InsufficientDataError("forecasting"), http.StatusUnprocessableEntity, "INSUFFICIENT_DATA"},
		{ParseError("sales.xlsx", fmt.Errorf("bad zip")), http.StatusBadRequest, "PARSE_FAILED"},
		{QAUnavailableError("no provider configured"), http.StatusServiceUnavailable, "QA_UNAVAILABLE"},
		{ErrValidation("top_n", "must be positive"), http.StatusBadRequest, "VALIDATION_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.wantCode, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, tt.err.StatusCode)
			assert.Equal(t, tt.wantCode, tt.err.ErrorCode)
		})
	}
}

func TestHandlerWrapsPlainErrors(t *testing.T) {
	h := NewErrorHandler(testLogger())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)

	h.HandleError(rec, req, fmt.Errorf("boom"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "INTERNAL_SERVER_ERROR", resp.Error.ErrorCode)
}

func TestHandlerLogsRequestID(t *testing.T) {
	var buf bytes.Buffer
	h := NewErrorHandler(slog.New(slog.NewJSONHandler(&buf, nil)))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)
	req = req.WithContext(infrastructure.WithTraceID(req.Context(), "req-abc-123"))

	h.HandleError(rec, req, fmt.Errorf("boom"))

	assert.Contains(t, buf.String(), `"request_id":"req-abc-123"`)
}

func TestHandlerPreservesAPIErrors(t *testing.T) {
	h := NewErrorHandler(testLogger())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/analysis/forecast", nil)

	h.HandleError(rec, req, fmt.Errorf("wrapped: %w", InsufficientDataError("forecasting")))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "INSUFFICIENT_DATA", resp.Error.ErrorCode)
}
