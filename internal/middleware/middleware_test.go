package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "bizpulse/internal/errors"
	"bizpulse/internal/infrastructure"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestRequestIDGeneratesUUID(t *testing.T) {
	var captured string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = infrastructure.GetTraceID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, captured)
	assert.Equal(t, captured, rec.Header().Get("X-Request-ID"))
}

func TestRequestIDHonorsIncomingHeader(t *testing.T) {
	var captured string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetReqID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "client-supplied-id")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "client-supplied-id", captured)
}

func TestRecovererReturnsJSONError(t *testing.T) {
	handler := Recoverer(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "INTERNAL_SERVER_ERROR")
}

func TestRateLimiterRejectsWhenExhausted(t *testing.T) {
	rl := NewRateLimiter(1, 1, testLogger())
	handler := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "60", second.Header().Get("Retry-After"))
}

func TestSecurityHeaders(t *testing.T) {
	handler := SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestRequestValidator(t *testing.T) {
	v := NewRequestValidator(testLogger())

	type qaRequest struct {
		Question string `json:"question" validate:"required,min=2"`
		Period   string `json:"period" validate:"period"`
	}

	assert.NoError(t, v.ValidateStruct(qaRequest{Question: "총 매출은?", Period: "month"}))

	err := v.ValidateStruct(qaRequest{Question: "", Period: "fortnight"})
	require.Error(t, err)
	var apiErr *apierrors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "VALIDATION_FAILED", apiErr.ErrorCode)
}

func TestQueryParamValidator(t *testing.T) {
	qv := NewQueryParamValidator(testLogger(), apierrors.NewErrorHandler(testLogger()))

	req := httptest.NewRequest(http.MethodGet, "/api/analysis/clients?top_n=15", nil)
	got, ok := qv.ValidateInt(httptest.NewRecorder(), req, "top_n", 1, 100, 20)
	assert.True(t, ok)
	assert.Equal(t, 15, got)

	req = httptest.NewRequest(http.MethodGet, "/api/analysis/clients", nil)
	got, ok = qv.ValidateInt(httptest.NewRecorder(), req, "top_n", 1, 100, 20)
	assert.True(t, ok)
	assert.Equal(t, 20, got)

	req = httptest.NewRequest(http.MethodGet, "/api/analysis/clients?top_n=9999", nil)
	rec := httptest.NewRecorder()
	_, ok = qv.ValidateInt(rec, req, "top_n", 1, 100, 20)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/analysis/period?unit=quarter", nil)
	unit, ok := qv.ValidateEnum(httptest.NewRecorder(), req, "unit", []string{"day", "week", "month", "quarter", "year"}, "month")
	assert.True(t, ok)
	assert.Equal(t, "quarter", unit)
}
