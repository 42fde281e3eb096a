package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizpulse/internal/config"
	apierrors "bizpulse/internal/errors"
	"bizpulse/internal/services"
)

const salesCSV = `날짜,공급가액,거래처명,품명 및 규격
2024-01-15,"1,000,000",알파상사,캐논 EOS R5
2024-02-10,500000,알파상사,소니 A7 IV
2024-02-20,250000,베타물산,캐논 잉크 카트리지
2024-03-05,750000,베타물산,무명 액세서리
`

const brandsCSV = `브랜드명,영문명,유사표기
캐논,Canon,캐논코리아
소니,Sony,소니코리아
`

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

type testEnv struct {
	router  chi.Router
	service *services.AnalysisService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := config.Default()
	logger := testLogger()
	eh := apierrors.NewErrorHandler(logger)
	svc := services.NewAnalysisService(cfg.Analysis, logger)
	health := services.NewHealthService("test", svc, services.NewQAService(cfg.QA, svc, logger), logger)

	r := chi.NewRouter()
	r.Mount("/api/upload", NewUploadHandler(svc, cfg.Server.MaxUploadBytes, logger, eh).Routes())
	r.Mount("/api/summary", NewSummaryHandler(svc, logger, eh).Routes())
	r.Mount("/api/analysis", NewAnalysisHandler(svc, cfg.Analysis, logger, eh).Routes())
	r.Mount("/api/health", NewHealthHandler(health, logger).Routes())

	return &testEnv{router: r, service: svc}
}

func multipartBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func (e *testEnv) upload(t *testing.T, path, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, filename, content)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) get(path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), "body: %s", rec.Body.String())
	return m
}

func TestUploadTransactions(t *testing.T) {
	env := newTestEnv(t)

	rec := env.upload(t, "/api/upload/transactions", "sales.csv", salesCSV)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decodeJSON(t, rec)
	assert.Equal(t, true, resp["success"])
	summary := resp["summary"].(map[string]interface{})
	assert.EqualValues(t, 4, summary["total_rows"])
}

func TestUploadRejectsUnknownExtension(t *testing.T) {
	env := newTestEnv(t)

	rec := env.upload(t, "/api/upload/transactions", "sales.txt", salesCSV)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeJSON(t, rec)
	assert.Equal(t, false, resp["success"])
}

func TestUploadRejectsLegacyExcel(t *testing.T) {
	env := newTestEnv(t)

	rec := env.upload(t, "/api/upload/transactions", "sales.xls", salesCSV)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeJSON(t, rec)
	assert.Equal(t, false, resp["success"])
	errObj := resp["error"].(map[string]interface{})
	assert.Equal(t, "VALIDATION_FAILED", errObj["error_code"])
}

func TestUploadRequiresFileField(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("other", "x"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload/transactions", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSummaryWithoutData(t *testing.T) {
	env := newTestEnv(t)

	rec := env.get("/api/summary")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	resp := decodeJSON(t, rec)
	errObj := resp["error"].(map[string]interface{})
	assert.Equal(t, "NO_DATA", errObj["error_code"])
}

func TestPeriodAnalysisEndpoint(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusOK, env.upload(t, "/api/upload/transactions", "sales.csv", salesCSV).Code)

	rec := env.get("/api/analysis/period?unit=month")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decodeJSON(t, rec)
	assert.EqualValues(t, 3, resp["count"])
	results := resp["results"].([]interface{})
	first := results[0].(map[string]interface{})
	assert.Equal(t, "2024-01", first["label"])
}

func TestPeriodAnalysisRejectsBadUnit(t *testing.T) {
	env := newTestEnv(t)
	env.upload(t, "/api/upload/transactions", "sales.csv", salesCSV)

	rec := env.get("/api/analysis/period?unit=fortnight")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClientAnalysisEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.upload(t, "/api/upload/transactions", "sales.csv", salesCSV)

	rec := env.get("/api/analysis/clients?top_n=1")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeJSON(t, rec)
	assert.EqualValues(t, 1, resp["count"])
	first := resp["results"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "알파상사", first["name"])
}

func TestBrandFlowEndToEnd(t *testing.T) {
	env := newTestEnv(t)
	env.upload(t, "/api/upload/transactions", "sales.csv", salesCSV)

	// Brand analysis needs a dictionary first.
	rec := env.get("/api/analysis/brands")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.upload(t, "/api/upload/brands", "brands.csv", brandsCSV)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeJSON(t, rec)
	assert.EqualValues(t, 2, resp["brands"])

	rec = env.get("/api/analysis/brands")
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decodeJSON(t, rec)
	first := resp["results"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "캐논", first["name"])

	rec = env.get("/api/analysis/brands/" + "%EC%BA%90%EB%85%BC" + "/products")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp = decodeJSON(t, rec)
	assert.EqualValues(t, 2, resp["count"])
}

func TestRollingGrowthEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.upload(t, "/api/upload/transactions", "sales.csv", salesCSV)

	rec := env.get("/api/analysis/growth/rolling?kind=client&window=1")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.get("/api/analysis/growth/rolling?kind=vendor")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestForecastEndpointInsufficientData(t *testing.T) {
	env := newTestEnv(t)
	one := "날짜,공급가액,거래처명,품명 및 규격\n2024-01-15,100,A,x\n"
	env.upload(t, "/api/upload/transactions", "sales.csv", one)

	rec := env.get("/api/analysis/forecast")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	resp := decodeJSON(t, rec)
	errObj := resp["error"].(map[string]interface{})
	assert.Equal(t, "INSUFFICIENT_DATA", errObj["error_code"])
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := env.get("/api/health")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeJSON(t, rec)
	assert.Equal(t, "healthy", resp["status"])
	session := resp["session"].(map[string]interface{})
	assert.Equal(t, false, session["data_loaded"])

	env.upload(t, "/api/upload/transactions", "sales.csv", salesCSV)
	resp = decodeJSON(t, env.get("/api/health"))
	session = resp["session"].(map[string]interface{})
	assert.Equal(t, true, session["data_loaded"])
}

func TestQAEndpointUnavailable(t *testing.T) {
	cfg := config.Default()
	logger := testLogger()
	eh := apierrors.NewErrorHandler(logger)
	svc := services.NewAnalysisService(cfg.Analysis, logger)
	qa := services.NewQAService(cfg.QA, svc, logger)

	r := chi.NewRouter()
	r.Mount("/api/qa", NewQAHandler(qa, logger, eh).Routes())

	req := httptest.NewRequest(http.MethodPost, "/api/qa", strings.NewReader(`{"question":"총 매출은?"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestQAEndpointValidatesBody(t *testing.T) {
	cfg := config.Default()
	cfg.QA.GeminiAPIKey = "key"
	logger := testLogger()
	eh := apierrors.NewErrorHandler(logger)
	svc := services.NewAnalysisService(cfg.Analysis, logger)
	qa := services.NewQAService(cfg.QA, svc, logger)

	r := chi.NewRouter()
	r.Mount("/api/qa", NewQAHandler(qa, logger, eh).Routes())

	req := httptest.NewRequest(http.MethodPost, "/api/qa", strings.NewReader(`{"question":""}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
