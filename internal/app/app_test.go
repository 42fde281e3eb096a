package app

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizpulse/internal/infrastructure"
)

// setupTestEnvironment configures env vars for an isolated application.
func setupTestEnvironment(t *testing.T) {
	t.Helper()
	infrastructure.ResetLoggerForTesting()
	t.Setenv("BIZ_SERVER_PORT", "8199")
	t.Setenv("BIZ_LOGGING_LEVEL", "error")

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestNewApplication(t *testing.T) {
	tests := []struct {
		name          string
		setupEnv      func(t *testing.T)
		wantErr       bool
		errorContains string
	}{
		{
			name:     "successful initialization",
			setupEnv: func(t *testing.T) {},
			wantErr:  false,
		},
		{
			name: "initialization with invalid config",
			setupEnv: func(t *testing.T) {
				t.Setenv("BIZ_SERVER_PORT", "-1")
			},
			wantErr:       true,
			errorContains: "configuration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTestEnvironment(t)
			tt.setupEnv(t)

			application, err := NewApplication()

			if tt.wantErr {
				assert.Error(t, err)
				if tt.errorContains != "" {
					assert.Contains(t, err.Error(), tt.errorContains)
				}
				assert.Nil(t, application)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, application)
			assert.NotNil(t, application.Config)
			assert.NotNil(t, application.Logger)
			assert.NotNil(t, application.Router)
			assert.NotNil(t, application.Server)
			assert.NotNil(t, application.AnalysisService)
			assert.NotNil(t, application.QAService)
			assert.NotNil(t, application.HealthService)
		})
	}
}

func TestRouterRoutes(t *testing.T) {
	setupTestEnvironment(t)

	application, err := NewApplication()
	require.NoError(t, err)

	server := httptest.NewServer(application.Router)
	defer server.Close()

	t.Run("health endpoint responds", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/api/health")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "healthy", body["status"])
		assert.Equal(t, Version, body["version"])
	})

	t.Run("summary without data returns structured 404", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/api/summary")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		var body struct {
			Success bool `json:"success"`
			Error   struct {
				Code string `json:"error_code"`
			} `json:"error"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.False(t, body.Success)
		assert.Equal(t, "NO_DATA", body.Error.Code)
	})

	t.Run("unknown route returns JSON 404", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/api/nonexistent")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")
	})

	t.Run("request id header present", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/api/health")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	})

	t.Run("upload and summary round trip", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile("file", "sales.csv")
		require.NoError(t, err)
		_, err = part.Write([]byte("날짜,거래처,상품명,매출액\n2024-01-15,알파상사,캐논 EOS R5,1000000\n"))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		resp, err := http.Post(server.URL+"/api/upload/transactions", mw.FormDataContentType(), &buf)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		resp2, err := http.Get(server.URL + "/api/summary")
		require.NoError(t, err)
		defer resp2.Body.Close()
		assert.Equal(t, http.StatusOK, resp2.StatusCode)
	})
}

func TestApplicationStop(t *testing.T) {
	setupTestEnvironment(t)

	application, err := NewApplication()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application.Start(ctx, cancel)
	time.Sleep(50 * time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	assert.NoError(t, application.Stop(stopCtx))
}
