package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Shimizu-Technology/report-analyzer-api/internal/handlers"
	"github.com/Shimizu-Technology/report-analyzer-api/internal/middleware"
	"github.com/Shimizu-Technology/report-analyzer-api/internal/models"
	"github.com/Shimizu-Technology/report-analyzer-api/internal/observability"
	"github.com/Shimizu-Technology/report-analyzer-api/internal/services/analysis"
	"github.com/Shimizu-Technology/report-analyzer-api/internal/services/llm"
	"github.com/Shimizu-Technology/report-analyzer-api/internal/services/pdf"
	"github.com/Shimizu-Technology/report-analyzer-api/internal/services/scratch"
	"github.com/Shimizu-Technology/report-analyzer-api/internal/testutil"
)

const allowedOrigin = "https://reports.example"

// echoResponder answers with the report text it was sent, so every
// response can be traced back to its own upload.
func echoResponder(req openai.ChatCompletionRequest) (int, any) {
	_, report, _ := strings.Cut(req.Messages[len(req.Messages)-1].Content, "Report text:\n\n")
	return http.StatusOK, testutil.Completion("echo: " + report)
}

func setup(t *testing.T, rateLimit int) (*gin.Engine, *scratch.Dir) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	provider := testutil.NewFakeProvider(t, echoResponder)
	logger := zaptest.NewLogger(t)
	metrics := observability.NewMetrics()

	dir, err := scratch.New(t.TempDir())
	require.NoError(t, err)

	client := llm.New(llm.Options{APIKey: "sk-test", Model: "test-model", BaseURL: provider.URL}, logger)
	svc := analysis.New(dir, pdf.Extractor{}, client, metrics, logger)
	h := handlers.NewHandler(svc, metrics, logger, handlers.Options{
		Version:        "test",
		Model:          client.Model(),
		LLMConfigured:  true,
		MaxUploadBytes: 1 << 20,
	})

	rl := middleware.NewRateLimiter(rateLimit)
	t.Cleanup(rl.Stop)

	return Setup(h, rl, metrics, logger, []string{allowedOrigin}), dir
}

func uploadRequest(t *testing.T, text string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(handlers.UploadField, "report.pdf")
	require.NoError(t, err)
	_, err = part.Write(testutil.BuildPDF(text))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/analyze", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Origin", allowedOrigin)
	return req
}

func TestSetup_Routes(t *testing.T) {
	r, _ := setup(t, 0)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/api/v1/health", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/app", http.StatusOK},
		{http.MethodGet, "/api/docs", http.StatusOK},
		{http.MethodGet, "/api/docs/openapi.yaml", http.StatusOK},
		{http.MethodGet, "/does-not-exist", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestAnalyze_CORSAndMetrics(t *testing.T) {
	r, _ := setup(t, 0)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, uploadRequest(t, "Vitamin D 12 ng/mL"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, allowedOrigin, rec.Header().Get("Access-Control-Allow-Origin"))

	blocked := uploadRequest(t, "Vitamin D 12 ng/mL")
	blocked.Header.Set("Origin", "https://other.example")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, blocked)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `report_analyzer_analyses_total{outcome="success"} 1`)
}

func TestAnalyze_RateLimited(t *testing.T) {
	r, _ := setup(t, 1)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, uploadRequest(t, "Iron 40"))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, uploadRequest(t, "Iron 40"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestAnalyze_ConcurrentUploads(t *testing.T) {
	r, dir := setup(t, 0)

	const n = 10
	var wg sync.WaitGroup
	results := make([]models.AnalysisResult, n)
	codes := make([]int, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, uploadRequest(t, fmt.Sprintf("sample-%02d TSH 2.%d", i, i)))
			codes[i] = rec.Code
			_ = json.Unmarshal(rec.Body.Bytes(), &results[i])
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		assert.Equal(t, http.StatusOK, codes[i])
		assert.True(t, results[i].Success)
		assert.Contains(t, results[i].Result, fmt.Sprintf("sample-%02d", i))
		for j := 0; j < n; j++ {
			if j != i {
				assert.NotContains(t, results[i].Result, fmt.Sprintf("sample-%02d", j))
			}
		}
	}

	entries, err := os.ReadDir(dir.Path())
	require.NoError(t, err)
	assert.Empty(t, entries)
}
