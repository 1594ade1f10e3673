package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Shimizu-Technology/report-analyzer-api/internal/testutil"
)

// TestOpenAPISpec makes sure the embedded spec parses and documents every
// public route.
func TestOpenAPISpec(t *testing.T) {
	var spec struct {
		OpenAPI string                    `yaml:"openapi"`
		Paths   map[string]map[string]any `yaml:"paths"`
	}
	require.NoError(t, yaml.Unmarshal(openAPISpec, &spec))

	assert.Equal(t, "3.0.3", spec.OpenAPI)
	for path, method := range map[string]string{
		"/":              "get",
		"/analyze":       "post",
		"/api/v1/health": "get",
		"/metrics":       "get",
		"/app":           "get",
	} {
		require.Contains(t, spec.Paths, path)
		assert.Contains(t, spec.Paths[path], method, "path %s", path)
	}
}

func TestDocsAndAppPages(t *testing.T) {
	s := newTestServer(t, testutil.Reply("unused"), testAPIKey, 1<<20)

	tests := []struct {
		path        string
		contentType string
		contains    string
	}{
		{"/api/docs", "text/html; charset=utf-8", "swagger-ui"},
		{"/api/docs/openapi.yaml", "application/yaml", "Medical Report Analyzer API"},
		{"/app", "text/html; charset=utf-8", `formData.append("file", selectedFile)`},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.contentType, rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), tt.contains)
		})
	}
}
