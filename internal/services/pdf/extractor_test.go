// extractor_test.go covers text extraction and magic-byte validation.
package pdf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shimizu-Technology/report-analyzer-api/internal/testutil"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name      string
		pages     []string
		wantPages int
		contains  []string
		wantEmpty bool
	}{
		{
			name:      "single page lab report",
			pages:     []string{"Hemoglobin 10.2 g/dL (13.5-17.5) LOW"},
			wantPages: 1,
			contains:  []string{"Hemoglobin", "LOW"},
		},
		{
			name:      "multiple pages are joined",
			pages:     []string{"Glucose 130 mg/dL", "Cholesterol 240 mg/dL"},
			wantPages: 2,
			contains:  []string{"Glucose", "Cholesterol"},
		},
		{
			name:      "text with parentheses survives escaping",
			pages:     []string{"TSH (thyroid) 5.9"},
			wantPages: 1,
			contains:  []string{"(thyroid)"},
		},
		{
			name:      "page without text",
			pages:     []string{""},
			wantPages: 1,
			wantEmpty: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Extract(testutil.BuildPDF(tt.pages...))
			require.NoError(t, err)

			assert.Equal(t, tt.wantPages, result.PageCount)
			if tt.wantEmpty {
				assert.Empty(t, strings.TrimSpace(result.Text))
				assert.Zero(t, result.WordCount)
				return
			}
			for _, s := range tt.contains {
				assert.Contains(t, result.Text, s)
			}
			assert.Positive(t, result.WordCount)
		})
	}
}

func TestExtract_NotAPDF(t *testing.T) {
	_, err := Extract([]byte("definitely not a pdf"))
	assert.Error(t, err)
}

func TestExtractorType(t *testing.T) {
	result, err := Extractor{}.Extract(testutil.BuildPDF("WBC 7.1"))
	require.NoError(t, err)
	assert.Contains(t, result.Text, "WBC")
}

func TestValidatePDF(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  bool
	}{
		{"real header", []byte("%PDF-1.7\n..."), true},
		{"fixture", testutil.BuildPDF("x"), true},
		{"png header", []byte("\x89PNG\r\n"), false},
		{"too short", []byte("%PD"), false},
		{"empty", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidatePDF(tt.input); got != tt.want {
				t.Errorf("ValidatePDF(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
