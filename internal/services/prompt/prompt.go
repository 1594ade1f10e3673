// Package prompt builds the fixed system and user messages sent to the model.
package prompt

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
)

// MaxReportChars is the character budget for report text inside the prompt.
const MaxReportChars = 8000

// TruncationMarker is appended when the report text exceeds MaxReportChars.
const TruncationMarker = "\n\n[Text truncated for analysis]"

//go:embed templates/*.tmpl
var templatesFS embed.FS

var templates = template.Must(template.ParseFS(templatesFS, "templates/*.tmpl"))

// Messages is the rendered conversation for one analysis.
type Messages struct {
	System string
	User   string
}

// Build renders both messages for the given extracted report text.
// The text is truncated to the budget before rendering.
func Build(reportText string) (*Messages, error) {
	system, err := render("system.tmpl", nil)
	if err != nil {
		return nil, err
	}

	user, err := render("report.tmpl", map[string]string{
		"ReportText": TruncateReport(reportText),
	})
	if err != nil {
		return nil, err
	}

	return &Messages{System: system, User: user}, nil
}

// TruncateReport keeps the first MaxReportChars characters and appends the
// marker when anything was cut. Characters are counted as runes so
// multi-byte text is never split mid-character.
func TruncateReport(text string) string {
	runes := []rune(text)
	if len(runes) <= MaxReportChars {
		return text
	}
	return string(runes[:MaxReportChars]) + TruncationMarker
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}
