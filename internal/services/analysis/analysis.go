// Package analysis runs one report analysis end to end:
// store upload, extract text, build prompt, call the model, clean up.
//
// Each call is independent. The only shared state is the scratch directory
// (every upload gets its own file) and the metrics collectors.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/Shimizu-Technology/report-analyzer-api/internal/apperror"
	"github.com/Shimizu-Technology/report-analyzer-api/internal/observability"
	"github.com/Shimizu-Technology/report-analyzer-api/internal/services/pdf"
	"github.com/Shimizu-Technology/report-analyzer-api/internal/services/prompt"
	"github.com/Shimizu-Technology/report-analyzer-api/internal/services/scratch"
)

// User-facing messages.
const (
	MsgNotPDF        = "The uploaded file does not appear to be a valid PDF"
	MsgExtractFailed = "Could not extract text from PDF. Please upload a text-based report."
	MsgStoreFailed   = "Failed to process PDF"
)

// TextExtractor pulls plain text out of PDF bytes.
type TextExtractor interface {
	Extract(data []byte) (*pdf.ExtractionResult, error)
}

// Completer sends a prompt to the model and returns its answer.
type Completer interface {
	Complete(ctx context.Context, msgs *prompt.Messages) (string, error)
}

// Upload is one uploaded file as received by the handler.
type Upload struct {
	Filename string
	Content  io.Reader
}

// Service handles report analysis.
type Service struct {
	scratch   *scratch.Dir
	extractor TextExtractor
	llm       Completer
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// New creates a new analysis service.
func New(dir *scratch.Dir, ext TextExtractor, llm Completer, metrics *observability.Metrics, logger *zap.Logger) *Service {
	return &Service{
		scratch:   dir,
		extractor: ext,
		llm:       llm,
		metrics:   metrics,
		logger:    logger,
	}
}

// Analyze returns the model's report for the uploaded PDF.
// Every error is an *apperror.Error.
//
// The completion call is detached from ctx cancellation: a client that
// disconnects does not abort the in-flight provider request.
func (s *Service) Analyze(ctx context.Context, up Upload) (string, error) {
	s.metrics.AnalysesInFlight.Inc()
	defer s.metrics.AnalysesInFlight.Dec()

	file, err := s.scratch.Acquire(up.Filename, up.Content)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return "", apperror.TooLarge(fmt.Sprintf("PDF exceeds the maximum upload size of %d MB", maxErr.Limit>>20), err)
		}
		return "", apperror.Internal(MsgStoreFailed, err)
	}
	defer file.Release()

	data, err := file.ReadAll()
	if err != nil {
		return "", apperror.Internal(MsgStoreFailed, err)
	}

	if !pdf.ValidatePDF(data) {
		return "", apperror.Validation(MsgNotPDF, nil)
	}

	extracted, err := s.extractor.Extract(data)
	if err != nil {
		return "", apperror.Validation(MsgExtractFailed, err)
	}
	if strings.TrimSpace(extracted.Text) == "" {
		return "", apperror.Validation(MsgExtractFailed,
			fmt.Errorf("no text on %d page(s), %d unreadable", extracted.PageCount, extracted.FailedPages))
	}

	chars := utf8.RuneCountInString(extracted.Text)
	truncated := chars > prompt.MaxReportChars
	s.metrics.ExtractedChars.Observe(float64(chars))
	if truncated {
		s.metrics.TruncatedReports.Inc()
	}

	msgs, err := prompt.Build(extracted.Text)
	if err != nil {
		return "", apperror.Internal(MsgStoreFailed, err)
	}

	start := time.Now()
	result, err := s.llm.Complete(context.WithoutCancel(ctx), msgs)
	s.metrics.CompletionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return "", apperror.From(err)
	}

	s.logger.Info("✅ Analysis complete",
		zap.String("file", up.Filename),
		zap.Int64("bytes", file.Size),
		zap.Int("pages", extracted.PageCount),
		zap.Int("words", extracted.WordCount),
		zap.Int("chars", chars),
		zap.Bool("truncated", truncated),
		zap.Duration("llm_latency", time.Since(start)),
	)
	return result, nil
}
