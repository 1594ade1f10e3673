// analyze.go handles the report analysis endpoint.
//
// POST /analyze: upload a PDF (field "file") and get the model's analysis
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Shimizu-Technology/report-analyzer-api/internal/apperror"
	"github.com/Shimizu-Technology/report-analyzer-api/internal/models"
	"github.com/Shimizu-Technology/report-analyzer-api/internal/services/analysis"
)

// UploadField is the multipart field name shared with the browser client.
const UploadField = "file"

// MsgNoFile is returned when the request carries no file.
const MsgNoFile = "No PDF uploaded"

// Analyze handles PDF upload and analysis.
// POST /analyze
//
// Processing is synchronous: one request, one model call, one response.
func (h *Handler) Analyze(c *gin.Context) {
	// Limit request body size
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.opts.MaxUploadBytes)

	file, header, err := c.Request.FormFile(UploadField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.fail(c, apperror.TooLarge(
				fmt.Sprintf("PDF exceeds the maximum upload size of %d MB", h.opts.MaxUploadBytes>>20), err))
			return
		}
		h.fail(c, apperror.Validation(MsgNoFile, err))
		return
	}
	defer file.Close()

	result, err := h.Analysis.Analyze(c.Request.Context(), analysis.Upload{
		Filename: header.Filename,
		Content:  file,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	h.Metrics.AnalysesTotal.WithLabelValues("success").Inc()
	c.JSON(http.StatusOK, models.Succeeded(result))
}

// fail logs the cause and writes the uniform error envelope.
// Only the tagged, user-safe message reaches the client.
func (h *Handler) fail(c *gin.Context, err error) {
	appErr := apperror.From(err)
	h.Metrics.AnalysesTotal.WithLabelValues(string(appErr.Kind)).Inc()

	fields := []zap.Field{
		zap.String("kind", string(appErr.Kind)),
		zap.String("message", appErr.Message),
	}
	if appErr.Err != nil {
		fields = append(fields, zap.Error(appErr.Err))
	}

	if appErr.StatusCode() >= http.StatusInternalServerError {
		h.Logger.Error("❌ Error while processing PDF", fields...)
	} else {
		h.Logger.Warn("⚠️  Rejected analysis request", fields...)
	}

	c.JSON(appErr.StatusCode(), models.Failed(appErr.Message))
}
