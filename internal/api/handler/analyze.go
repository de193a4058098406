// Package handler contains the HTTP handlers for the Moonsight API.
package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/moonsightlabs/moonsight/internal/analysis"
	"github.com/moonsightlabs/moonsight/internal/api/response"
	"github.com/moonsightlabs/moonsight/internal/imgproc"
	"github.com/moonsightlabs/moonsight/internal/vision"
	"github.com/moonsightlabs/moonsight/pkg/models"
)

const (
	defaultMaxNewTokens = 100
	maxNewTokensCeiling = 2048
)

// Analyzer defines the interface the analyze handler depends on.
type Analyzer interface {
	Analyze(ctx context.Context, p analysis.AnalyzeParams) (*analysis.Outcome, error)
}

type analyzeResponse struct {
	Status         string                `json:"status"`
	Analysis       models.AnalysisResult `json:"analysis"`
	ProcessingTime float64               `json:"processing_time"`
}

// NewAnalyzeHandler returns an http.HandlerFunc for POST /analyze.
// The request is a multipart form: image (file), prompt (string),
// max_new_tokens (int, optional).
func NewAnalyzeHandler(svc Analyzer, maxUploadBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			response.Detail(w, http.StatusBadRequest, "Invalid multipart form")
			return
		}

		file, header, err := r.FormFile("image")
		if err != nil {
			response.Detail(w, http.StatusBadRequest, "image file is required")
			return
		}
		defer file.Close()

		prompt := r.FormValue("prompt")
		if prompt == "" {
			response.Detail(w, http.StatusBadRequest, "prompt is required")
			return
		}

		maxNewTokens := defaultMaxNewTokens
		if v := r.FormValue("max_new_tokens"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				response.Detail(w, http.StatusBadRequest, "max_new_tokens must be an integer")
				return
			}
			maxNewTokens = n
		}
		if maxNewTokens < 1 {
			maxNewTokens = 1
		}
		if maxNewTokens > maxNewTokensCeiling {
			maxNewTokens = maxNewTokensCeiling
		}

		data, err := io.ReadAll(file)
		if err != nil {
			response.Detail(w, http.StatusBadRequest, "failed to read image upload")
			return
		}

		slog.Info("received analysis request",
			"filename", header.Filename,
			"prompt", prompt,
			"size_bytes", len(data),
		)

		out, err := svc.Analyze(r.Context(), analysis.AnalyzeParams{
			Image:        data,
			Filename:     header.Filename,
			Prompt:       prompt,
			MaxNewTokens: maxNewTokens,
		})
		if err != nil {
			switch {
			case errors.Is(err, imgproc.ErrInvalidImage):
				response.Detail(w, http.StatusBadRequest, "Invalid image format")
			case errors.Is(err, vision.ErrModelUnavailable):
				response.Detail(w, http.StatusInternalServerError, "Model not initialized. Please try again later.")
			default:
				slog.Error("analysis failed", "error", err)
				response.Detail(w, http.StatusInternalServerError, err.Error())
			}
			return
		}

		response.OK(w, analyzeResponse{
			Status:         "success",
			Analysis:       out.Analysis,
			ProcessingTime: out.ProcessingTime,
		})
	}
}
