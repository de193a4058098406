package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/moonsightlabs/moonsight/internal/api/response"
	"github.com/moonsightlabs/moonsight/pkg/models"
)

// HistoryReader defines the interface the history handler depends on.
type HistoryReader interface {
	History(ctx context.Context, limit int) ([]*models.AnalysisRecord, error)
}

type historyEntry struct {
	ID             string                `json:"id"`
	Timestamp      string                `json:"timestamp"`
	Filename       string                `json:"filename"`
	Prompt         string                `json:"prompt"`
	Analysis       models.AnalysisResult `json:"analysis"`
	ProcessingTime float64               `json:"processing_time"`
}

type historyResponse struct {
	History []historyEntry `json:"history"`
}

// NewHistoryHandler returns an http.HandlerFunc for GET /history?limit=N.
func NewHistoryHandler(svc HistoryReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if v := r.URL.Query().Get("limit"); v != "" {
			// Non-numeric limits fall back to the default rather than erroring.
			if n, err := strconv.Atoi(v); err == nil {
				limit = n
			}
		}

		records, err := svc.History(r.Context(), limit)
		if err != nil {
			slog.Error("failed to retrieve history", "error", err)
			response.Detail(w, http.StatusInternalServerError, "Failed to retrieve history")
			return
		}

		entries := make([]historyEntry, 0, len(records))
		for _, rec := range records {
			entries = append(entries, historyEntry{
				ID:             rec.ID.Hex(),
				Timestamp:      rec.Timestamp.UTC().Format(time.RFC3339),
				Filename:       rec.Filename,
				Prompt:         rec.Prompt,
				Analysis:       rec.Analysis,
				ProcessingTime: rec.ProcessingTime,
			})
		}

		response.OK(w, historyResponse{History: entries})
	}
}
