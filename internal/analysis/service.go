// Package analysis orchestrates the per-request pipeline: normalize the
// upload, run caption and query inference, persist the outcome best-effort.
package analysis

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/moonsightlabs/moonsight/internal/cache"
	"github.com/moonsightlabs/moonsight/internal/imgproc"
	"github.com/moonsightlabs/moonsight/internal/store"
	"github.com/moonsightlabs/moonsight/internal/vision"
	"github.com/moonsightlabs/moonsight/pkg/models"
)

const historyCacheTTL = 30 * time.Second

// AnalyzeParams holds validated parameters for one analysis request.
type AnalyzeParams struct {
	Image        []byte
	Filename     string
	Prompt       string
	MaxNewTokens int
}

// Outcome is what the handler serializes back to the caller.
type Outcome struct {
	Analysis models.AnalysisResult
	// ProcessingTime is wall-clock seconds from receipt to just before
	// persistence is dispatched.
	ProcessingTime float64
}

// Service composes the normalizer, vision model, and store. The model may be
// nil when startup initialization failed; requests then fail with
// vision.ErrModelUnavailable while health reports degraded.
type Service struct {
	model models.VisionModel
	store store.Store
	cache cache.Cache
}

// NewService creates a new analysis Service.
func NewService(model models.VisionModel, st store.Store, ca cache.Cache) *Service {
	return &Service{
		model: model,
		store: st,
		cache: ca,
	}
}

// Analyze runs the request pipeline. Decode failures and an uninitialized
// model abort the request; a failure of either inference call is absorbed
// into the result, and persistence failures never surface to the caller.
func (s *Service) Analyze(ctx context.Context, p AnalyzeParams) (*Outcome, error) {
	start := time.Now()

	if s.model == nil {
		return nil, vision.ErrModelUnavailable
	}

	img, err := imgproc.Normalize(p.Image)
	if err != nil {
		return nil, fmt.Errorf("normalize upload: %w", err)
	}
	slog.Info("image normalized",
		"filename", p.Filename,
		"format", img.Format,
		"width", img.Width,
		"height", img.Height,
	)

	jpegBytes, err := img.EncodeJPEG()
	if err != nil {
		return nil, fmt.Errorf("encode normalized image: %w", err)
	}

	result := s.infer(ctx, jpegBytes, p)

	elapsed := time.Since(start).Seconds()

	rec := &models.AnalysisRecord{
		Timestamp:      time.Now().UTC(),
		Filename:       p.Filename,
		Prompt:         p.Prompt,
		Analysis:       result,
		ProcessingTime: elapsed,
		ImageData:      base64.StdEncoding.EncodeToString(jpegBytes),
	}
	go s.persist(rec)

	return &Outcome{Analysis: result, ProcessingTime: elapsed}, nil
}

// infer runs the two model calls independently so one failure does not
// prevent attempting the other. No retries.
func (s *Service) infer(ctx context.Context, image []byte, p AnalyzeParams) models.AnalysisResult {
	var result models.AnalysisResult
	var notes []string

	caption, err := s.model.Caption(ctx, image)
	if err != nil {
		slog.Error("caption inference failed", "error", err, "filename", p.Filename)
		result.ShortCaption = models.CaptionFailedPlaceholder
		notes = append(notes, fmt.Sprintf("caption: %v", err))
	} else {
		result.ShortCaption = caption
	}

	answer, err := s.model.Query(ctx, image, p.Prompt, p.MaxNewTokens)
	if err != nil {
		slog.Error("query inference failed", "error", err, "filename", p.Filename)
		result.PromptResponse = models.QueryFailedPlaceholder
		notes = append(notes, fmt.Sprintf("query: %v", err))
	} else {
		result.PromptResponse = answer
	}

	if len(notes) > 0 {
		result.Error = "Analysis partially failed: " + strings.Join(notes, "; ")
	}
	return result
}

// persist writes the record in the background, decoupled from the request
// lifecycle. Failure is logged once and never re-attempted.
func (s *Service) persist(rec *models.AnalysisRecord) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic while persisting analysis record", "error", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := s.store.InsertAnalysis(ctx, rec); err != nil {
		slog.Error("failed to store analysis record", "error", err, "filename", rec.Filename)
		return
	}
	slog.Info("analysis record stored", "filename", rec.Filename)

	if err := s.cache.DeletePrefix(ctx, cache.HistoryPrefix); err != nil {
		slog.Warn("failed to invalidate history cache", "error", err)
	}
}

// History returns up to limit records, most recent first, without image
// payloads. Pages are cached briefly to absorb dashboard polling.
func (s *Service) History(ctx context.Context, limit int) ([]*models.AnalysisRecord, error) {
	limit = store.ClampLimit(limit)

	key := cache.HistoryKey(limit)
	if cached, found, err := s.cache.Get(ctx, key); err == nil && found {
		var records []*models.AnalysisRecord
		if jsonErr := json.Unmarshal(cached, &records); jsonErr == nil {
			return records, nil
		}
		// Corrupt cache entry: fall through to the store.
		_ = s.cache.Delete(ctx, key)
	}

	records, err := s.store.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}

	if payload, err := json.Marshal(records); err == nil {
		_ = s.cache.Set(ctx, key, payload, historyCacheTTL)
	}
	return records, nil
}
