package store

import (
	"context"

	"github.com/moonsightlabs/moonsight/pkg/models"
)

const (
	// DefaultHistoryLimit is applied when the caller does not ask for a
	// specific page size.
	DefaultHistoryLimit = 10
	// MaxHistoryLimit bounds a single history read.
	MaxHistoryLimit = 100
)

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error
	// InsertAnalysis appends one record. Records are never updated or deleted.
	InsertAnalysis(ctx context.Context, rec *models.AnalysisRecord) error
	// ListRecent returns up to limit records ordered by timestamp descending,
	// with the image payload excluded.
	ListRecent(ctx context.Context, limit int) ([]*models.AnalysisRecord, error)
}

// ClampLimit normalizes a caller-supplied history limit.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		return MaxHistoryLimit
	}
	return limit
}
