package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Failure placeholders written into AnalysisResult when one of the two model
// calls fails. The other field is still populated if its call succeeded.
const (
	CaptionFailedPlaceholder = "Caption generation failed"
	QueryFailedPlaceholder   = "Query processing failed"
)

// AnalysisResult holds the output of a single image analysis. Each field is
// filled independently: a caption failure does not discard a query answer.
type AnalysisResult struct {
	ShortCaption   string `bson:"short_caption" json:"short_caption"`
	PromptResponse string `bson:"prompt_response" json:"prompt_response"`
	// Error aggregates per-call failure notes. Empty when both calls succeeded.
	Error string `bson:"error,omitempty" json:"error,omitempty"`
}

// AnalysisRecord is the persisted form of a request/result pair. Records are
// append-only: never mutated or deleted by this service.
type AnalysisRecord struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Timestamp      time.Time          `bson:"timestamp"`
	Filename       string             `bson:"filename"`
	Prompt         string             `bson:"prompt"`
	Analysis       AnalysisResult     `bson:"analysis_results"`
	ProcessingTime float64            `bson:"processing_time"`
	// ImageData is the base64-encoded JPEG. Excluded from history reads.
	ImageData string `bson:"image_data,omitempty"`
}
