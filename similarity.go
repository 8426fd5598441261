package mangaingest

import (
	"context"
	"time"
)

// SimilarityEdge is a directed, scored relationship between two series.
// Edges are always stored in pairs with identical scores.
type SimilarityEdge struct {
	SourceID  string    `json:"sourceId"`
	TargetID  string    `json:"targetId"`
	Score     float64   `json:"score"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate returns an error if the edge contains invalid fields.
func (e *SimilarityEdge) Validate() error {
	if e.SourceID == "" || e.TargetID == "" {
		return Errorf(EINVALID, "similarity edge endpoints required")
	}
	if e.SourceID == e.TargetID {
		return Errorf(EINVALID, "similarity edge cannot point at itself")
	}
	if e.Score < 0 || e.Score > 1 {
		return Errorf(EINVALID, "similarity score %v out of range", e.Score)
	}
	return nil
}

// DefaultSimilarLimit is the number of recommendations returned when the
// caller does not set a limit.
const DefaultSimilarLimit = 6

// SimilarityService persists similarity edges.
type SimilarityService interface {
	// UpsertSimilarities creates or refreshes edges keyed on
	// (SourceID, TargetID) in a single transaction.
	UpsertSimilarities(ctx context.Context, edges []*SimilarityEdge) error

	// FindSimilar returns the highest scoring edges originating at seriesID,
	// ordered by score descending.
	FindSimilar(ctx context.Context, seriesID string, limit int) ([]*SimilarityEdge, error)
}

// SimilarityRefresher recomputes the edges between one series and every
// other series.
type SimilarityRefresher interface {
	Refresh(ctx context.Context, seriesID string) error
}
