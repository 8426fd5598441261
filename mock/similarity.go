package mock

import (
	"context"

	"github.com/fwojciec/mangaingest"
)

var _ mangaingest.SimilarityService = (*SimilarityService)(nil)

// SimilarityService is a mock implementation of mangaingest.SimilarityService.
type SimilarityService struct {
	UpsertSimilaritiesFn func(ctx context.Context, edges []*mangaingest.SimilarityEdge) error
	FindSimilarFn        func(ctx context.Context, seriesID string, limit int) ([]*mangaingest.SimilarityEdge, error)
}

func (s *SimilarityService) UpsertSimilarities(ctx context.Context, edges []*mangaingest.SimilarityEdge) error {
	return s.UpsertSimilaritiesFn(ctx, edges)
}

func (s *SimilarityService) FindSimilar(ctx context.Context, seriesID string, limit int) ([]*mangaingest.SimilarityEdge, error) {
	return s.FindSimilarFn(ctx, seriesID, limit)
}

var _ mangaingest.SimilarityRefresher = (*SimilarityRefresher)(nil)

// SimilarityRefresher is a mock implementation of mangaingest.SimilarityRefresher.
type SimilarityRefresher struct {
	RefreshFn func(ctx context.Context, seriesID string) error
}

func (r *SimilarityRefresher) Refresh(ctx context.Context, seriesID string) error {
	return r.RefreshFn(ctx, seriesID)
}
