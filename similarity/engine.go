// Package similarity scores series against each other by shared genres,
// authors, artists and type.
package similarity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/mangaingest"
)

// Feature weights. They sum to one.
const (
	GenreWeight  = 0.4
	AuthorWeight = 0.3
	ArtistWeight = 0.2
	TypeWeight   = 0.1
)

// Ensure Engine implements mangaingest.SimilarityRefresher at compile time.
var _ mangaingest.SimilarityRefresher = (*Engine)(nil)

// Score returns the similarity of a and b in [0,1]. Score is symmetric.
func Score(a, b mangaingest.Features) float64 {
	score := GenreWeight*overlap(a.Genres, b.Genres) +
		AuthorWeight*overlap(a.Authors, b.Authors) +
		ArtistWeight*overlap(a.Artists, b.Artists)
	if normalize(a.Type) == normalize(b.Type) {
		score += TypeWeight
	}
	return min(max(score, 0), 1)
}

// overlap is |a ∩ b| / max(|a|, |b|) over distinct case-insensitive members.
// It is zero when either side is empty.
func overlap(a, b []string) float64 {
	sa, sb := set(a), set(b)
	if len(sa) == 0 || len(sb) == 0 {
		return 0
	}
	shared := 0
	for k := range sa {
		if sb[k] {
			shared++
		}
	}
	return float64(shared) / float64(max(len(sa), len(sb)))
}

func normalize(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

func set(values []string) map[string]bool {
	out := make(map[string]bool, len(values))
	for _, v := range values {
		v = normalize(v)
		if v != "" {
			out[v] = true
		}
	}
	return out
}

// Engine recomputes and stores similarity edges.
type Engine struct {
	Series       mangaingest.SeriesService
	Similarities mangaingest.SimilarityService

	// Now defaults to time.Now.
	Now func() time.Time
}

// Refresh scores seriesID against every other series and upserts both
// directions of each pair.
func (e *Engine) Refresh(ctx context.Context, seriesID string) error {
	all, err := e.Series.FindFeatures(ctx)
	if err != nil {
		return fmt.Errorf("loading features: %w", err)
	}

	var source *mangaingest.Features
	for _, f := range all {
		if f.SeriesID == seriesID {
			source = f
			break
		}
	}
	if source == nil {
		return mangaingest.Errorf(mangaingest.ENOTFOUND, "series %q not found", seriesID)
	}

	now := e.now()
	var edges []*mangaingest.SimilarityEdge
	for _, target := range all {
		if target.SeriesID == seriesID {
			continue
		}
		edges = append(edges, pair(source, target, now)...)
	}
	if len(edges) == 0 {
		return nil
	}
	return e.Similarities.UpsertSimilarities(ctx, edges)
}

// RefreshAll recomputes every pair of series.
func (e *Engine) RefreshAll(ctx context.Context) (int, error) {
	all, err := e.Series.FindFeatures(ctx)
	if err != nil {
		return 0, fmt.Errorf("loading features: %w", err)
	}

	now := e.now()
	var edges []*mangaingest.SimilarityEdge
	for i := range all {
		for j := i + 1; j < len(all); j++ {
			if all[i].SeriesID == all[j].SeriesID {
				continue
			}
			edges = append(edges, pair(all[i], all[j], now)...)
		}
	}
	if len(edges) == 0 {
		return 0, nil
	}
	if err := e.Similarities.UpsertSimilarities(ctx, edges); err != nil {
		return 0, err
	}
	return len(edges), nil
}

// FindSimilar returns up to limit edges from seriesID, best first. A limit
// of zero or less uses mangaingest.DefaultSimilarLimit.
func (e *Engine) FindSimilar(ctx context.Context, seriesID string, limit int) ([]*mangaingest.SimilarityEdge, error) {
	if limit <= 0 {
		limit = mangaingest.DefaultSimilarLimit
	}
	return e.Similarities.FindSimilar(ctx, seriesID, limit)
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func pair(a, b *mangaingest.Features, now time.Time) []*mangaingest.SimilarityEdge {
	score := Score(*a, *b)
	return []*mangaingest.SimilarityEdge{
		{SourceID: a.SeriesID, TargetID: b.SeriesID, Score: score, UpdatedAt: now},
		{SourceID: b.SeriesID, TargetID: a.SeriesID, Score: score, UpdatedAt: now},
	}
}
