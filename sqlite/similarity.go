package sqlite

import (
	"context"

	"github.com/fwojciec/mangaingest"
)

// Compile-time interface verification.
var _ mangaingest.SimilarityService = (*SimilarityService)(nil)

// SimilarityService implements mangaingest.SimilarityService using SQLite.
type SimilarityService struct {
	db *DB
}

// NewSimilarityService creates a new SimilarityService.
func NewSimilarityService(db *DB) *SimilarityService {
	return &SimilarityService{db: db}
}

// UpsertSimilarities writes edges in one transaction. An existing
// (source, target) row has its score and timestamp replaced.
func (s *SimilarityService) UpsertSimilarities(ctx context.Context, edges []*mangaingest.SimilarityEdge) error {
	for _, e := range edges {
		if err := e.Validate(); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO similarities (source_id, target_id, score, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (source_id, target_id) DO UPDATE SET
			score = excluded.score,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range edges {
		if _, err := stmt.ExecContext(ctx, e.SourceID, e.TargetID, e.Score, formatTime(e.UpdatedAt)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// FindSimilar returns up to limit edges from seriesID ordered by score,
// highest first.
func (s *SimilarityService) FindSimilar(ctx context.Context, seriesID string, limit int) ([]*mangaingest.SimilarityEdge, error) {
	if limit <= 0 {
		limit = mangaingest.DefaultSimilarLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT source_id, target_id, score, updated_at
		FROM similarities
		WHERE source_id = ?
		ORDER BY score DESC, target_id
		LIMIT ?
	`, seriesID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []*mangaingest.SimilarityEdge
	for rows.Next() {
		var e mangaingest.SimilarityEdge
		var updatedAt string
		if err := rows.Scan(&e.SourceID, &e.TargetID, &e.Score, &updatedAt); err != nil {
			return nil, err
		}
		if e.UpdatedAt, err = parseRFC3339(updatedAt, "updated_at"); err != nil {
			return nil, err
		}
		edges = append(edges, &e)
	}
	return edges, rows.Err()
}
