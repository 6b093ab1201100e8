// Package performance records and serves per-user performance history.
package performance

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tzagara/curvecast/internal/domain"
)

// Repository persists snapshots in the history database
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new performance repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "performance").Logger(),
	}
}

// Save appends a snapshot
func (r *Repository) Save(s *domain.PerformanceSnapshot) error {
	var meanMSPE, weightedMSPE interface{}
	if s.MeanMSPE != nil {
		meanMSPE = *s.MeanMSPE
	}
	if s.TimeWeightedMSPE != nil {
		weightedMSPE = *s.TimeWeightedMSPE
	}

	_, err := r.db.Exec(`
		INSERT INTO performance_snapshots
			(user_id, taken_at, token_balance, total_forecasts, scored_forecasts,
			 mean_mspe, time_weighted_mspe, rank)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.UserID, s.TakenAt.Unix(), s.TokenBalance, s.TotalForecasts,
		s.ScoredForecasts, meanMSPE, weightedMSPE, s.Rank,
	)
	if err != nil {
		return fmt.Errorf("failed to insert performance snapshot: %w", err)
	}
	return nil
}

// History returns a user's snapshots, newest first
func (r *Repository) History(userID string, limit int) ([]domain.PerformanceSnapshot, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.Query(`
		SELECT user_id, taken_at, token_balance, total_forecasts, scored_forecasts,
		       mean_mspe, time_weighted_mspe, rank
		FROM performance_snapshots
		WHERE user_id = ?
		ORDER BY taken_at DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query performance history: %w", err)
	}
	defer rows.Close()

	var result []domain.PerformanceSnapshot
	for rows.Next() {
		var s domain.PerformanceSnapshot
		var takenAt int64
		var meanMSPE, weightedMSPE sql.NullFloat64
		if err := rows.Scan(&s.UserID, &takenAt, &s.TokenBalance, &s.TotalForecasts,
			&s.ScoredForecasts, &meanMSPE, &weightedMSPE, &s.Rank); err != nil {
			return nil, fmt.Errorf("failed to scan performance snapshot: %w", err)
		}
		s.TakenAt = time.Unix(takenAt, 0).UTC()
		if meanMSPE.Valid {
			s.MeanMSPE = &meanMSPE.Float64
		}
		if weightedMSPE.Valid {
			s.TimeWeightedMSPE = &weightedMSPE.Float64
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating performance snapshots: %w", err)
	}
	return result, nil
}
