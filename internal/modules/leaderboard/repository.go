package leaderboard

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// scoredRow joins a settled forecast's score with its owner
type scoredRow struct {
	userID       string
	displayName  string
	tokenBalance int
	mspe         float64
	createdAt    time.Time
}

// Repository reads ranking inputs from the engine database
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new leaderboard repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "leaderboard").Logger(),
	}
}

// ScoredByUser returns every settled, scored forecast grouped by owner.
// Active forecasts are excluded: their score is still moving, so they would
// make the ranking jitter between sweeps.
func (r *Repository) ScoredByUser() (map[string][]ScoredForecast, map[string]Standing, error) {
	rows, err := r.db.Query(`
		SELECT f.user_id, u.display_name, u.token_balance, f.accuracy_score, f.created_at
		FROM forecasts f
		JOIN users u ON u.id = f.user_id
		WHERE f.user_id IS NOT NULL
		  AND f.accuracy_score IS NOT NULL
		  AND f.status IN ('completed', 'closed')`)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query scored forecasts: %w", err)
	}
	defer rows.Close()

	scores := make(map[string][]ScoredForecast)
	userInfo := make(map[string]Standing)
	for rows.Next() {
		var row scoredRow
		var createdAt int64
		if err := rows.Scan(&row.userID, &row.displayName, &row.tokenBalance, &row.mspe, &createdAt); err != nil {
			return nil, nil, fmt.Errorf("failed to scan scored forecast: %w", err)
		}
		row.createdAt = time.Unix(createdAt, 0).UTC()

		scores[row.userID] = append(scores[row.userID], ScoredForecast{
			MSPE:      row.mspe,
			CreatedAt: row.createdAt,
		})
		userInfo[row.userID] = Standing{
			UserID:       row.userID,
			DisplayName:  row.displayName,
			TokenBalance: row.tokenBalance,
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating scored forecasts: %w", err)
	}
	return scores, userInfo, nil
}
