// Package forecast owns forecast persistence and the submission flow.
package forecast

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/tzagara/curvecast/internal/database"
	"github.com/tzagara/curvecast/internal/domain"
)

// Repository persists forecasts in the engine database and implements
// domain.ForecastStore. Series are stored as msgpack blobs.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new forecast repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "forecast").Logger(),
	}
}

const forecastColumns = `id, user_id, symbol, asset_name, timeframe, created_at,
	series, start_price, end_price, stake, contrarian_score, accuracy_score,
	rewards_earned, status`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanForecast(row rowScanner) (*domain.Forecast, error) {
	var f domain.Forecast
	var userID sql.NullString
	var createdAt int64
	var blob []byte
	var accuracy sql.NullFloat64
	var status string

	err := row.Scan(
		&f.ID, &userID, &f.Symbol, &f.AssetName, &f.Timeframe, &createdAt,
		&blob, &f.StartPrice, &f.EndPrice, &f.Stake, &f.ContrarianScore,
		&accuracy, &f.RewardsEarned, &status,
	)
	if err != nil {
		return nil, err
	}

	if userID.Valid {
		f.UserID = &userID.String
	}
	if accuracy.Valid {
		f.AccuracyScore = &accuracy.Float64
	}
	f.CreatedAt = time.Unix(createdAt, 0).UTC()
	f.Status = domain.ForecastStatus(status)

	if err := msgpack.Unmarshal(blob, &f.Series); err != nil {
		return nil, fmt.Errorf("failed to decode forecast series: %w", err)
	}
	return &f, nil
}

// Save inserts a new forecast
func (r *Repository) Save(f *domain.Forecast) error {
	blob, err := msgpack.Marshal(f.Series)
	if err != nil {
		return fmt.Errorf("failed to encode forecast series: %w", err)
	}

	var userID interface{}
	if f.UserID != nil {
		userID = *f.UserID
	}
	var accuracy interface{}
	if f.AccuracyScore != nil {
		accuracy = *f.AccuracyScore
	}

	_, err = r.db.Exec(`
		INSERT INTO forecasts (`+forecastColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, userID, f.Symbol, f.AssetName, f.Timeframe, f.CreatedAt.Unix(),
		blob, f.StartPrice, f.EndPrice, f.Stake, f.ContrarianScore,
		accuracy, f.RewardsEarned, string(f.Status),
	)
	if err != nil {
		return fmt.Errorf("failed to insert forecast: %w", err)
	}
	return nil
}

// GetByID returns a forecast or domain.ErrNotFound
func (r *Repository) GetByID(id string) (*domain.Forecast, error) {
	row := r.db.QueryRow("SELECT "+forecastColumns+" FROM forecasts WHERE id = ?", id)
	f, err := scanForecast(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query forecast: %w", err)
	}
	return f, nil
}

func (r *Repository) queryForecasts(query string, args ...interface{}) ([]domain.Forecast, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query forecasts: %w", err)
	}
	defer rows.Close()

	var result []domain.Forecast
	for rows.Next() {
		f, err := scanForecast(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan forecast: %w", err)
		}
		result = append(result, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating forecasts: %w", err)
	}
	return result, nil
}

// ByUser returns all forecasts owned by a user, newest first
func (r *Repository) ByUser(userID string) ([]domain.Forecast, error) {
	return r.queryForecasts(
		"SELECT "+forecastColumns+" FROM forecasts WHERE user_id = ? ORDER BY created_at DESC", userID)
}

// Active returns every forecast still in the active status
func (r *Repository) Active() ([]domain.Forecast, error) {
	return r.queryForecasts(
		"SELECT "+forecastColumns+" FROM forecasts WHERE status = ? ORDER BY created_at", string(domain.StatusActive))
}

// RecentBySymbol returns the newest forecasts for a symbol and timeframe
func (r *Repository) RecentBySymbol(symbol, timeframe string, limit int) ([]domain.Forecast, error) {
	if limit <= 0 {
		limit = 100
	}
	return r.queryForecasts(
		"SELECT "+forecastColumns+" FROM forecasts WHERE symbol = ? AND timeframe = ? ORDER BY created_at DESC LIMIT ?",
		symbol, timeframe, limit)
}

// UpdateAccuracy records a recomputed MSPE for a still-active forecast.
// Terminal forecasts are immutable; the status guard makes this a no-op for
// them rather than an error.
func (r *Repository) UpdateAccuracy(id string, mspe float64) error {
	_, err := r.db.Exec(
		"UPDATE forecasts SET accuracy_score = ? WHERE id = ? AND status = ?",
		mspe, id, string(domain.StatusActive),
	)
	if err != nil {
		return fmt.Errorf("failed to update accuracy for %s: %w", id, err)
	}
	return nil
}

// CompareAndTransition atomically moves a forecast from expected to next.
// Inside one transaction the forecast is re-read; if its status no longer
// equals expected, the current row is returned with transitioned=false and
// nothing is written. Otherwise mutate runs on the in-memory forecast, the
// status is set to next, and score, rewards and status are persisted
// together. A mutate error aborts the transaction with no partial write.
func (r *Repository) CompareAndTransition(
	id string,
	expected, next domain.ForecastStatus,
	mutate func(*domain.Forecast) error,
) (result *domain.Forecast, transitioned bool, err error) {
	err = database.WithTransaction(r.db, func(tx *sql.Tx) error {
		row := tx.QueryRow("SELECT "+forecastColumns+" FROM forecasts WHERE id = ?", id)
		f, scanErr := scanForecast(row)
		if scanErr == sql.ErrNoRows {
			return domain.ErrNotFound
		}
		if scanErr != nil {
			return fmt.Errorf("failed to load forecast: %w", scanErr)
		}

		if f.Status != expected {
			result = f
			return nil
		}

		if mutate != nil {
			if mutateErr := mutate(f); mutateErr != nil {
				return mutateErr
			}
		}
		f.Status = next

		var accuracy interface{}
		if f.AccuracyScore != nil {
			accuracy = *f.AccuracyScore
		}
		if _, execErr := tx.Exec(
			"UPDATE forecasts SET status = ?, accuracy_score = ?, rewards_earned = ? WHERE id = ?",
			string(f.Status), accuracy, f.RewardsEarned, id,
		); execErr != nil {
			return fmt.Errorf("failed to persist transition: %w", execErr)
		}

		// Rewards are credited in the same transaction as the terminal
		// transition, so a crash can never leave a paid-but-active or
		// terminal-but-unpaid forecast behind.
		if f.RewardsEarned > 0 && f.UserID != nil {
			if _, execErr := tx.Exec(
				"UPDATE users SET token_balance = token_balance + ?, updated_at = ? WHERE id = ?",
				f.RewardsEarned, time.Now().UTC().Unix(), *f.UserID,
			); execErr != nil {
				return fmt.Errorf("failed to credit rewards: %w", execErr)
			}
		}

		result = f
		transitioned = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if transitioned {
		r.log.Info().
			Str("forecast", id).
			Str("from", string(expected)).
			Str("to", string(next)).
			Msg("Forecast transitioned")
	}
	return result, transitioned, nil
}
