package consensus

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/tzagara/curvecast/internal/domain"
)

// Repository persists meta-forecasts in the engine database.
// Series are stored as msgpack blobs; one row per symbol.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new consensus repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "consensus").Logger(),
	}
}

// Get returns the meta-forecast for a symbol, or nil if none exists
func (r *Repository) Get(symbol string) (*domain.MetaForecast, error) {
	var blob []byte
	var count int

	err := r.db.QueryRow(
		"SELECT series, count FROM meta_forecasts WHERE symbol = ?", symbol,
	).Scan(&blob, &count)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query meta-forecast: %w", err)
	}

	var series []domain.SeriesPoint
	if err := msgpack.Unmarshal(blob, &series); err != nil {
		return nil, fmt.Errorf("failed to decode meta-forecast series: %w", err)
	}

	return &domain.MetaForecast{Symbol: symbol, Series: series, Count: count}, nil
}

// Save upserts a meta-forecast
func (r *Repository) Save(meta *domain.MetaForecast) error {
	blob, err := msgpack.Marshal(meta.Series)
	if err != nil {
		return fmt.Errorf("failed to encode meta-forecast series: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO meta_forecasts (symbol, series, count, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET
			series = excluded.series,
			count = excluded.count,
			updated_at = excluded.updated_at`,
		meta.Symbol, blob, meta.Count, time.Now().UTC().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save meta-forecast: %w", err)
	}
	return nil
}
