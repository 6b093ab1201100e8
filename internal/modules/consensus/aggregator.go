// Package consensus maintains the per-symbol crowd meta-forecast.
package consensus

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tzagara/curvecast/internal/domain"
)

// mergeSeries folds an incoming series into the existing consensus series as
// a cumulative moving average. count is the number of contributions already
// folded in. Where only one side has an index, that side's point is taken
// unchanged; where both do, the incoming timestamp wins. The result grows to
// the longer of the two series.
//
// Because contributions are weighted by arrival order, differing series
// lengths make this an online weighted mean rather than a true unweighted
// mean per index. That is the intended behavior, matching how the consensus
// has always been accumulated.
func mergeSeries(existing []domain.SeriesPoint, count int, incoming []domain.SeriesPoint) []domain.SeriesPoint {
	maxLen := len(existing)
	if len(incoming) > maxLen {
		maxLen = len(incoming)
	}

	merged := make([]domain.SeriesPoint, 0, maxLen)
	c := float64(count)
	for i := 0; i < maxLen; i++ {
		switch {
		case i < len(existing) && i < len(incoming):
			merged = append(merged, domain.SeriesPoint{
				Price:     (existing[i].Price*c + incoming[i].Price) / (c + 1),
				Timestamp: incoming[i].Timestamp,
			})
		case i < len(existing):
			merged = append(merged, existing[i])
		default:
			merged = append(merged, incoming[i])
		}
	}
	return merged
}

// Aggregator folds submitted forecasts into per-symbol meta-forecasts.
// Updates for the same symbol are serialized by a per-symbol mutex so
// concurrent submissions cannot lose contributions.
type Aggregator struct {
	repo *Repository
	log  zerolog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewAggregator creates a consensus aggregator backed by the repository
func NewAggregator(repo *Repository, log zerolog.Logger) *Aggregator {
	return &Aggregator{
		repo:  repo,
		log:   log.With().Str("component", "consensus").Logger(),
		locks: make(map[string]*sync.Mutex),
	}
}

func (a *Aggregator) symbolLock(symbol string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()
	if lock, ok := a.locks[symbol]; ok {
		return lock
	}
	lock := &sync.Mutex{}
	a.locks[symbol] = lock
	return lock
}

// Update folds a newly submitted forecast series into the symbol's
// meta-forecast, creating it on first contribution, and returns the updated
// consensus. The count increments exactly once per call.
func (a *Aggregator) Update(symbol string, series []domain.SeriesPoint) (*domain.MetaForecast, error) {
	lock := a.symbolLock(symbol)
	lock.Lock()
	defer lock.Unlock()

	meta, err := a.repo.Get(symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to load meta-forecast for %s: %w", symbol, err)
	}

	if meta == nil {
		meta = &domain.MetaForecast{
			Symbol: symbol,
			Series: append([]domain.SeriesPoint(nil), series...),
			Count:  1,
		}
	} else {
		meta.Series = mergeSeries(meta.Series, meta.Count, series)
		meta.Count++
	}

	if err := a.repo.Save(meta); err != nil {
		return nil, fmt.Errorf("failed to save meta-forecast for %s: %w", symbol, err)
	}

	a.log.Debug().Str("symbol", symbol).Int("count", meta.Count).Msg("Consensus updated")
	return meta, nil
}

// Get returns the current meta-forecast for a symbol, or nil if no forecast
// has ever been submitted for it.
func (a *Aggregator) Get(symbol string) (*domain.MetaForecast, error) {
	return a.repo.Get(symbol)
}
