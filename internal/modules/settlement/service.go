// Package settlement owns the forecast lifecycle: the active -> terminal
// state machine, idempotent re-settlement and the payoff credit.
package settlement

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tzagara/curvecast/internal/domain"
	"github.com/tzagara/curvecast/internal/modules/scoring"
	"github.com/tzagara/curvecast/internal/modules/timeframe"
)

// Settings holds the settlement tunables
type Settings struct {
	MinEarlyCloseProgress float64 // below this an early close fails with ErrTooEarly
	MinScoringProgress    float64 // below this accuracy stays undefined
	PayoffMinMultiple     float64
	PayoffMaxMultiple     float64
}

// DefaultSettings returns the canonical thresholds
func DefaultSettings() Settings {
	return Settings{
		MinEarlyCloseProgress: 0.05,
		MinScoringProgress:    scoring.DefaultMinScoringProgress,
		PayoffMinMultiple:     scoring.DefaultPayoffMinMultiple,
		PayoffMaxMultiple:     scoring.DefaultPayoffMaxMultiple,
	}
}

// Result is the outcome of a settlement call. For an already-terminal
// forecast it is the stored outcome, not a recomputation.
type Result struct {
	ForecastID      string                `json:"forecastId"`
	Status          domain.ForecastStatus `json:"status"`
	MSPE            *float64              `json:"mspe"`
	ContrarianScore float64               `json:"contrarianScore"`
	Progress        float64               `json:"progress"`
	Payoff          int                   `json:"payoff"`
	AlreadyTerminal bool                  `json:"alreadyTerminal"`
}

// Service drives settlements. It is pull-based: nothing settles until a
// caller (HTTP or the sweep job) asks for it.
type Service struct {
	store    domain.ForecastStore
	feed     domain.PriceFeed
	clock    domain.Clock
	settings Settings
	log      zerolog.Logger
}

// NewService creates a settlement service
func NewService(store domain.ForecastStore, feed domain.PriceFeed, clock domain.Clock, settings Settings, log zerolog.Logger) *Service {
	return &Service{
		store:    store,
		feed:     feed,
		clock:    clock,
		settings: settings,
		log:      log.With().Str("component", "settlement").Logger(),
	}
}

// Settle scores a forecast against a realized price and, when the forecast
// reaches a terminal state, pays the owner exactly once.
//
// actualPrice may be nil, in which case the price feed supplies it. A
// terminal forecast returns its stored result without recomputation or a
// second credit, whatever price is passed. An active forecast recomputes
// MSPE over every elapsed point; the payoff fires only on the transition
// edge into completed (progress >= 1) or closed (early close, progress >=
// MinEarlyCloseProgress).
func (s *Service) Settle(ctx context.Context, forecastID string, actualPrice *float64, earlyClose bool) (*Result, error) {
	f, err := s.store.GetByID(forecastID)
	if err != nil {
		return nil, err
	}

	spec := timeframe.Resolve(f.Timeframe)
	progress := scoring.Progress(f.CreatedAt, s.clock.Now(), spec.Duration())

	// Terminal forecasts are immutable: settlement is idempotent
	if f.Status.IsTerminal() {
		return s.storedResult(f, progress), nil
	}

	actual, err := s.resolvePrice(ctx, f.Symbol, actualPrice)
	if err != nil {
		return nil, err
	}

	// Early closes below the threshold fail before any mutation
	if earlyClose && progress < 1 && progress < s.settings.MinEarlyCloseProgress {
		return nil, fmt.Errorf("progress %.3f is below the %.2f close threshold: %w",
			progress, s.settings.MinEarlyCloseProgress, domain.ErrTooEarly)
	}

	mspe, defined, err := scoring.MSPE(f.Series, actual, progress, s.settings.MinScoringProgress)
	if err != nil {
		return nil, err
	}

	switch {
	case progress >= 1:
		return s.transition(f, domain.StatusCompleted, mspe, defined, progress, false)
	case earlyClose:
		return s.transition(f, domain.StatusClosed, mspe, defined, progress, true)
	default:
		// Still maturing: record the recomputed score and stay active
		if defined {
			if err := s.store.UpdateAccuracy(f.ID, mspe); err != nil {
				return nil, err
			}
		}
		result := &Result{
			ForecastID:      f.ID,
			Status:          domain.StatusActive,
			ContrarianScore: f.ContrarianScore,
			Progress:        progress,
		}
		if defined {
			result.MSPE = &mspe
		}
		return result, nil
	}
}

func (s *Service) resolvePrice(ctx context.Context, symbol string, actualPrice *float64) (float64, error) {
	if actualPrice != nil {
		if *actualPrice <= 0 {
			return 0, fmt.Errorf("realized price must be positive, got %v: %w", *actualPrice, domain.ErrInvalidInput)
		}
		return *actualPrice, nil
	}

	price, err := s.feed.CurrentPrice(ctx, symbol)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch price for %s: %w", symbol, err)
	}
	return price, nil
}

// storedResult reassembles the outcome recorded at transition time
func (s *Service) storedResult(f *domain.Forecast, progress float64) *Result {
	return &Result{
		ForecastID:      f.ID,
		Status:          f.Status,
		MSPE:            f.AccuracyScore,
		ContrarianScore: f.ContrarianScore,
		Progress:        progress,
		Payoff:          f.RewardsEarned,
		AlreadyTerminal: true,
	}
}

func (s *Service) transition(f *domain.Forecast, next domain.ForecastStatus, mspe float64, defined bool, progress float64, earlyClose bool) (*Result, error) {
	updated, transitioned, err := s.store.CompareAndTransition(f.ID, domain.StatusActive, next,
		func(current *domain.Forecast) error {
			if defined {
				current.AccuracyScore = &mspe
			}
			// Anonymous forecasts keep a score but can never be paid
			if current.UserID != nil && defined {
				current.RewardsEarned = scoring.Payoff(scoring.PayoffParams{
					Stake:           current.Stake,
					MSPE:            mspe,
					ContrarianScore: current.ContrarianScore,
					Points:          len(current.Series),
					EarlyClose:      earlyClose,
					Progress:        progress,
					MinMultiple:     s.settings.PayoffMinMultiple,
					MaxMultiple:     s.settings.PayoffMaxMultiple,
				})
			}
			return nil
		})
	if err != nil {
		return nil, err
	}

	if !transitioned {
		// A concurrent caller won the edge; hand back its stored outcome
		return s.storedResult(updated, progress), nil
	}

	s.log.Info().
		Str("forecast", updated.ID).
		Str("status", string(updated.Status)).
		Float64("progress", progress).
		Int("payoff", updated.RewardsEarned).
		Msg("Forecast settled")

	return &Result{
		ForecastID:      updated.ID,
		Status:          updated.Status,
		MSPE:            updated.AccuracyScore,
		ContrarianScore: updated.ContrarianScore,
		Progress:        progress,
		Payoff:          updated.RewardsEarned,
	}, nil
}

// SweepActive settles every active forecast against the current feed price.
// Individual failures are logged and skipped so one bad symbol cannot stall
// the rest of the sweep. Returns how many forecasts were examined.
func (s *Service) SweepActive(ctx context.Context) (int, error) {
	active, err := s.store.Active()
	if err != nil {
		return 0, fmt.Errorf("failed to list active forecasts: %w", err)
	}

	for i := range active {
		if _, err := s.Settle(ctx, active[i].ID, nil, false); err != nil {
			s.log.Warn().Err(err).Str("forecast", active[i].ID).Msg("Sweep settlement failed")
		}
	}
	return len(active), nil
}
