package forecast

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tzagara/curvecast/internal/domain"
	"github.com/tzagara/curvecast/internal/modules/consensus"
	"github.com/tzagara/curvecast/internal/modules/gesture"
	"github.com/tzagara/curvecast/internal/modules/scoring"
	"github.com/tzagara/curvecast/internal/modules/timeframe"
)

// Service owns the submission flow: gesture in, active forecast out
type Service struct {
	store     domain.ForecastStore
	ledger    domain.UserLedger
	consensus *consensus.Aggregator
	clock     domain.Clock
	log       zerolog.Logger
}

// NewService creates a new forecast service
func NewService(
	store domain.ForecastStore,
	ledger domain.UserLedger,
	agg *consensus.Aggregator,
	clock domain.Clock,
	log zerolog.Logger,
) *Service {
	return &Service{
		store:     store,
		ledger:    ledger,
		consensus: agg,
		clock:     clock,
		log:       log.With().Str("component", "forecast").Logger(),
	}
}

// SubmitInput is a raw submission from the drawing canvas
type SubmitInput struct {
	Symbol       string              `json:"symbol"`
	AssetName    string              `json:"assetName"`
	Timeframe    string              `json:"timeframe"`
	Points       []gesture.Point     `json:"points"`
	Canvas       gesture.Canvas      `json:"canvasDimensions"`
	Bounds       gesture.ChartBounds `json:"chartBounds"`
	DisplayRange *gesture.PriceRange `json:"displayRange,omitempty"`
	Stake        int                 `json:"stake"`
	UserID       *string             `json:"userId,omitempty"`
}

// SubmitResult reports the stored forecast and its divergence from the crowd
type SubmitResult struct {
	ForecastID      string  `json:"forecastId"`
	ContrarianScore float64 `json:"contrarianScore"`
}

func (s *Service) validate(input SubmitInput) error {
	if input.Symbol == "" {
		return fmt.Errorf("symbol is required: %w", domain.ErrInvalidInput)
	}
	if len(input.Points) < 2 {
		return fmt.Errorf("a drawing needs at least 2 points, got %d: %w", len(input.Points), domain.ErrInvalidInput)
	}
	if input.Stake < 1 {
		return fmt.Errorf("stake must be at least 1 token, got %d: %w", input.Stake, domain.ErrInvalidInput)
	}
	return nil
}

// Submit converts a drawing into a forecast series, scores its divergence
// from the pre-update consensus, stakes the user's tokens and persists the
// forecast as active. The consensus contribution count increments exactly
// once per successful submission.
func (s *Service) Submit(input SubmitInput) (*SubmitResult, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}

	spec := timeframe.Resolve(input.Timeframe)
	now := s.clock.Now()
	series := gesture.Rasterize(input.Points, input.Canvas, input.Bounds, input.DisplayRange, spec, now)

	// Divergence is always measured against the consensus as it stood
	// before this submission contributes to it.
	meta, err := s.consensus.Get(input.Symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to load consensus: %w", err)
	}
	var metaSeries []domain.SeriesPoint
	if meta != nil {
		metaSeries = meta.Series
	}
	contrarianScore := scoring.ContrarianScore(series, metaSeries)

	// Stake is taken before the forecast exists, so an uncovered stake
	// leaves no partial state behind.
	if input.UserID != nil {
		if err := s.ledger.Debit(*input.UserID, input.Stake); err != nil {
			return nil, err
		}
	}

	f := &domain.Forecast{
		ID:              uuid.New().String(),
		UserID:          input.UserID,
		Symbol:          input.Symbol,
		AssetName:       input.AssetName,
		Timeframe:       spec.Tag,
		CreatedAt:       now,
		Series:          series,
		StartPrice:      series[0].Price,
		EndPrice:        series[len(series)-1].Price,
		Stake:           input.Stake,
		ContrarianScore: contrarianScore,
		Status:          domain.StatusActive,
	}

	if err := s.store.Save(f); err != nil {
		// Give the stake back; the forecast never came into existence
		if input.UserID != nil {
			if refundErr := s.ledger.Credit(*input.UserID, input.Stake); refundErr != nil {
				s.log.Error().Err(refundErr).Str("user", *input.UserID).Msg("Failed to refund stake after save failure")
			}
		}
		return nil, fmt.Errorf("failed to save forecast: %w", err)
	}

	if _, err := s.consensus.Update(input.Symbol, series); err != nil {
		return nil, fmt.Errorf("failed to update consensus: %w", err)
	}

	s.log.Info().
		Str("forecast", f.ID).
		Str("symbol", f.Symbol).
		Str("timeframe", f.Timeframe).
		Int("stake", f.Stake).
		Float64("contrarian", contrarianScore).
		Msg("Forecast submitted")

	return &SubmitResult{ForecastID: f.ID, ContrarianScore: contrarianScore}, nil
}

// Get returns a single forecast by id
func (s *Service) Get(id string) (*domain.Forecast, error) {
	return s.store.GetByID(id)
}

// SymbolOverview lists recent forecasts for a symbol together with the
// current consensus series and total contribution count.
type SymbolOverview struct {
	Forecasts []domain.Forecast    `json:"forecasts"`
	Consensus []domain.SeriesPoint `json:"consensus"`
	Count     int                  `json:"count"`
}

// Overview returns the recent forecasts and consensus for a symbol
func (s *Service) Overview(symbol, tf string, limit int) (*SymbolOverview, error) {
	spec := timeframe.Resolve(tf)
	forecasts, err := s.store.RecentBySymbol(symbol, spec.Tag, limit)
	if err != nil {
		return nil, err
	}

	overview := &SymbolOverview{Forecasts: forecasts}
	meta, err := s.consensus.Get(symbol)
	if err != nil {
		return nil, err
	}
	if meta != nil {
		overview.Consensus = meta.Series
		overview.Count = meta.Count
	}
	return overview, nil
}
