package leaderboard

import (
	"github.com/rs/zerolog"

	"github.com/tzagara/curvecast/internal/domain"
)

// Service assembles the leaderboard from settled forecasts
type Service struct {
	repo            *Repository
	clock           domain.Clock
	defaultHalfLife float64
	log             zerolog.Logger
}

// NewService creates a new leaderboard service. defaultHalfLife (days) is
// used whenever a caller does not ask for a specific decay.
func NewService(repo *Repository, clock domain.Clock, defaultHalfLife float64, log zerolog.Logger) *Service {
	if defaultHalfLife <= 0 {
		defaultHalfLife = DefaultHalfLifeDays
	}
	return &Service{
		repo:            repo,
		clock:           clock,
		defaultHalfLife: defaultHalfLife,
		log:             log.With().Str("component", "leaderboard").Logger(),
	}
}

// Standings computes the current ranking. Users with no settled, scored
// forecast do not appear. halfLifeDays <= 0 falls back to the configured
// default.
func (s *Service) Standings(halfLifeDays float64) ([]Standing, error) {
	if halfLifeDays <= 0 {
		halfLifeDays = s.defaultHalfLife
	}
	scores, userInfo, err := s.repo.ScoredByUser()
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	standings := make([]Standing, 0, len(scores))
	for userID, userScores := range scores {
		weighted, ok := TimeWeightedMSPE(userScores, now, halfLifeDays)
		if !ok {
			continue
		}
		row := userInfo[userID]
		row.WeightedMSPE = weighted
		row.Forecasts = len(userScores)
		standings = append(standings, row)
	}

	Rank(standings)
	return standings, nil
}
