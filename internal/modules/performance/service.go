package performance

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tzagara/curvecast/internal/domain"
	"github.com/tzagara/curvecast/internal/modules/leaderboard"
	"github.com/tzagara/curvecast/internal/modules/users"
)

// Service rolls up per-user performance into the history database
type Service struct {
	snapshots   *Repository
	users       *users.Repository
	forecasts   domain.ForecastStore
	leaderboard *leaderboard.Service
	clock       domain.Clock
	log         zerolog.Logger
}

// NewService creates a new performance service
func NewService(
	snapshots *Repository,
	userRepo *users.Repository,
	forecasts domain.ForecastStore,
	lb *leaderboard.Service,
	clock domain.Clock,
	log zerolog.Logger,
) *Service {
	return &Service{
		snapshots:   snapshots,
		users:       userRepo,
		forecasts:   forecasts,
		leaderboard: lb,
		clock:       clock,
		log:         log.With().Str("component", "performance").Logger(),
	}
}

// SnapshotAll writes one snapshot per user, capturing balance, forecast
// counts, accuracy aggregates and the current leaderboard rank. Users who
// never appear on the leaderboard get a zero rank.
func (s *Service) SnapshotAll() (int, error) {
	allUsers, err := s.users.All()
	if err != nil {
		return 0, fmt.Errorf("failed to list users: %w", err)
	}

	standings, err := s.leaderboard.Standings(0)
	if err != nil {
		return 0, fmt.Errorf("failed to compute standings: %w", err)
	}
	byUser := make(map[string]leaderboard.Standing, len(standings))
	for _, row := range standings {
		byUser[row.UserID] = row
	}

	now := s.clock.Now()
	written := 0
	for _, u := range allUsers {
		forecasts, err := s.forecasts.ByUser(u.ID)
		if err != nil {
			s.log.Warn().Err(err).Str("user", u.ID).Msg("Skipping snapshot, forecast listing failed")
			continue
		}

		snapshot := &domain.PerformanceSnapshot{
			UserID:         u.ID,
			TakenAt:        now,
			TokenBalance:   u.TokenBalance,
			TotalForecasts: len(forecasts),
		}

		var mspeSum float64
		for _, f := range forecasts {
			if f.Status.IsTerminal() && f.AccuracyScore != nil {
				snapshot.ScoredForecasts++
				mspeSum += *f.AccuracyScore
			}
		}
		if snapshot.ScoredForecasts > 0 {
			mean := mspeSum / float64(snapshot.ScoredForecasts)
			snapshot.MeanMSPE = &mean
		}
		if row, ok := byUser[u.ID]; ok {
			snapshot.TimeWeightedMSPE = &row.WeightedMSPE
			snapshot.Rank = row.Rank
		}

		if err := s.snapshots.Save(snapshot); err != nil {
			s.log.Warn().Err(err).Str("user", u.ID).Msg("Failed to write snapshot")
			continue
		}
		written++
	}

	s.log.Info().Int("users", written).Msg("Performance snapshots written")
	return written, nil
}

// History returns a user's snapshots, newest first
func (s *Service) History(userID string, limit int) ([]domain.PerformanceSnapshot, error) {
	return s.snapshots.History(userID, limit)
}
