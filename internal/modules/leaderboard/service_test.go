package leaderboard

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tzagara/curvecast/internal/domain"
	"github.com/tzagara/curvecast/internal/modules/forecast"
	"github.com/tzagara/curvecast/internal/modules/users"
	testhelpers "github.com/tzagara/curvecast/internal/testing"
)

type stoppedClock struct {
	now time.Time
}

func (c *stoppedClock) Now() time.Time { return c.now }

func settledForecast(id, userID string, mspe float64, createdAt time.Time, status domain.ForecastStatus) *domain.Forecast {
	return &domain.Forecast{
		ID:        id,
		UserID:    &userID,
		Symbol:    "AAPL",
		Timeframe: "daily",
		CreatedAt: createdAt,
		Series: []domain.SeriesPoint{
			{Price: 100, Timestamp: createdAt},
			{Price: 101, Timestamp: createdAt.Add(time.Hour)},
		},
		StartPrice:      100,
		EndPrice:        101,
		Stake:           10,
		ContrarianScore: 0.5,
		AccuracyScore:   &mspe,
		Status:          status,
	}
}

func TestStandings_RanksSettledUsers(t *testing.T) {
	db, cleanup := testhelpers.NewTestDB(t, "engine")
	defer cleanup()

	clock := &stoppedClock{now: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}
	forecastRepo := forecast.NewRepository(db.Conn(), zerolog.Nop())
	userRepo := users.NewRepository(db.Conn(), zerolog.Nop())
	service := NewService(NewRepository(db.Conn(), zerolog.Nop()), clock, 30, zerolog.Nop())

	_, err := userRepo.Create("sharp", "Sharp")
	require.NoError(t, err)
	_, err = userRepo.Create("blunt", "Blunt")
	require.NoError(t, err)
	_, err = userRepo.Create("idle", "Idle")
	require.NoError(t, err)

	yesterday := clock.now.AddDate(0, 0, -1)
	require.NoError(t, forecastRepo.Save(settledForecast("f1", "sharp", 0.2, yesterday, domain.StatusCompleted)))
	require.NoError(t, forecastRepo.Save(settledForecast("f2", "sharp", 0.4, yesterday, domain.StatusClosed)))
	require.NoError(t, forecastRepo.Save(settledForecast("f3", "blunt", 5.0, yesterday, domain.StatusCompleted)))
	// Active forecasts carry a moving score and must not count
	require.NoError(t, forecastRepo.Save(settledForecast("f4", "idle", 0.01, yesterday, domain.StatusActive)))

	standings, err := service.Standings(30)
	require.NoError(t, err)
	require.Len(t, standings, 2)

	assert.Equal(t, "sharp", standings[0].UserID)
	assert.Equal(t, 1, standings[0].Rank)
	assert.Equal(t, 2, standings[0].Forecasts)
	// Same age means plain average: (0.2 + 0.4) / 2
	assert.InDelta(t, 0.3, standings[0].WeightedMSPE, 1e-9)
	assert.Equal(t, domain.DefaultTokenBalance, standings[0].TokenBalance)

	assert.Equal(t, "blunt", standings[1].UserID)
	assert.Equal(t, 2, standings[1].Rank)
}

func TestStandings_EmptyWhenNothingSettled(t *testing.T) {
	db, cleanup := testhelpers.NewTestDB(t, "engine")
	defer cleanup()

	clock := &stoppedClock{now: time.Now().UTC()}
	service := NewService(NewRepository(db.Conn(), zerolog.Nop()), clock, 30, zerolog.Nop())

	standings, err := service.Standings(30)
	require.NoError(t, err)
	assert.Empty(t, standings)
}
