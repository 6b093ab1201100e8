package performance

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tzagara/curvecast/internal/domain"
	"github.com/tzagara/curvecast/internal/modules/forecast"
	"github.com/tzagara/curvecast/internal/modules/leaderboard"
	"github.com/tzagara/curvecast/internal/modules/users"
	testhelpers "github.com/tzagara/curvecast/internal/testing"
)

type frozenClock struct {
	now time.Time
}

func (c *frozenClock) Now() time.Time { return c.now }

func storedForecast(id, userID string, mspe *float64, createdAt time.Time, status domain.ForecastStatus) *domain.Forecast {
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
		AccuracyScore:   mspe,
		Status:          status,
	}
}

func newPerformanceService(t *testing.T, clock domain.Clock) (*Service, *users.Repository, *forecast.Repository, func()) {
	t.Helper()
	engineDB, engineCleanup := testhelpers.NewTestDB(t, "engine")
	historyDB, historyCleanup := testhelpers.NewTestDB(t, "history")
	cleanup := func() {
		historyCleanup()
		engineCleanup()
	}

	userRepo := users.NewRepository(engineDB.Conn(), zerolog.Nop())
	forecastRepo := forecast.NewRepository(engineDB.Conn(), zerolog.Nop())
	lb := leaderboard.NewService(leaderboard.NewRepository(engineDB.Conn(), zerolog.Nop()), clock, 30, zerolog.Nop())
	service := NewService(NewRepository(historyDB.Conn(), zerolog.Nop()), userRepo, forecastRepo, lb, clock, zerolog.Nop())
	return service, userRepo, forecastRepo, cleanup
}

func TestSnapshotAll_CapturesRankAndAggregates(t *testing.T) {
	clock := &frozenClock{now: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}
	service, userRepo, forecastRepo, cleanup := newPerformanceService(t, clock)
	defer cleanup()

	_, err := userRepo.Create("u1", "Alex")
	require.NoError(t, err)
	_, err = userRepo.Create("u2", "Robin")
	require.NoError(t, err)

	yesterday := clock.now.AddDate(0, 0, -1)
	lowErr := 0.5
	highErr := 4.5
	require.NoError(t, forecastRepo.Save(storedForecast("f1", "u1", &lowErr, yesterday, domain.StatusCompleted)))
	require.NoError(t, forecastRepo.Save(storedForecast("f2", "u1", &highErr, yesterday, domain.StatusClosed)))
	require.NoError(t, forecastRepo.Save(storedForecast("f3", "u1", nil, yesterday, domain.StatusActive)))
	require.NoError(t, forecastRepo.Save(storedForecast("f4", "u2", &highErr, yesterday, domain.StatusCompleted)))

	written, err := service.SnapshotAll()
	require.NoError(t, err)
	assert.Equal(t, 2, written)

	history, err := service.History("u1", 10)
	require.NoError(t, err)
	require.Len(t, history, 1)

	snap := history[0]
	assert.True(t, clock.now.Equal(snap.TakenAt))
	assert.Equal(t, domain.DefaultTokenBalance, snap.TokenBalance)
	assert.Equal(t, 3, snap.TotalForecasts)
	assert.Equal(t, 2, snap.ScoredForecasts)
	require.NotNil(t, snap.MeanMSPE)
	assert.InDelta(t, 2.5, *snap.MeanMSPE, 1e-9)
	require.NotNil(t, snap.TimeWeightedMSPE)
	assert.InDelta(t, 2.5, *snap.TimeWeightedMSPE, 1e-9)
	assert.Equal(t, 1, snap.Rank)

	other, err := service.History("u2", 10)
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, 2, other[0].Rank)
}

func TestSnapshotAll_UserWithoutForecasts(t *testing.T) {
	clock := &frozenClock{now: time.Now().UTC().Truncate(time.Second)}
	service, userRepo, _, cleanup := newPerformanceService(t, clock)
	defer cleanup()

	_, err := userRepo.Create("u1", "Alex")
	require.NoError(t, err)

	written, err := service.SnapshotAll()
	require.NoError(t, err)
	assert.Equal(t, 1, written)

	history, err := service.History("u1", 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 0, history[0].TotalForecasts)
	assert.Nil(t, history[0].MeanMSPE)
	assert.Nil(t, history[0].TimeWeightedMSPE)
	assert.Equal(t, 0, history[0].Rank)
}

func TestHistory_NewestFirstWithLimit(t *testing.T) {
	clock := &frozenClock{now: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}
	service, userRepo, _, cleanup := newPerformanceService(t, clock)
	defer cleanup()

	_, err := userRepo.Create("u1", "Alex")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := service.SnapshotAll()
		require.NoError(t, err)
		clock.now = clock.now.Add(time.Hour)
	}

	history, err := service.History("u1", 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, history[0].TakenAt.After(history[1].TakenAt))
}
