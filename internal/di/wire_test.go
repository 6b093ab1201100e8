package di

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tzagara/curvecast/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DataDir:      t.TempDir(),
		Port:         8080,
		PriceFeedURL: "http://localhost:9100",
		Engine: config.EngineConfig{
			HalfLifeDays:          30,
			MinEarlyCloseProgress: 0.05,
			MinScoringProgress:    0.01,
			PayoffMinMultiple:     0.1,
			PayoffMaxMultiple:     100,
		},
	}
}

func TestWire_BuildsFullContainer(t *testing.T) {
	container, err := Wire(testConfig(t), zerolog.Nop())
	require.NoError(t, err)
	defer container.Close()

	assert.NotNil(t, container.EngineDB)
	assert.NotNil(t, container.HistoryDB)
	assert.NotNil(t, container.Clock)
	assert.NotNil(t, container.PriceFeed)

	assert.NotNil(t, container.UserRepo)
	assert.NotNil(t, container.ForecastRepo)
	assert.NotNil(t, container.ConsensusRepo)
	assert.NotNil(t, container.LeaderboardRepo)
	assert.NotNil(t, container.PerformanceRepo)

	assert.NotNil(t, container.ConsensusAggregator)
	assert.NotNil(t, container.ForecastService)
	assert.NotNil(t, container.SettlementService)
	assert.NotNil(t, container.LeaderboardService)
	assert.NotNil(t, container.PerformanceService)
}

func TestWire_SchemasApplied(t *testing.T) {
	container, err := Wire(testConfig(t), zerolog.Nop())
	require.NoError(t, err)
	defer container.Close()

	var count int
	require.NoError(t, container.EngineDB.Conn().
		QueryRow("SELECT COUNT(*) FROM forecasts").Scan(&count))
	assert.Equal(t, 0, count)

	require.NoError(t, container.HistoryDB.Conn().
		QueryRow("SELECT COUNT(*) FROM performance_snapshots").Scan(&count))
	assert.Equal(t, 0, count)
}
