// Package domain contains the pure domain model for the forecast engine.
// It has no infrastructure dependencies: repositories, services and handlers
// all depend on this package, never the other way around.
package domain

import "time"

// ForecastStatus represents the lifecycle state of a forecast
type ForecastStatus string

const (
	// StatusActive - forecast is live and its accuracy is still being recomputed
	StatusActive ForecastStatus = "active"
	// StatusCompleted - forecast reached full maturity and has been paid out
	StatusCompleted ForecastStatus = "completed"
	// StatusClosed - forecast was voluntarily closed early
	StatusClosed ForecastStatus = "closed"
)

// IsTerminal checks whether the status permits no further mutation
func (s ForecastStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusClosed
}

// SeriesPoint is a single (price, timestamp) sample of a forecast series
type SeriesPoint struct {
	Price     float64   `json:"price" msgpack:"p"`
	Timestamp time.Time `json:"timestamp" msgpack:"t"`
}

// Forecast is a user's staked price-series prediction for a symbol.
// Series always holds exactly N points for the forecast's timeframe,
// with timestamps stepping by the timeframe's interval.
type Forecast struct {
	ID              string         `json:"id"`
	UserID          *string        `json:"userId"` // nil for anonymous forecasts
	Symbol          string         `json:"symbol"`
	AssetName       string         `json:"assetName"`
	Timeframe       string         `json:"timeframe"`
	CreatedAt       time.Time      `json:"createdAt"`
	Series          []SeriesPoint  `json:"series"`
	StartPrice      float64        `json:"startPrice"`
	EndPrice        float64        `json:"endPrice"`
	Stake           int            `json:"stake"`
	ContrarianScore float64        `json:"contrarianScore"`
	AccuracyScore   *float64       `json:"accuracyScore"` // MSPE, nil until first scoring
	RewardsEarned   int            `json:"rewardsEarned"`
	Status          ForecastStatus `json:"status"`
}

// MetaForecast is the running crowd-consensus series for a symbol.
// Series is a cumulative moving average of every submitted forecast,
// grown to the longest series seen. Count increments once per submission.
type MetaForecast struct {
	Symbol string        `json:"symbol"`
	Series []SeriesPoint `json:"series"`
	Count  int           `json:"count"`
}

// User holds the token balance the payoff engine credits on settlement
type User struct {
	ID           string    `json:"id"`
	DisplayName  string    `json:"displayName"`
	TokenBalance int       `json:"tokenBalance"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// DefaultTokenBalance is granted to every newly created user
const DefaultTokenBalance = 1000

// PerformanceSnapshot is a point-in-time rollup of a user's standing,
// written by the snapshot job and read-only everywhere else.
type PerformanceSnapshot struct {
	UserID           string    `json:"userId"`
	TakenAt          time.Time `json:"takenAt"`
	TokenBalance     int       `json:"tokenBalance"`
	TotalForecasts   int       `json:"totalForecasts"`
	ScoredForecasts  int       `json:"scoredForecasts"`
	MeanMSPE         *float64  `json:"meanMspe"`
	TimeWeightedMSPE *float64  `json:"timeWeightedMspe"`
	Rank             int       `json:"rank"`
}
