// Package leaderboard ranks users by time-weighted forecast accuracy.
package leaderboard

import (
	"math"
	"sort"
	"time"
)

// DefaultHalfLifeDays controls how fast old forecasts fade from the ranking
const DefaultHalfLifeDays = 30.0

// ScoredForecast is one settled forecast's contribution to a user's ranking
type ScoredForecast struct {
	MSPE      float64
	CreatedAt time.Time
}

// Standing is one leaderboard row
type Standing struct {
	Rank         int     `json:"rank"`
	UserID       string  `json:"userId"`
	DisplayName  string  `json:"displayName"`
	TokenBalance int     `json:"tokenBalance"`
	WeightedMSPE float64 `json:"weightedMspe"`
	Forecasts    int     `json:"forecasts"`
}

// TimeWeightedMSPE averages a user's MSPE values with exponential decay so
// recent forecasts dominate. A forecast's weight halves every halfLifeDays.
// Returns false when no forecast carries any weight.
func TimeWeightedMSPE(scores []ScoredForecast, now time.Time, halfLifeDays float64) (float64, bool) {
	if len(scores) == 0 {
		return 0, false
	}
	if halfLifeDays <= 0 {
		halfLifeDays = DefaultHalfLifeDays
	}
	decay := math.Ln2 / halfLifeDays

	var weightedSum, weightSum float64
	for _, s := range scores {
		days := now.Sub(s.CreatedAt).Hours() / 24
		if days < 0 {
			days = 0
		}
		w := math.Exp(-decay * days)
		weightedSum += w * s.MSPE
		weightSum += w
	}
	if weightSum == 0 {
		return 0, false
	}
	return weightedSum / weightSum, true
}

// Rank sorts standings by ascending weighted MSPE, breaking ties with the
// larger token balance, and assigns 1-based ranks in place.
func Rank(standings []Standing) {
	sort.SliceStable(standings, func(i, j int) bool {
		if standings[i].WeightedMSPE != standings[j].WeightedMSPE {
			return standings[i].WeightedMSPE < standings[j].WeightedMSPE
		}
		return standings[i].TokenBalance > standings[j].TokenBalance
	})
	for i := range standings {
		standings[i].Rank = i + 1
	}
}
