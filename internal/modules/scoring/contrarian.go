// Package scoring implements the accuracy, contrarian and payoff math of the
// forecast engine. Everything here is pure; persistence and orchestration
// live in the forecast and settlement modules.
package scoring

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/tzagara/curvecast/internal/domain"
)

// NeutralContrarianScore is returned whenever divergence is indeterminate:
// short or empty series, or a flat change pattern on either side.
const NeutralContrarianScore = 0.5

// fractionalChanges converts a price series into its sequence of fractional
// step changes. A zero previous price contributes a zero change.
func fractionalChanges(series []domain.SeriesPoint) []float64 {
	if len(series) < 2 {
		return nil
	}

	changes := make([]float64, 0, len(series)-1)
	for i := 1; i < len(series); i++ {
		prev := series[i-1].Price
		if prev == 0 {
			changes = append(changes, 0)
			continue
		}
		changes = append(changes, (series[i].Price-prev)/prev)
	}
	return changes
}

// ContrarianScore measures how uncorrelated a forecast's shape is from the
// crowd consensus. Both series are truncated to their common length, turned
// into fractional-change sequences and compared with Pearson correlation r.
// The score is 0.5 + 0.5*(1-|r|): 1.0 means orthogonal or opposite to the
// crowd, 0.5 means perfectly aligned or indeterminate.
func ContrarianScore(forecast, meta []domain.SeriesPoint) float64 {
	n := len(forecast)
	if len(meta) < n {
		n = len(meta)
	}
	if n < 2 {
		return NeutralContrarianScore
	}

	forecastChanges := fractionalChanges(forecast[:n])
	metaChanges := fractionalChanges(meta[:n])

	if stat.Variance(forecastChanges, nil) == 0 || stat.Variance(metaChanges, nil) == 0 {
		return NeutralContrarianScore
	}

	r := stat.Correlation(forecastChanges, metaChanges, nil)
	if math.IsNaN(r) {
		return NeutralContrarianScore
	}

	return 0.5 + 0.5*(1-math.Abs(r))
}
