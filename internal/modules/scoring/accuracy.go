package scoring

import (
	"math"
	"time"

	"github.com/tzagara/curvecast/internal/domain"
)

// DefaultMinScoringProgress is the progress below which accuracy is undefined
const DefaultMinScoringProgress = 0.01

// Progress returns the elapsed fraction of a forecast's horizon, clamped to [0, 1]
func Progress(createdAt, now time.Time, horizon time.Duration) float64 {
	if horizon <= 0 {
		return 0
	}
	progress := float64(now.Sub(createdAt)) / float64(horizon)
	return math.Max(0, math.Min(progress, 1))
}

// ElapsedCount returns how many of the n series points fall inside the
// elapsed window at the given progress. Always in [1, n] for n > 0.
func ElapsedCount(progress float64, n int) int {
	if n <= 0 {
		return 0
	}
	idx := int(math.Floor(progress * float64(n)))
	if idx < 0 {
		idx = 0
	}
	if idx > n-1 {
		idx = n - 1
	}
	return idx + 1
}

// MSPE computes the mean squared percentage error of the forecast series
// against the realized price over all points elapsed at the given progress.
//
// The ok flag is false when progress is below minProgress and accuracy is
// therefore still undefined; the caller must treat that as a no-op, not a
// perfect score. A non-positive realized price is rejected with
// domain.ErrInvalidInput.
func MSPE(series []domain.SeriesPoint, actual, progress, minProgress float64) (mspe float64, ok bool, err error) {
	if actual <= 0 {
		return 0, false, domain.ErrInvalidInput
	}
	if len(series) == 0 {
		return 0, false, domain.ErrInvalidInput
	}
	if progress < minProgress {
		return 0, false, nil
	}

	count := ElapsedCount(progress, len(series))
	var sum float64
	for i := 0; i < count; i++ {
		diff := actual - series[i].Price
		sum += diff * diff / actual
	}
	return sum / float64(count), true, nil
}
