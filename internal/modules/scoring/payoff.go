package scoring

import "math"

// Default payoff bounds as multiples of the stake
const (
	DefaultPayoffMinMultiple = 0.1
	DefaultPayoffMaxMultiple = 100
)

// PayoffParams carries everything the payoff formula needs
type PayoffParams struct {
	Stake           int
	MSPE            float64
	ContrarianScore float64 // in [0.5, 1.0]
	Points          int     // series length N for the timeframe
	EarlyClose      bool
	Progress        float64 // elapsed fraction, only used on early close

	// Bounds as multiples of stake; zero values fall back to the defaults
	MinMultiple float64
	MaxMultiple float64
}

// Payoff computes the bounded token reward for a settled forecast.
//
// Lower MSPE earns a larger accuracy multiplier, capped at 10N so a
// near-zero error cannot blow up. The contrarian score maps linearly onto a
// 1x-2x bonus. Early closes ramp the result from 50% at the close threshold
// up to 100% at maturity. The truncated product is clamped to
// [MinMultiple*stake, MaxMultiple*stake].
func Payoff(p PayoffParams) int {
	if p.Stake <= 0 || p.MSPE < 0 {
		return 0
	}

	minMultiple := p.MinMultiple
	maxMultiple := p.MaxMultiple
	if maxMultiple <= 0 {
		minMultiple = DefaultPayoffMinMultiple
		maxMultiple = DefaultPayoffMaxMultiple
	}

	n := float64(p.Points)
	accuracyMultiplier := math.Min(n/(1+math.Max(p.MSPE, 0.001)), 10*n)
	contrarianBonus := 1 + (p.ContrarianScore-0.5)*2

	progressFactor := 1.0
	if p.EarlyClose {
		progressFactor = 0.5 + 0.5*p.Progress
	}

	raw := float64(p.Stake) * accuracyMultiplier * contrarianBonus * progressFactor
	result := math.Trunc(raw)

	lower := minMultiple * float64(p.Stake)
	upper := maxMultiple * float64(p.Stake)
	result = math.Max(lower, math.Min(result, upper))

	return int(result)
}

// LegacyPayoff is the superseded stake*N/MSPE formula. It is kept only so
// rewards recorded by earlier deployments can be reproduced; new settlements
// always go through Payoff.
func LegacyPayoff(stake, points int, mspe float64) int {
	if stake <= 0 || mspe <= 0 {
		return 0
	}
	return int(float64(stake) * float64(points) / mspe)
}
