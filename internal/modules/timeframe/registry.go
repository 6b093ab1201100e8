// Package timeframe maps timeframe tags to their sampling layout.
package timeframe

import "time"

// Spec describes how a timeframe is sampled: Points samples spaced Step apart.
// Duration() is the full horizon a forecast of this timeframe covers.
type Spec struct {
	Tag    string
	Points int
	Step   time.Duration
}

// Duration returns the total horizon covered by the timeframe
func (s Spec) Duration() time.Duration {
	return time.Duration(s.Points) * s.Step
}

var specs = map[string]Spec{
	"hourly":  {Tag: "hourly", Points: 60, Step: time.Minute},
	"daily":   {Tag: "daily", Points: 24, Step: time.Hour},
	"weekly":  {Tag: "weekly", Points: 7 * 24, Step: time.Hour},
	"monthly": {Tag: "monthly", Points: 30, Step: 24 * time.Hour},
	"yearly":  {Tag: "yearly", Points: 365, Step: 24 * time.Hour},
}

// Resolve returns the spec for a tag, falling back to daily for unknown tags
func Resolve(tag string) Spec {
	if spec, ok := specs[tag]; ok {
		return spec
	}
	return specs["daily"]
}

// Tags returns the supported timeframe tags
func Tags() []string {
	return []string{"hourly", "daily", "weekly", "monthly", "yearly"}
}
