package timeframe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolve_KnownTags(t *testing.T) {
	cases := []struct {
		tag    string
		points int
		step   time.Duration
	}{
		{"hourly", 60, time.Minute},
		{"daily", 24, time.Hour},
		{"weekly", 168, time.Hour},
		{"monthly", 30, 24 * time.Hour},
		{"yearly", 365, 24 * time.Hour},
	}

	for _, c := range cases {
		spec := Resolve(c.tag)
		assert.Equal(t, c.tag, spec.Tag)
		assert.Equal(t, c.points, spec.Points)
		assert.Equal(t, c.step, spec.Step)
	}
}

func TestResolve_UnknownTagFallsBackToDaily(t *testing.T) {
	spec := Resolve("fortnightly")
	assert.Equal(t, "daily", spec.Tag)
	assert.Equal(t, 24, spec.Points)
	assert.Equal(t, time.Hour, spec.Step)
}

func TestSpec_Duration(t *testing.T) {
	assert.Equal(t, time.Hour, Resolve("hourly").Duration())
	assert.Equal(t, 24*time.Hour, Resolve("daily").Duration())
	assert.Equal(t, 365*24*time.Hour, Resolve("yearly").Duration())
}

func TestTags_AllResolvable(t *testing.T) {
	for _, tag := range Tags() {
		assert.Equal(t, tag, Resolve(tag).Tag)
	}
}
